package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aptfolio/backend/domain"
	"github.com/aptfolio/backend/repository"
)

type buildingRepository struct {
	pool *pgxpool.Pool
}

// NewBuildingRepository returns a Postgres-backed implementation of
// BuildingRepository. Apartments are embedded in the building row as JSONB,
// so one row is the atomicity unit.
func NewBuildingRepository(pool *pgxpool.Pool) repository.BuildingRepository {
	return &buildingRepository{pool: pool}
}

func (r *buildingRepository) Create(ctx context.Context, building *domain.Building) (*domain.Building, error) {
	if building == nil {
		return nil, domain.ErrInvalidPayload
	}
	if building.ID == "" {
		building.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO buildings (id, name, number, location, apartments, version)
	VALUES ($1, $2, $3, $4, $5, 1)
	RETURNING version, created_at, updated_at
	`

	apartments, err := json.Marshal(building.Apartments)
	if err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, query,
		building.ID,
		building.Name,
		building.Number,
		building.Location,
		apartments,
	).Scan(&building.Version, &building.CreatedAt, &building.UpdatedAt); err != nil {
		return nil, err
	}

	return building, nil
}

func (r *buildingRepository) GetByID(ctx context.Context, id string) (*domain.Building, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}

	const query = `
	SELECT id, name, number, location, apartments, version, created_at, updated_at
	FROM buildings
	WHERE id = $1
	`
	return scanBuilding(r.pool.QueryRow(ctx, query, id))
}

func (r *buildingRepository) List(ctx context.Context) ([]domain.BuildingSummary, error) {
	const query = `
	SELECT id, name, number, location, jsonb_array_length(apartments)
	FROM buildings
	ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.BuildingSummary
	for rows.Next() {
		var s domain.BuildingSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Number, &s.Location, &s.ApartmentCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *buildingRepository) ListAll(ctx context.Context) ([]domain.Building, error) {
	const query = `
	SELECT id, name, number, location, apartments, version, created_at, updated_at
	FROM buildings
	ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []domain.Building
	for rows.Next() {
		building, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, *building)
	}
	return buildings, rows.Err()
}

func (r *buildingRepository) Save(ctx context.Context, building *domain.Building) error {
	if building == nil {
		return domain.ErrInvalidPayload
	}

	// The version predicate rejects writes based on a stale read; callers
	// re-read and retry on ErrVersionConflict.
	const query = `
	UPDATE buildings
	SET apartments = $2,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND version = $3
	RETURNING version, updated_at
	`

	apartments, err := json.Marshal(building.Apartments)
	if err != nil {
		return err
	}

	if err := r.pool.QueryRow(ctx, query,
		building.ID,
		apartments,
		building.Version,
	).Scan(&building.Version, &building.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifySaveMiss(ctx, building.ID)
		}
		return err
	}
	return nil
}

// classifySaveMiss tells a vanished building apart from a version race.
func (r *buildingRepository) classifySaveMiss(ctx context.Context, id string) error {
	const query = `SELECT 1 FROM buildings WHERE id = $1`
	var one int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBuildingNotFound
		}
		return err
	}
	return domain.ErrVersionConflict
}

func scanBuilding(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Building, error) {
	var building domain.Building
	var apartments []byte

	if err := row.Scan(
		&building.ID,
		&building.Name,
		&building.Number,
		&building.Location,
		&apartments,
		&building.Version,
		&building.CreatedAt,
		&building.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBuildingNotFound
		}
		return nil, err
	}

	if len(apartments) > 0 {
		if err := json.Unmarshal(apartments, &building.Apartments); err != nil {
			return nil, err
		}
	}
	return &building, nil
}
