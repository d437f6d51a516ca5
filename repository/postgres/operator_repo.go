package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aptfolio/backend/domain"
	"github.com/aptfolio/backend/repository"
)

type operatorRepository struct {
	pool *pgxpool.Pool
}

// NewOperatorRepository instantiates a Postgres-backed operator repository.
func NewOperatorRepository(pool *pgxpool.Pool) repository.OperatorRepository {
	return &operatorRepository{pool: pool}
}

func (r *operatorRepository) GetByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	const query = `
	SELECT id, username, password_hash, created_at, updated_at
	FROM operators
	WHERE username = $1
	`
	row := r.pool.QueryRow(ctx, query, username)

	var operator domain.Operator
	if err := row.Scan(
		&operator.ID,
		&operator.Username,
		&operator.PasswordHash,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperatorNotFound
		}
		return nil, err
	}
	return &operator, nil
}

func (r *operatorRepository) Upsert(ctx context.Context, operator *domain.Operator) error {
	if operator == nil || operator.Username == "" {
		return domain.ErrInvalidPayload
	}
	if operator.ID == "" {
		operator.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO operators (id, username, password_hash)
	VALUES ($1, $2, $3)
	ON CONFLICT (username) DO UPDATE
	SET password_hash = EXCLUDED.password_hash,
		updated_at = NOW()
	RETURNING id, created_at, updated_at
	`

	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		operator.ID,
		operator.Username,
		operator.PasswordHash,
	).Scan(&operator.ID, &createdAt, &updatedAt); err != nil {
		return err
	}

	operator.CreatedAt = createdAt
	operator.UpdatedAt = updatedAt
	return nil
}
