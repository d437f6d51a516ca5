package repository

import (
	"context"

	"github.com/aptfolio/backend/domain"
)

type BuildingRepository interface {
	Create(ctx context.Context, building *domain.Building) (*domain.Building, error)
	GetByID(ctx context.Context, id string) (*domain.Building, error)
	// List returns summary projections only; apartments stay embedded in the
	// full record.
	List(ctx context.Context) ([]domain.BuildingSummary, error)
	// ListAll returns every building with apartments, for the escalation scan.
	ListAll(ctx context.Context) ([]domain.Building, error)
	// Save writes the whole building back if its stored version still matches
	// building.Version, then bumps the version. Returns
	// domain.ErrVersionConflict on a lost race.
	Save(ctx context.Context, building *domain.Building) error
}
