package repository

import (
	"context"

	"github.com/aptfolio/backend/domain"
)

type OperatorRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Operator, error)
	Upsert(ctx context.Context, operator *domain.Operator) error
}
