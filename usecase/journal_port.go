package usecase

import (
	"context"

	"github.com/aptfolio/backend/domain"
)

// RunJournal abstracts the escalation audit trail so the engine stays
// storage-agnostic.
type RunJournal interface {
	Append(ctx context.Context, report domain.RunReport) error
	Recent(ctx context.Context, limit int) ([]domain.RunReport, error)
}
