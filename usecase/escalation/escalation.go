package escalation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aptfolio/backend/domain"
	"github.com/aptfolio/backend/repository"
	"github.com/aptfolio/backend/usecase"
)

// Trigger values recorded on run reports.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// Engine applies annual rent escalations across the whole portfolio. The
// scheduled and manual paths both go through Run; a date-scoped lock keeps
// them from scanning concurrently, and the per-apartment escalation year
// marker makes same-date re-runs no-ops.
type Engine struct {
	buildings repository.BuildingRepository
	locks     repository.RunLocker
	journal   usecase.RunJournal
	logger    *zap.Logger
}

func New(buildings repository.BuildingRepository, locks repository.RunLocker, journal usecase.RunJournal, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		buildings: buildings,
		locks:     locks,
		journal:   journal,
		logger:    logger,
	}
}

// Run scans every apartment in every building and raises rent on contract
// anniversaries. A building is written back once, only if something in it
// changed. A failed write is recorded and the scan moves on; buildings saved
// before a failure stay escalated.
func (e *Engine) Run(ctx context.Context, runDate time.Time, trigger string) (*domain.RunReport, error) {
	runDate = midnight(runDate)

	if e.locks != nil {
		ok, err := e.locks.Acquire(ctx, runDate)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "acquiring run lock", err)
		}
		if !ok {
			return nil, domain.ErrRunInProgress
		}
		defer func() {
			if err := e.locks.Release(context.WithoutCancel(ctx), runDate); err != nil {
				e.logger.Warn("failed to release run lock", zap.Error(err))
			}
		}()
	}

	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		RunDate:   runDate,
		Trigger:   trigger,
		StartedAt: time.Now(),
	}

	e.logger.Info("escalation run started",
		zap.String("run_id", report.RunID),
		zap.Time("run_date", runDate),
		zap.String("trigger", trigger))

	buildings, err := e.buildings.ListAll(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "reading buildings", err)
	}

	for i := range buildings {
		if err := ctx.Err(); err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "run cancelled", err)
		}

		building := &buildings[i]
		changes := e.escalateBuilding(building, runDate)
		if len(changes) == 0 {
			continue
		}

		if err := e.buildings.Save(ctx, building); err != nil {
			e.logger.Error("failed to save escalated building",
				zap.String("building_id", building.ID),
				zap.Error(err))
			report.Failures = append(report.Failures, domain.RunFailure{
				BuildingID:   building.ID,
				BuildingName: building.Name,
				Reason:       err.Error(),
			})
			continue
		}

		report.Changes = append(report.Changes, changes...)
		report.UpdatedCount += len(changes)
	}

	report.FinishedAt = time.Now()

	if e.journal != nil {
		if err := e.journal.Append(ctx, *report); err != nil {
			e.logger.Warn("failed to journal run report", zap.Error(err))
		}
	}

	e.logger.Info("escalation run finished",
		zap.String("run_id", report.RunID),
		zap.Int("updated", report.UpdatedCount),
		zap.Int("failures", len(report.Failures)))
	return report, nil
}

// RecentRuns returns the latest journaled run reports, newest first.
func (e *Engine) RecentRuns(ctx context.Context, limit int) ([]domain.RunReport, error) {
	if e.journal == nil {
		return nil, nil
	}
	return e.journal.Recent(ctx, limit)
}

func (e *Engine) escalateBuilding(building *domain.Building, runDate time.Time) []domain.RentChange {
	var changes []domain.RentChange
	for i := range building.Apartments {
		apartment := &building.Apartments[i]
		if !apartment.EscalationDue(runDate) {
			continue
		}
		change := apartment.Escalate(building, runDate)
		changes = append(changes, change)
		e.logger.Info("rent escalated",
			zap.String("building", building.Name),
			zap.Int("apartment", apartment.ApartmentNumber),
			zap.Float64("old_rent", change.OldRent),
			zap.Float64("new_rent", change.NewRent),
			zap.Float64("percentage", change.Percentage))
	}
	return changes
}

// midnight normalizes the run date to local midnight; the zero value means
// "today".
func midnight(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
