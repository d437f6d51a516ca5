package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aptfolio/backend/domain"
	escalationUC "github.com/aptfolio/backend/usecase/escalation"
)

// SchedulerConfig controls the recurring escalation trigger.
type SchedulerConfig struct {
	CronSpec   string
	RunTimeout time.Duration
}

// EscalationScheduler owns the daily timer that fires the escalation engine.
// It is started and stopped explicitly by the process lifecycle; the manual
// HTTP trigger shares the same engine, so both paths behave identically.
type EscalationScheduler struct {
	engine *escalationUC.Engine
	logger *zap.Logger
	cron   *cron.Cron
	cfg    SchedulerConfig
}

func NewEscalationScheduler(engine *escalationUC.Engine, logger *zap.Logger, cfg SchedulerConfig) (*EscalationScheduler, error) {
	if cfg.CronSpec == "" {
		cfg.CronSpec = "0 1 * * *"
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &EscalationScheduler{
		engine: engine,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(),
	}

	if _, err := s.cron.AddFunc(cfg.CronSpec, s.fire); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the cron scheduler.
func (s *EscalationScheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("escalation scheduler started", zap.String("spec", s.cfg.CronSpec))
}

// Stop gracefully stops the scheduler, waiting for an in-flight run.
func (s *EscalationScheduler) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("escalation scheduler stopped")
}

func (s *EscalationScheduler) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	report, err := s.engine.Run(ctx, time.Time{}, escalationUC.TriggerScheduled)
	if err != nil {
		// A concurrent manual run holding the lock is expected, not a failure.
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			s.logger.Info("scheduled run skipped, another run holds the lock")
			return
		}
		s.logger.Error("scheduled escalation run failed", zap.Error(err))
		return
	}

	if report.UpdatedCount == 0 && len(report.Failures) == 0 {
		s.logger.Info("no apartments due for rent increase today")
		return
	}
	s.logger.Info("scheduled escalation run completed",
		zap.Int("updated", report.UpdatedCount),
		zap.Int("failures", len(report.Failures)))
}
