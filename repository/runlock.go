package repository

import (
	"context"
	"time"
)

// RunLocker guards escalation runs with a lock scoped to the run date, so a
// manual trigger racing the scheduled one cannot scan concurrently.
type RunLocker interface {
	// Acquire takes the lock for runDate. It returns false when another run
	// already holds it.
	Acquire(ctx context.Context, runDate time.Time) (bool, error)
	// Release frees the lock so later same-date runs (which the per-apartment
	// escalation marker turns into no-ops) are not blocked outright.
	Release(ctx context.Context, runDate time.Time) error
}
