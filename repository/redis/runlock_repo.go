package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/aptfolio/backend/repository"
)

type runLockRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewRunLockRepository builds a SetNX-based escalation run lock keyed by run
// date. The TTL bounds lock leakage if a run dies without releasing.
func NewRunLockRepository(client *redislib.Client, ttl time.Duration) repository.RunLocker {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &runLockRepository{
		client: client,
		prefix: "escalation:lock:",
		ttl:    ttl,
	}
}

func (r *runLockRepository) Acquire(ctx context.Context, runDate time.Time) (bool, error) {
	return r.client.SetNX(ctx, r.key(runDate), time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
}

func (r *runLockRepository) Release(ctx context.Context, runDate time.Time) error {
	return r.client.Del(ctx, r.key(runDate)).Err()
}

func (r *runLockRepository) key(runDate time.Time) string {
	return fmt.Sprintf("%s%s", r.prefix, runDate.Format("2006-01-02"))
}
