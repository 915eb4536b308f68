package rlm

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCallBudgetTTL bounds how long a run's shared call counter survives,
// long enough to cover one run's wall-clock but not so long it lingers
// after a crashed run leaves its key behind.
const DefaultCallBudgetTTL = 30 * time.Minute

// CallBudget enforces a shared per-run budget of root-model steps, charged
// once per driver iteration, across Driver instances that share one run,
// e.g. when a run is retried by a
// second worker process after the first is presumed dead. A single
// in-process Driver already counts iterations on its own; CallBudget only
// matters once more than one process can call the root model for the same
// run id.
type CallBudget interface {
	// Reserve claims one call against runID's shared budget. allowed is
	// false once the budget is exhausted; the caller should treat that the
	// same as local iteration-budget exhaustion.
	Reserve(ctx context.Context, runID string) (allowed bool, err error)
}

// redisCallBudget implements CallBudget with a single INCR per call,
// following the same plain key/value use of *redis.Client as the
// retrieval-score cache rather than the Streams consumer-group pattern.
type redisCallBudget struct {
	rdb *redis.Client
	max int64
	ttl time.Duration
}

// NewRedisCallBudget returns a CallBudget shared across every Driver
// instance processing the same run id, backed by one Redis counter key per
// run. Optional: a Driver with no CallBudget just trusts its own local
// maxIterations count, which is correct for the common single-process case.
func NewRedisCallBudget(rdb *redis.Client, max int64, ttl time.Duration) CallBudget {
	if ttl <= 0 {
		ttl = DefaultCallBudgetTTL
	}
	return &redisCallBudget{rdb: rdb, max: max, ttl: ttl}
}

func (b *redisCallBudget) Reserve(ctx context.Context, runID string) (bool, error) {
	key := "rlm:calls:" + runID
	n, err := b.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		b.rdb.Expire(ctx, key, b.ttl)
	}
	return n <= b.max, nil
}
