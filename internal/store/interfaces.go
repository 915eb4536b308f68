package store

import (
	"context"
	"errors"

	"graphrlm.dev/core/core/db/sqlc"
	"graphrlm.dev/core/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// RunStore persists one run record per invocation of the RLM driver
// (spec §6, the "runs" table).
type RunStore interface {
	Create(ctx context.Context, run sqlc.Run) (sqlc.Run, error)
	Get(ctx context.Context, runID string) (sqlc.Run, error)
}

// TrajectoryStore persists the append-only iteration history for a run.
type TrajectoryStore interface {
	Upsert(ctx context.Context, t model.Trajectory) error
	Get(ctx context.Context, trajectoryID string) (model.Trajectory, error)
	ListByRun(ctx context.Context, runID string) ([]model.Trajectory, error)
	// ListRecent returns the most recent trajectories across all runs, used
	// by the ReasoningBank's optional meta-analysis tier (spec §4.6).
	ListRecent(ctx context.Context, limit int32) ([]model.Trajectory, error)
}

// JudgmentStore persists the judge's verdict on one trajectory.
type JudgmentStore interface {
	Upsert(ctx context.Context, j model.Judgment) error
	Get(ctx context.Context, trajectoryID string) (model.Judgment, error)
}

// MemoryStore persists ReasoningBank memory items with idempotent,
// content-addressed upserts (spec §4.6, "Store").
type MemoryStore interface {
	Upsert(ctx context.Context, item model.MemoryItem) (model.MemoryItem, error)
	Get(ctx context.Context, memoryID string) (model.MemoryItem, error)
	List(ctx context.Context) ([]model.MemoryItem, error)
	IncrementCounters(ctx context.Context, memoryID string, access, success, failure int64) error
}

// MemoryUsageStore records which memory items were retrieved for which
// trajectory, for post-hoc inspection and pack provenance.
type MemoryUsageStore interface {
	Record(ctx context.Context, u model.MemoryUsage) error
	ListByTrajectory(ctx context.Context, trajectoryID string) ([]model.MemoryUsage, error)
}

// Stores aggregates the typed accessors over a single *sqlc.Queries handle.
// internal/bank and the cmd/ entrypoint depend on this, not on sqlc
// directly, so they can be rewired onto a transactional *sqlc.Queries via
// db.WithTx without caring about the underlying DBTX.
type Stores struct {
	Runs         RunStore
	Trajectories TrajectoryStore
	Judgments    JudgmentStore
	Memory       MemoryStore
	MemoryUsage  MemoryUsageStore
}

// New builds a Stores bundle over the given sqlc queries handle.
func New(queries *sqlc.Queries) *Stores {
	return &Stores{
		Runs:         newRunStore(queries),
		Trajectories: newTrajectoryStore(queries),
		Judgments:    newJudgmentStore(queries),
		Memory:       newMemoryStore(queries),
		MemoryUsage:  newMemoryUsageStore(queries),
	}
}
