package bank

import (
	"context"
	"log/slog"
	"strings"

	"graphrlm.dev/core/internal/model"
	"graphrlm.dev/core/internal/rlm"
)

// RunOptions parameterises one memory-augmented driver invocation, the
// run() entry point's memory-related fields (spec §6).
type RunOptions struct {
	RunID           string
	TrajectoryID    string
	OntologyID      string
	Input           rlm.Input
	RetrieveK       int
	CurriculumLevel string
	ExtractMemories bool
}

// RunResult bundles the driver's prediction with the memory ids a caller
// needs to report, per spec §6's Result shape.
type RunResult struct {
	Prediction         rlm.Prediction
	Judgment           model.Judgment
	RetrievedMemoryIDs []string
	NewMemoryIDs       []string
}

// RunWithMemory implements the full Retrieve -> Inject -> Execute -> Judge
// -> Extract -> Store lifecycle from spec §4.6 around one driver
// invocation. The trajectory and memory-usage rows are persisted even when
// the driver itself returns an error; in that case no judgment is made or
// stored and nothing is extracted.
func (b *Bank) RunWithMemory(ctx context.Context, driver *rlm.Driver, opts RunOptions) (RunResult, error) {
	retrieved, err := b.Retrieve(ctx, opts.Input.Query, opts.OntologyID, opts.CurriculumLevel, opts.RetrieveK)
	if err != nil {
		slog.WarnContext(ctx, "bank: retrieve failed, proceeding without memory", "run_id", opts.RunID, "error", err)
	}
	if injected := Inject(retrieved); injected != "" {
		opts.Input.Context = strings.TrimSpace(injected + "\n\n" + opts.Input.Context)
	}

	pred, runErr := driver.Run(ctx, opts.RunID, opts.TrajectoryID, opts.Input)

	if persistErr := b.stores.Trajectories.Upsert(ctx, pred.Trajectory); persistErr != nil {
		slog.ErrorContext(ctx, "bank: persisting trajectory failed", "trajectory_id", opts.TrajectoryID, "error", persistErr)
	}

	retrievedIDs := make([]string, 0, len(retrieved))
	for _, ri := range retrieved {
		retrievedIDs = append(retrievedIDs, ri.Item.ID)
		if usageErr := b.stores.MemoryUsage.Record(ctx, model.MemoryUsage{
			TrajectoryID: opts.TrajectoryID, MemoryID: ri.Item.ID, Rank: ri.Rank, Score: ri.Score,
		}); usageErr != nil {
			slog.WarnContext(ctx, "bank: recording memory usage failed", "memory_id", ri.Item.ID, "error", usageErr)
		}
		if countErr := b.stores.Memory.IncrementCounters(ctx, ri.Item.ID, 1, 0, 0); countErr != nil {
			slog.WarnContext(ctx, "bank: incrementing memory access count failed", "memory_id", ri.Item.ID, "error", countErr)
		}
	}

	if runErr != nil {
		return RunResult{Prediction: pred, RetrievedMemoryIDs: retrievedIDs}, runErr
	}

	judgment := b.Judge(ctx, pred.Trajectory)
	if err := b.stores.Judgments.Upsert(ctx, judgment); err != nil {
		slog.ErrorContext(ctx, "bank: persisting judgment failed", "trajectory_id", opts.TrajectoryID, "error", err)
	}

	for _, ri := range retrieved {
		success, failure := int64(0), int64(0)
		if judgment.IsSuccess {
			success = 1
		} else {
			failure = 1
		}
		if countErr := b.stores.Memory.IncrementCounters(ctx, ri.Item.ID, 0, success, failure); countErr != nil {
			slog.WarnContext(ctx, "bank: incrementing memory outcome count failed", "memory_id", ri.Item.ID, "error", countErr)
		}
	}

	result := RunResult{Prediction: pred, Judgment: judgment, RetrievedMemoryIDs: retrievedIDs}

	if !opts.ExtractMemories {
		return result, nil
	}

	for _, draft := range b.Extract(ctx, opts.RunID, opts.OntologyID, pred.Trajectory, judgment) {
		stored, err := b.stores.Memory.Upsert(ctx, draft)
		if err != nil {
			slog.WarnContext(ctx, "bank: storing extracted memory item failed", "memory_id", draft.ID, "error", err)
			continue
		}
		result.NewMemoryIDs = append(result.NewMemoryIDs, stored.ID)
	}
	return result, nil
}
