// Package run wires C1-C6 into the single typed entry point spec §6
// describes: Run(query, ontology_reference, ...) loads the ontology,
// builds the bounded tool surface and iteration driver for one call, and
// drives it through the ReasoningBank's retrieve/inject/execute/judge/
// extract/store lifecycle, persisting everything as it goes.
package run

import (
	"context"
	"fmt"
	"log/slog"

	"graphrlm.dev/core/common/id"
	"graphrlm.dev/core/common/llm"
	"graphrlm.dev/core/core/db/sqlc"
	"graphrlm.dev/core/internal/bank"
	"graphrlm.dev/core/internal/graph"
	"graphrlm.dev/core/internal/interp"
	"graphrlm.dev/core/internal/model"
	"graphrlm.dev/core/internal/rlm"
	"graphrlm.dev/core/internal/store"
	"graphrlm.dev/core/internal/tools"
)

// DefaultSchema is the terminal-output contract every run validates its
// TerminalOutcome against, per spec §6's "at minimum answer, sparql,
// evidence".
var DefaultSchema = rlm.OutputSchema{
	{Name: "answer", Required: true, Kind: "text"},
	{Name: "sparql", Required: true, Kind: "text"},
	{Name: "evidence", Required: true, Kind: "mapping"},
}

// Deps bundles every collaborator one Run call needs. Root and Sub may be
// the same client; a production deployment typically points Sub at a
// smaller/cheaper model (spec §2).
type Deps struct {
	Library graph.Library
	Remote  graph.RemoteClient // optional; nil disables sparql_remote
	Root    llm.AgentClient
	Sub     llm.AgentClient // optional; falls back to Root when nil
	Judge   llm.Client
	Stores  *store.Stores
	Index   bank.Index // optional; falls back to in-process BM25
}

// Options parameterises one run() call, mirroring spec §6's signature.
// Zero values are replaced by the package defaults in Run.
type Options struct {
	MemoryBackend         bank.Index // overrides Deps.Index for this call only
	RetrieveK             int
	ExtractMemories       bool
	SenseCard             string
	SeedMemories          []model.MemoryItem
	MaxIterations         int
	MaxLLMCalls           int
	OutputTruncationLimit int
	EnableVerification    bool
	Schema                rlm.OutputSchema
}

// Result is spec §6's run() return value: the validated terminal fields,
// the full trajectory, convergence status, and the ids of every memory
// item retrieved or newly stored.
type Result struct {
	Fields             map[string]any
	Trajectory         model.Trajectory
	IterationCount     int
	Converged          bool
	RetrievedMemoryIDs []string
	NewMemoryIDs       []string
}

// DefaultOptions returns the spec §6 run() defaults: k=3, extract_memories
// and enable_verification both on, a 15-step/50-call budget, and the
// answer/sparql/evidence terminal schema. Bool fields can't distinguish a
// caller's explicit false from an unset zero value, so callers who want
// the documented defaults should start from DefaultOptions() rather than
// a bare Options{}.
func DefaultOptions() Options {
	return Options{
		RetrieveK:             bank.DefaultRetrieveK,
		ExtractMemories:       true,
		MaxIterations:         rlm.DefaultMaxIterations,
		MaxLLMCalls:           rlm.DefaultMaxLLMCalls,
		OutputTruncationLimit: interp.DefaultOutputTruncationLimit,
		EnableVerification:    true,
		Schema:                DefaultSchema,
	}
}

func applyDefaults(opts Options) Options {
	if opts.RetrieveK == 0 {
		opts.RetrieveK = bank.DefaultRetrieveK
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = rlm.DefaultMaxIterations
	}
	if opts.MaxLLMCalls == 0 {
		opts.MaxLLMCalls = rlm.DefaultMaxLLMCalls
	}
	if opts.OutputTruncationLimit == 0 {
		opts.OutputTruncationLimit = interp.DefaultOutputTruncationLimit
	}
	if opts.Schema == nil {
		opts.Schema = DefaultSchema
	}
	return opts
}

// Run loads the ontology at ontologyReference, builds the bounded tool
// surface and iteration driver for this call, and drives the full
// ReasoningBank lifecycle around it. See DefaultOptions for the documented
// spec §6 defaults; a bare Options{} leaves extract_memories and
// enable_verification off, since a zero bool can't express "use the
// default" versus "explicitly false".
func Run(ctx context.Context, deps Deps, query, ontologyReference string, opts Options) (Result, error) {
	opts = applyDefaults(opts)

	handle, meta, err := deps.Library.Load(ctx, ontologyReference)
	if err != nil {
		return Result{}, fmt.Errorf("loading ontology %q: %w", ontologyReference, err)
	}

	runID := fmt.Sprintf("run-%d", id.New())
	trajectoryID := fmt.Sprintf("traj-%d", id.New())

	if _, err := deps.Stores.Runs.Create(ctx, sqlc.Run{
		RunID:        runID,
		ModelID:      deps.Root.Model(),
		OntologyID:   meta.OntologyID,
		OntologyPath: ontologyReference,
		Notes:        query,
	}); err != nil {
		slog.WarnContext(ctx, "run: persisting run record failed, continuing", "run_id", runID, "error", err)
	}

	for _, seed := range opts.SeedMemories {
		seed.SourceType = model.SourceTypeHumanSeed
		if seed.ID == "" {
			seed.ID = model.HashID(seed.Title, seed.Content, seed.Scope)
		}
		if _, err := deps.Stores.Memory.Upsert(ctx, seed); err != nil {
			slog.WarnContext(ctx, "run: seeding memory item failed", "memory_id", seed.ID, "error", err)
		}
	}

	subAgent := deps.Sub
	if subAgent == nil {
		subAgent = deps.Root
	}
	surface := tools.New(ctx, deps.Library, handle, meta, deps.Remote, NewAgentSubLLM(subAgent), opts.MaxLLMCalls)
	surface.SetVerification(opts.EnableVerification)

	it := interp.New(opts.OutputTruncationLimit, interp.DefaultExecTimeout)
	driver, err := rlm.New(deps.Root, surface, it, opts.MaxIterations, opts.Schema)
	if err != nil {
		return Result{}, fmt.Errorf("building driver: %w", err)
	}

	index := deps.Index
	if opts.MemoryBackend != nil {
		index = opts.MemoryBackend
	}
	b := bank.New(deps.Stores, deps.Judge, index)

	lifecycleResult, err := b.RunWithMemory(ctx, driver, bank.RunOptions{
		RunID:           runID,
		TrajectoryID:    trajectoryID,
		OntologyID:      meta.OntologyID,
		Input:           rlm.Input{Query: query, SenseCard: opts.SenseCard},
		RetrieveK:       opts.RetrieveK,
		ExtractMemories: opts.ExtractMemories,
	})

	result := Result{
		Fields:             lifecycleResult.Prediction.Fields,
		Trajectory:         lifecycleResult.Prediction.Trajectory,
		IterationCount:     lifecycleResult.Prediction.Trajectory.IterationCount,
		Converged:          lifecycleResult.Prediction.Converged,
		RetrievedMemoryIDs: lifecycleResult.RetrievedMemoryIDs,
		NewMemoryIDs:       lifecycleResult.NewMemoryIDs,
	}
	if err != nil {
		return result, fmt.Errorf("run %s: %w", runID, err)
	}
	return result, nil
}
