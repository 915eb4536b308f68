package bank

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"graphrlm.dev/core/common/llm"
	"graphrlm.dev/core/internal/model"
)

// DefaultMetaAnalysisInterval is how many runs accumulate between
// meta-analysis passes, per spec §4.6 ("every N runs").
const DefaultMetaAnalysisInterval = 20

const metaSystemPrompt = `You study a batch of recent agent-run digests (iteration counts,
tool-usage histograms, failure modes) and propose cross-trajectory memory items:
patterns that recur across multiple runs, not lessons from any single one.
Respond only with the requested JSON shape. Propose fewer items, or none, rather
than padding the list.`

var callPattern = regexp.MustCompile(`\b([a-z_][a-z0-9_]*)\(`)

// trajectoryDigest summarises one trajectory for the meta-analysis prompt,
// dropping everything but shape: no query text, no code, no output.
type trajectoryDigest struct {
	TrajectoryID   string
	IterationCount int
	Converged      bool
	ToolUsage      map[string]int
	FailureModes   []string
}

// RunMetaAnalysis digests the last n trajectories and proposes
// cross-trajectory memory items tagged source_type=meta-analysis. Returns
// the items actually persisted.
func (b *Bank) RunMetaAnalysis(ctx context.Context, runID string, n int) ([]model.MemoryItem, error) {
	if n <= 0 {
		n = DefaultMetaAnalysisInterval
	}
	trajs, err := b.stores.Trajectories.ListRecent(ctx, int32(n))
	if err != nil {
		return nil, fmt.Errorf("listing recent trajectories: %w", err)
	}
	if len(trajs) == 0 {
		return nil, nil
	}

	digests := make([]trajectoryDigest, len(trajs))
	for i, t := range trajs {
		digests[i] = digestTrajectory(t)
	}

	var result extractSchema
	_, err = b.judge.Chat(ctx, llm.Request{
		SystemPrompt: metaSystemPrompt,
		UserPrompt:   renderDigests(digests),
		SchemaName:   "meta_memory_drafts",
		Schema:       llm.GenerateSchema[extractSchema](),
		Temperature:  llm.Temp(0.2),
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("meta-analysis call failed: %w", err)
	}

	drafts := result.Items
	if len(drafts) > 3 {
		drafts = drafts[:3]
	}

	stored := make([]model.MemoryItem, 0, len(drafts))
	for _, d := range drafts {
		if d.Title == "" || d.Content == "" {
			continue
		}
		title := truncateField(d.Title, model.MaxMemoryTitleChars)
		content := truncateField(d.Content, model.MaxMemoryContentChars)
		scope := model.Scope{Transferable: true}

		item := model.MemoryItem{
			ID:          model.HashID(title, content, scope),
			Title:       title,
			Description: truncateField(d.Description, model.MaxMemoryDescriptionChars),
			Content:     content,
			SourceType:  model.SourceTypeMetaAnalysis,
			CreatedAt:   time.Now(),
			Tags:        d.Tags,
			Scope:       scope,
			Provenance: model.Provenance{
				Source:         model.SourceTypeMetaAnalysis,
				OriginatingRun: runID,
			},
		}
		saved, err := b.stores.Memory.Upsert(ctx, item)
		if err != nil {
			return stored, fmt.Errorf("storing meta-analysis item %s: %w", item.ID, err)
		}
		stored = append(stored, saved)
	}
	return stored, nil
}

func digestTrajectory(t model.Trajectory) trajectoryDigest {
	usage := map[string]int{}
	var failures []string
	for _, e := range t.Entries {
		for _, m := range callPattern.FindAllStringSubmatch(e.Code, -1) {
			usage[m[1]]++
		}
		if e.ErrorClass == model.ErrorClassRecoverable {
			failures = append(failures, e.Output)
		}
	}
	return trajectoryDigest{
		TrajectoryID:   t.TrajectoryID,
		IterationCount: t.IterationCount,
		Converged:      t.Converged,
		ToolUsage:      usage,
		FailureModes:   failures,
	}
}

func renderDigests(digests []trajectoryDigest) string {
	var b strings.Builder
	for _, d := range digests {
		b.WriteString(fmt.Sprintf("- %s: %d iterations, converged=%v, tools=%s",
			d.TrajectoryID, d.IterationCount, d.Converged, renderToolUsage(d.ToolUsage)))
		if len(d.FailureModes) > 0 {
			b.WriteString(fmt.Sprintf(", failures=%d", len(d.FailureModes)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderToolUsage(usage map[string]int) string {
	names := make([]string, 0, len(usage))
	for name := range usage {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s:%d", name, usage[name])
	}
	return strings.Join(parts, ",")
}
