package bank

import (
	"context"
	"log/slog"
	"time"

	"graphrlm.dev/core/common/llm"
	"graphrlm.dev/core/internal/model"
)

const extractSystemPrompt = `You distill reusable procedural knowledge from one completed agent run.
Given the task query, the judgment, and a bounded trajectory artifact, propose
0 to 3 memory items other runs could reuse. Each item must be:
- procedural: how to use the tools/handles, not a restatement of the answer.
- transferable: no hard-coded identifiers or literal values unless the item
  only makes sense pinned to this ontology, in which case set scoped_to_ontology.
- bounded: a short title, a one-line description, and terse content.
Respond only with the requested JSON shape. Propose fewer items, or none, rather
than padding to three.`

// extractDraft is one candidate memory item as the sub-LLM proposes it,
// before hashing and persistence.
type extractDraft struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Content          string   `json:"content"`
	Tags             []string `json:"tags"`
	ScopedToOntology bool     `json:"scoped_to_ontology"`
}

type extractSchema struct {
	Items []extractDraft `json:"items"`
}

// Extract proposes 0-3 memory item drafts from one completed run, per spec
// §4.6. ontologyID is only recorded on a draft's scope when the sub-LLM
// marks it ontology-scoped; every other draft stays universal
// (Scope.Ontology == nil), keeping it transferable by default.
func (b *Bank) Extract(ctx context.Context, runID, ontologyID string, traj model.Trajectory, judgment model.Judgment) []model.MemoryItem {
	prompt := "Query: " + traj.Query + "\n\n" +
		"Judgment: " + judgeSummary(judgment) + "\n\n" +
		"Trajectory artifact:\n" + BuildArtifact(traj)

	var result extractSchema
	_, err := b.judge.Chat(ctx, llm.Request{
		SystemPrompt: extractSystemPrompt,
		UserPrompt:   prompt,
		SchemaName:   "memory_drafts",
		Schema:       llm.GenerateSchema[extractSchema](),
		Temperature:  llm.Temp(0.2),
	}, &result)
	if err != nil {
		slog.WarnContext(ctx, "bank: extract call failed, returning zero drafts", "trajectory_id", traj.TrajectoryID, "error", err)
		return nil
	}

	drafts := result.Items
	if len(drafts) > 3 {
		drafts = drafts[:3]
	}

	sourceType := model.SourceTypeSuccess
	if !judgment.IsSuccess {
		sourceType = model.SourceTypeFailure
	}

	items := make([]model.MemoryItem, 0, len(drafts))
	for _, d := range drafts {
		if d.Title == "" || d.Content == "" {
			continue
		}
		title := truncateField(d.Title, model.MaxMemoryTitleChars)
		description := truncateField(d.Description, model.MaxMemoryDescriptionChars)
		content := truncateField(d.Content, model.MaxMemoryContentChars)

		scope := model.Scope{TaskTypes: nil, Transferable: !d.ScopedToOntology}
		if d.ScopedToOntology && ontologyID != "" {
			scope.Ontology = &ontologyID
		}

		items = append(items, model.MemoryItem{
			ID:          model.HashID(title, content, scope),
			Title:       title,
			Description: description,
			Content:     content,
			SourceType:  sourceType,
			TaskQuery:   traj.Query,
			CreatedAt:   time.Now(),
			Tags:        d.Tags,
			Scope:       scope,
			Provenance: model.Provenance{
				Source:                sourceType,
				OriginatingTrajectory: traj.TrajectoryID,
				OriginatingRun:        runID,
			},
		})
	}
	return items
}

func judgeSummary(j model.Judgment) string {
	status := "failure"
	if j.IsSuccess {
		status = "success"
	}
	return status + " (" + string(j.Confidence) + " confidence): " + j.Reason
}

// truncateField caps a field at max chars, per spec §3's length caps.
func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
