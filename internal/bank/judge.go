package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"graphrlm.dev/core/common/llm"
	"graphrlm.dev/core/internal/model"
)

const judgeSystemPrompt = `You are grading one run of a query-construction agent.
Given the task query, its final payload, and a bounded trajectory artifact,
decide whether the run succeeded. Respond only with the requested JSON shape.
"missing" lists short tags for capabilities or information the agent lacked,
when relevant; otherwise an empty list.`

// judgeSchema is the strict JSON shape the sub-LLM call is constrained to,
// per spec §4.6's Judge procedure.
type judgeSchema struct {
	IsSuccess  bool     `json:"is_success"`
	Reason     string   `json:"reason"`
	Confidence string   `json:"confidence"`
	Missing    []string `json:"missing"`
}

// Judge runs after a driver invocation completes, scoring the terminal
// payload (or extract-fallback output) against the query. On any parse or
// call failure it returns the spec's conservative default judgment.
func (b *Bank) Judge(ctx context.Context, traj model.Trajectory) model.Judgment {
	fallback := model.Judgment{
		TrajectoryID: traj.TrajectoryID,
		IsSuccess:    false,
		Reason:       "judgment-parse-failed",
		Confidence:   model.ConfidenceLow,
		Missing:      []string{},
	}

	payload, err := json.Marshal(traj.FinalOutput)
	if err != nil {
		slog.WarnContext(ctx, "bank: judge: marshaling final payload failed", "trajectory_id", traj.TrajectoryID, "error", err)
		return fallback
	}

	prompt := fmt.Sprintf("Query: %s\n\nFinal payload: %s\n\nTrajectory artifact:\n%s",
		traj.Query, string(payload), BuildArtifact(traj))

	var result judgeSchema
	_, err = b.judge.Chat(ctx, llm.Request{
		SystemPrompt: judgeSystemPrompt,
		UserPrompt:   prompt,
		SchemaName:   "judgment",
		Schema:       llm.GenerateSchema[judgeSchema](),
		Temperature:  llm.Temp(0),
	}, &result)
	if err != nil {
		slog.WarnContext(ctx, "bank: judge call failed, defaulting to conservative judgment", "trajectory_id", traj.TrajectoryID, "error", err)
		return fallback
	}

	confidence := model.Confidence(result.Confidence)
	switch confidence {
	case model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow:
	default:
		confidence = model.ConfidenceLow
	}
	if result.Missing == nil {
		result.Missing = []string{}
	}

	return model.Judgment{
		TrajectoryID: traj.TrajectoryID,
		IsSuccess:    result.IsSuccess,
		Reason:       result.Reason,
		Confidence:   confidence,
		Missing:      result.Missing,
	}
}
