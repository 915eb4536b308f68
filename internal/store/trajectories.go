package store

import (
	"context"
	"encoding/json"
	"errors"

	"graphrlm.dev/core/core/db/sqlc"
	"graphrlm.dev/core/internal/model"
	"github.com/jackc/pgx/v5"
)

type trajectoryStore struct {
	queries *sqlc.Queries
}

func newTrajectoryStore(queries *sqlc.Queries) TrajectoryStore {
	return &trajectoryStore{queries: queries}
}

// trajectoryArtifact is the JSON shape persisted in artifact_doc: the parts
// of model.Trajectory too detailed for their own columns.
type trajectoryArtifact struct {
	Context     string                 `json:"context"`
	Entries     []model.IterationEntry `json:"entries"`
	FinalOutput map[string]any         `json:"final_output"`
	Extracted   bool                   `json:"extracted"`
}

func (s *trajectoryStore) Upsert(ctx context.Context, t model.Trajectory) error {
	artifact, err := json.Marshal(trajectoryArtifact{
		Context:     t.Context,
		Entries:     t.Entries,
		FinalOutput: t.FinalOutput,
		Extracted:   t.Extracted,
	})
	if err != nil {
		return err
	}

	finalAnswer := ""
	if text, ok := t.FinalOutput["text"].(string); ok {
		finalAnswer = text
	} else if len(t.FinalOutput) > 0 {
		if b, err := json.Marshal(t.FinalOutput); err == nil {
			finalAnswer = string(b)
		}
	}

	_, err = s.queries.CreateTrajectory(ctx, sqlc.CreateTrajectoryParams{
		TrajectoryID:   t.TrajectoryID,
		RunID:          t.RunID,
		TaskQuery:      t.Query,
		FinalAnswer:    finalAnswer,
		IterationCount: int32(t.IterationCount),
		Converged:      t.Converged,
		ArtifactDoc:    artifact,
	})
	return err
}

func (s *trajectoryStore) Get(ctx context.Context, trajectoryID string) (model.Trajectory, error) {
	row, err := s.queries.GetTrajectory(ctx, trajectoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Trajectory{}, ErrNotFound
		}
		return model.Trajectory{}, err
	}
	return toTrajectoryModel(row)
}

func (s *trajectoryStore) ListByRun(ctx context.Context, runID string) ([]model.Trajectory, error) {
	rows, err := s.queries.ListTrajectoriesByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return toTrajectoryModels(rows)
}

func (s *trajectoryStore) ListRecent(ctx context.Context, limit int32) ([]model.Trajectory, error) {
	rows, err := s.queries.ListRecentTrajectories(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toTrajectoryModels(rows)
}

func toTrajectoryModel(row sqlc.Trajectory) (model.Trajectory, error) {
	var artifact trajectoryArtifact
	if len(row.ArtifactDoc) > 0 {
		if err := json.Unmarshal(row.ArtifactDoc, &artifact); err != nil {
			return model.Trajectory{}, err
		}
	}
	return model.Trajectory{
		RunID:          row.RunID,
		TrajectoryID:   row.TrajectoryID,
		Query:          row.TaskQuery,
		Context:        artifact.Context,
		Entries:        artifact.Entries,
		FinalOutput:    artifact.FinalOutput,
		Extracted:      artifact.Extracted,
		Converged:      row.Converged,
		IterationCount: int(row.IterationCount),
		CreatedAt:      row.CreatedAt,
	}, nil
}

func toTrajectoryModels(rows []sqlc.Trajectory) ([]model.Trajectory, error) {
	out := make([]model.Trajectory, len(rows))
	for i, row := range rows {
		t, err := toTrajectoryModel(row)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
