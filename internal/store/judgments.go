package store

import (
	"context"
	"encoding/json"
	"errors"

	"graphrlm.dev/core/core/db/sqlc"
	"graphrlm.dev/core/internal/model"
	"github.com/jackc/pgx/v5"
)

type judgmentStore struct {
	queries *sqlc.Queries
}

func newJudgmentStore(queries *sqlc.Queries) JudgmentStore {
	return &judgmentStore{queries: queries}
}

func (s *judgmentStore) Upsert(ctx context.Context, j model.Judgment) error {
	missing, err := json.Marshal(j.Missing)
	if err != nil {
		return err
	}
	_, err = s.queries.UpsertJudgment(ctx, sqlc.UpsertJudgmentParams{
		TrajectoryID: j.TrajectoryID,
		IsSuccess:    j.IsSuccess,
		Reason:       j.Reason,
		Confidence:   string(j.Confidence),
		MissingDoc:   missing,
	})
	return err
}

func (s *judgmentStore) Get(ctx context.Context, trajectoryID string) (model.Judgment, error) {
	row, err := s.queries.GetJudgment(ctx, trajectoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Judgment{}, ErrNotFound
		}
		return model.Judgment{}, err
	}
	return toJudgmentModel(row)
}

func toJudgmentModel(row sqlc.Judgment) (model.Judgment, error) {
	var missing []string
	if len(row.MissingDoc) > 0 {
		if err := json.Unmarshal(row.MissingDoc, &missing); err != nil {
			return model.Judgment{}, err
		}
	}
	return model.Judgment{
		TrajectoryID: row.TrajectoryID,
		IsSuccess:    row.IsSuccess,
		Reason:       row.Reason,
		Confidence:   model.Confidence(row.Confidence),
		Missing:      missing,
	}, nil
}
