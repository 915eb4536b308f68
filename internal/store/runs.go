package store

import (
	"context"
	"errors"

	"graphrlm.dev/core/core/db/sqlc"
	"github.com/jackc/pgx/v5"
)

type runStore struct {
	queries *sqlc.Queries
}

func newRunStore(queries *sqlc.Queries) RunStore {
	return &runStore{queries: queries}
}

func (s *runStore) Create(ctx context.Context, run sqlc.Run) (sqlc.Run, error) {
	return s.queries.CreateRun(ctx, sqlc.CreateRunParams{
		RunID:        run.RunID,
		ModelID:      run.ModelID,
		OntologyID:   run.OntologyID,
		OntologyPath: run.OntologyPath,
		Notes:        run.Notes,
	})
}

func (s *runStore) Get(ctx context.Context, runID string) (sqlc.Run, error) {
	row, err := s.queries.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sqlc.Run{}, ErrNotFound
		}
		return sqlc.Run{}, err
	}
	return row, nil
}
