package sqlc

import "context"

const createRun = `-- name: CreateRun :one
INSERT INTO runs (run_id, model_id, ontology_id, ontology_path, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING run_id, created_at, model_id, ontology_id, ontology_path, notes
`

type CreateRunParams struct {
	RunID        string
	ModelID      string
	OntologyID   string
	OntologyPath string
	Notes        string
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) (Run, error) {
	row := q.db.QueryRow(ctx, createRun, arg.RunID, arg.ModelID, arg.OntologyID, arg.OntologyPath, arg.Notes)
	var r Run
	err := row.Scan(&r.RunID, &r.CreatedAt, &r.ModelID, &r.OntologyID, &r.OntologyPath, &r.Notes)
	return r, err
}

const getRun = `-- name: GetRun :one
SELECT run_id, created_at, model_id, ontology_id, ontology_path, notes
FROM runs WHERE run_id = $1
`

func (q *Queries) GetRun(ctx context.Context, runID string) (Run, error) {
	row := q.db.QueryRow(ctx, getRun, runID)
	var r Run
	err := row.Scan(&r.RunID, &r.CreatedAt, &r.ModelID, &r.OntologyID, &r.OntologyPath, &r.Notes)
	return r, err
}
