package sqlc

import "context"

const upsertJudgment = `-- name: UpsertJudgment :one
INSERT INTO judgments (trajectory_id, is_success, reason, confidence, missing_doc)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (trajectory_id) DO UPDATE SET
    is_success  = EXCLUDED.is_success,
    reason      = EXCLUDED.reason,
    confidence  = EXCLUDED.confidence,
    missing_doc = EXCLUDED.missing_doc
RETURNING trajectory_id, is_success, reason, confidence, missing_doc
`

type UpsertJudgmentParams struct {
	TrajectoryID string
	IsSuccess    bool
	Reason       string
	Confidence   string
	MissingDoc   []byte
}

func (q *Queries) UpsertJudgment(ctx context.Context, arg UpsertJudgmentParams) (Judgment, error) {
	row := q.db.QueryRow(ctx, upsertJudgment, arg.TrajectoryID, arg.IsSuccess, arg.Reason, arg.Confidence, arg.MissingDoc)
	var j Judgment
	err := row.Scan(&j.TrajectoryID, &j.IsSuccess, &j.Reason, &j.Confidence, &j.MissingDoc)
	return j, err
}

const getJudgment = `-- name: GetJudgment :one
SELECT trajectory_id, is_success, reason, confidence, missing_doc
FROM judgments WHERE trajectory_id = $1
`

func (q *Queries) GetJudgment(ctx context.Context, trajectoryID string) (Judgment, error) {
	row := q.db.QueryRow(ctx, getJudgment, trajectoryID)
	var j Judgment
	err := row.Scan(&j.TrajectoryID, &j.IsSuccess, &j.Reason, &j.Confidence, &j.MissingDoc)
	return j, err
}
