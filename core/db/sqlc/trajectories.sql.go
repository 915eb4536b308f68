package sqlc

import "context"

const createTrajectory = `-- name: CreateTrajectory :one
INSERT INTO trajectories (trajectory_id, run_id, task_query, final_answer, iteration_count, converged, artifact_doc, log_ref)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (trajectory_id) DO UPDATE SET
    final_answer    = EXCLUDED.final_answer,
    iteration_count = EXCLUDED.iteration_count,
    converged       = EXCLUDED.converged,
    artifact_doc    = EXCLUDED.artifact_doc,
    log_ref         = EXCLUDED.log_ref
RETURNING trajectory_id, run_id, task_query, final_answer, iteration_count, converged, artifact_doc, log_ref, created_at
`

type CreateTrajectoryParams struct {
	TrajectoryID   string
	RunID          string
	TaskQuery      string
	FinalAnswer    string
	IterationCount int32
	Converged      bool
	ArtifactDoc    []byte
	LogRef         string
}

func (q *Queries) CreateTrajectory(ctx context.Context, arg CreateTrajectoryParams) (Trajectory, error) {
	row := q.db.QueryRow(ctx, createTrajectory,
		arg.TrajectoryID, arg.RunID, arg.TaskQuery, arg.FinalAnswer,
		arg.IterationCount, arg.Converged, arg.ArtifactDoc, arg.LogRef)
	return scanTrajectory(row)
}

const getTrajectory = `-- name: GetTrajectory :one
SELECT trajectory_id, run_id, task_query, final_answer, iteration_count, converged, artifact_doc, log_ref, created_at
FROM trajectories WHERE trajectory_id = $1
`

func (q *Queries) GetTrajectory(ctx context.Context, trajectoryID string) (Trajectory, error) {
	row := q.db.QueryRow(ctx, getTrajectory, trajectoryID)
	return scanTrajectory(row)
}

const listTrajectoriesByRun = `-- name: ListTrajectoriesByRun :many
SELECT trajectory_id, run_id, task_query, final_answer, iteration_count, converged, artifact_doc, log_ref, created_at
FROM trajectories WHERE run_id = $1 ORDER BY created_at
`

func (q *Queries) ListTrajectoriesByRun(ctx context.Context, runID string) ([]Trajectory, error) {
	rows, err := q.db.Query(ctx, listTrajectoriesByRun, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trajectory
	for rows.Next() {
		t, err := scanTrajectoryRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const listRecentTrajectories = `-- name: ListRecentTrajectories :many
SELECT trajectory_id, run_id, task_query, final_answer, iteration_count, converged, artifact_doc, log_ref, created_at
FROM trajectories ORDER BY created_at DESC LIMIT $1
`

func (q *Queries) ListRecentTrajectories(ctx context.Context, limit int32) ([]Trajectory, error) {
	rows, err := q.db.Query(ctx, listRecentTrajectories, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trajectory
	for rows.Next() {
		t, err := scanTrajectoryRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrajectory(row rowScanner) (Trajectory, error) {
	var t Trajectory
	err := row.Scan(&t.TrajectoryID, &t.RunID, &t.TaskQuery, &t.FinalAnswer,
		&t.IterationCount, &t.Converged, &t.ArtifactDoc, &t.LogRef, &t.CreatedAt)
	return t, err
}

func scanTrajectoryRows(rows rowScanner) (Trajectory, error) {
	return scanTrajectory(rows)
}
