package sqlc

import "context"

const createMemoryUsage = `-- name: CreateMemoryUsage :exec
INSERT INTO memory_usage (trajectory_id, memory_id, rank, score)
VALUES ($1, $2, $3, $4)
ON CONFLICT (trajectory_id, memory_id) DO UPDATE SET
    rank  = EXCLUDED.rank,
    score = EXCLUDED.score
`

type CreateMemoryUsageParams struct {
	TrajectoryID string
	MemoryID     string
	Rank         int32
	Score        float64
}

func (q *Queries) CreateMemoryUsage(ctx context.Context, arg CreateMemoryUsageParams) error {
	_, err := q.db.Exec(ctx, createMemoryUsage, arg.TrajectoryID, arg.MemoryID, arg.Rank, arg.Score)
	return err
}

const listMemoryUsageByTrajectory = `-- name: ListMemoryUsageByTrajectory :many
SELECT trajectory_id, memory_id, rank, score
FROM memory_usage WHERE trajectory_id = $1 ORDER BY rank
`

func (q *Queries) ListMemoryUsageByTrajectory(ctx context.Context, trajectoryID string) ([]MemoryUsage, error) {
	rows, err := q.db.Query(ctx, listMemoryUsageByTrajectory, trajectoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MemoryUsage
	for rows.Next() {
		var u MemoryUsage
		if err := rows.Scan(&u.TrajectoryID, &u.MemoryID, &u.Rank, &u.Score); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

const listMemoryUsageByMemory = `-- name: ListMemoryUsageByMemory :many
SELECT trajectory_id, memory_id, rank, score
FROM memory_usage WHERE memory_id = $1 ORDER BY trajectory_id
`

func (q *Queries) ListMemoryUsageByMemory(ctx context.Context, memoryID string) ([]MemoryUsage, error) {
	rows, err := q.db.Query(ctx, listMemoryUsageByMemory, memoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MemoryUsage
	for rows.Next() {
		var u MemoryUsage
		if err := rows.Scan(&u.TrajectoryID, &u.MemoryID, &u.Rank, &u.Score); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
