package sqlc

import "context"

// upsertMemoryItem is idempotent by memory_id (spec §3: "Re-inserting the
// same content is a no-op on cardinality and increments counters only").
// Content fields are immutable once inserted — only the conflict branch's
// counter bumps ever mutate an existing row.
const upsertMemoryItem = `-- name: UpsertMemoryItem :one
INSERT INTO memory_items (
    memory_id, title, description, content, source_type, task_query,
    tags_doc, scope_doc, provenance_doc, access_count, success_count, failure_count
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (memory_id) DO UPDATE SET
    access_count  = memory_items.access_count + EXCLUDED.access_count,
    success_count = memory_items.success_count + EXCLUDED.success_count,
    failure_count = memory_items.failure_count + EXCLUDED.failure_count
RETURNING memory_id, title, description, content, source_type, task_query,
    created_at, tags_doc, scope_doc, provenance_doc, access_count, success_count, failure_count
`

type UpsertMemoryItemParams struct {
	MemoryID      string
	Title         string
	Description   string
	Content       string
	SourceType    string
	TaskQuery     string
	TagsDoc       []byte
	ScopeDoc      []byte
	ProvenanceDoc []byte
	AccessCount   int64
	SuccessCount  int64
	FailureCount  int64
}

func (q *Queries) UpsertMemoryItem(ctx context.Context, arg UpsertMemoryItemParams) (MemoryItem, error) {
	row := q.db.QueryRow(ctx, upsertMemoryItem,
		arg.MemoryID, arg.Title, arg.Description, arg.Content, arg.SourceType, arg.TaskQuery,
		arg.TagsDoc, arg.ScopeDoc, arg.ProvenanceDoc, arg.AccessCount, arg.SuccessCount, arg.FailureCount)
	return scanMemoryItem(row)
}

const getMemoryItem = `-- name: GetMemoryItem :one
SELECT memory_id, title, description, content, source_type, task_query,
    created_at, tags_doc, scope_doc, provenance_doc, access_count, success_count, failure_count
FROM memory_items WHERE memory_id = $1
`

func (q *Queries) GetMemoryItem(ctx context.Context, memoryID string) (MemoryItem, error) {
	row := q.db.QueryRow(ctx, getMemoryItem, memoryID)
	return scanMemoryItem(row)
}

const listMemoryItems = `-- name: ListMemoryItems :many
SELECT memory_id, title, description, content, source_type, task_query,
    created_at, tags_doc, scope_doc, provenance_doc, access_count, success_count, failure_count
FROM memory_items ORDER BY created_at
`

// ListMemoryItems returns the full corpus; the in-process BM25 fallback
// (internal/bank) ranks over this document view when no Typesense
// collection is configured.
func (q *Queries) ListMemoryItems(ctx context.Context) ([]MemoryItem, error) {
	rows, err := q.db.Query(ctx, listMemoryItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MemoryItem
	for rows.Next() {
		m, err := scanMemoryItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const incrementMemoryCounters = `-- name: IncrementMemoryCounters :exec
UPDATE memory_items
SET access_count  = access_count + $2,
    success_count = success_count + $3,
    failure_count = failure_count + $4
WHERE memory_id = $1
`

type IncrementMemoryCountersParams struct {
	MemoryID string
	Access   int64
	Success  int64
	Failure  int64
}

func (q *Queries) IncrementMemoryCounters(ctx context.Context, arg IncrementMemoryCountersParams) error {
	_, err := q.db.Exec(ctx, incrementMemoryCounters, arg.MemoryID, arg.Access, arg.Success, arg.Failure)
	return err
}

func scanMemoryItem(row rowScanner) (MemoryItem, error) {
	var m MemoryItem
	err := row.Scan(&m.MemoryID, &m.Title, &m.Description, &m.Content, &m.SourceType, &m.TaskQuery,
		&m.CreatedAt, &m.TagsDoc, &m.ScopeDoc, &m.ProvenanceDoc, &m.AccessCount, &m.SuccessCount, &m.FailureCount)
	return m, err
}
