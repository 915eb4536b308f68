package store

import (
	"context"
	"encoding/json"
	"errors"

	"graphrlm.dev/core/core/db/sqlc"
	"graphrlm.dev/core/internal/model"
	"github.com/jackc/pgx/v5"
)

type memoryStore struct {
	queries *sqlc.Queries
}

func newMemoryStore(queries *sqlc.Queries) MemoryStore {
	return &memoryStore{queries: queries}
}

// provenanceDoc is the JSON shape persisted in provenance_doc. Exemplar
// steps and complexity level ride along here rather than earning their own
// columns, since only source_type=exemplar items populate them.
type provenanceDoc struct {
	model.Provenance
	ComplexityLevel string               `json:"complexity_level,omitempty"`
	Steps           []model.ExemplarStep `json:"steps,omitempty"`
}

func (s *memoryStore) Upsert(ctx context.Context, item model.MemoryItem) (model.MemoryItem, error) {
	tagsDoc, err := json.Marshal(item.Tags)
	if err != nil {
		return model.MemoryItem{}, err
	}
	scopeDoc, err := json.Marshal(item.Scope)
	if err != nil {
		return model.MemoryItem{}, err
	}
	provDoc, err := json.Marshal(provenanceDoc{
		Provenance:      item.Provenance,
		ComplexityLevel: item.ComplexityLevel,
		Steps:           item.Steps,
	})
	if err != nil {
		return model.MemoryItem{}, err
	}

	row, err := s.queries.UpsertMemoryItem(ctx, sqlc.UpsertMemoryItemParams{
		MemoryID:      item.ID,
		Title:         item.Title,
		Description:   item.Description,
		Content:       item.Content,
		SourceType:    string(item.SourceType),
		TaskQuery:     item.TaskQuery,
		TagsDoc:       tagsDoc,
		ScopeDoc:      scopeDoc,
		ProvenanceDoc: provDoc,
		AccessCount:   item.AccessCount,
		SuccessCount:  item.SuccessContextCount,
		FailureCount:  item.FailureContextCount,
	})
	if err != nil {
		return model.MemoryItem{}, err
	}
	return toMemoryItemModel(row)
}

func (s *memoryStore) Get(ctx context.Context, memoryID string) (model.MemoryItem, error) {
	row, err := s.queries.GetMemoryItem(ctx, memoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MemoryItem{}, ErrNotFound
		}
		return model.MemoryItem{}, err
	}
	return toMemoryItemModel(row)
}

func (s *memoryStore) List(ctx context.Context) ([]model.MemoryItem, error) {
	rows, err := s.queries.ListMemoryItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.MemoryItem, len(rows))
	for i, row := range rows {
		item, err := toMemoryItemModel(row)
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

func (s *memoryStore) IncrementCounters(ctx context.Context, memoryID string, access, success, failure int64) error {
	return s.queries.IncrementMemoryCounters(ctx, sqlc.IncrementMemoryCountersParams{
		MemoryID: memoryID,
		Access:   access,
		Success:  success,
		Failure:  failure,
	})
}

func toMemoryItemModel(row sqlc.MemoryItem) (model.MemoryItem, error) {
	var tags []string
	if len(row.TagsDoc) > 0 {
		if err := json.Unmarshal(row.TagsDoc, &tags); err != nil {
			return model.MemoryItem{}, err
		}
	}
	var scope model.Scope
	if len(row.ScopeDoc) > 0 {
		if err := json.Unmarshal(row.ScopeDoc, &scope); err != nil {
			return model.MemoryItem{}, err
		}
	}
	var prov provenanceDoc
	if len(row.ProvenanceDoc) > 0 {
		if err := json.Unmarshal(row.ProvenanceDoc, &prov); err != nil {
			return model.MemoryItem{}, err
		}
	}

	return model.MemoryItem{
		ID:                  row.MemoryID,
		Title:               row.Title,
		Description:         row.Description,
		Content:             row.Content,
		SourceType:          model.SourceType(row.SourceType),
		TaskQuery:           row.TaskQuery,
		CreatedAt:           row.CreatedAt,
		Tags:                tags,
		Scope:               scope,
		Provenance:          prov.Provenance,
		AccessCount:         row.AccessCount,
		SuccessContextCount: row.SuccessCount,
		FailureContextCount: row.FailureCount,
		ComplexityLevel:     prov.ComplexityLevel,
		Steps:               prov.Steps,
	}, nil
}

// --- Memory usage ------------------------------------------------------

type memoryUsageStore struct {
	queries *sqlc.Queries
}

func newMemoryUsageStore(queries *sqlc.Queries) MemoryUsageStore {
	return &memoryUsageStore{queries: queries}
}

func (s *memoryUsageStore) Record(ctx context.Context, u model.MemoryUsage) error {
	return s.queries.CreateMemoryUsage(ctx, sqlc.CreateMemoryUsageParams{
		TrajectoryID: u.TrajectoryID,
		MemoryID:     u.MemoryID,
		Rank:         int32(u.Rank),
		Score:        u.Score,
	})
}

func (s *memoryUsageStore) ListByTrajectory(ctx context.Context, trajectoryID string) ([]model.MemoryUsage, error) {
	rows, err := s.queries.ListMemoryUsageByTrajectory(ctx, trajectoryID)
	if err != nil {
		return nil, err
	}
	out := make([]model.MemoryUsage, len(rows))
	for i, row := range rows {
		out[i] = model.MemoryUsage{
			TrajectoryID: row.TrajectoryID,
			MemoryID:     row.MemoryID,
			Rank:         int(row.Rank),
			Score:        row.Score,
		}
	}
	return out, nil
}
