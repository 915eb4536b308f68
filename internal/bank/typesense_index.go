package bank

import (
	"context"
	"log/slog"

	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"
)

// typesenseDocument is the full-text document view one memory item is
// indexed under, per spec §4.6's preferred backend ("a full-text index on
// title ‖ description ‖ tags").
type typesenseDocument struct {
	ID       string `json:"id"`
	Document string `json:"document"`
}

// typesenseIndex is the preferred Index implementation: a derived search
// index over the relational store's memory_items, rather than a second
// source of truth. Documents are upserted lazily on Rank; the relational
// store remains authoritative.
type typesenseIndex struct {
	client     *typesense.Client
	collection string
}

// NewTypesenseIndex connects to a Typesense node and ensures the memory
// document collection exists.
func NewTypesenseIndex(ctx context.Context, serverURL, apiKey, collection string) (Index, error) {
	client := typesense.NewClient(
		typesense.WithServer(serverURL),
		typesense.WithAPIKey(apiKey),
	)

	schema := &api.CollectionSchema{
		Name: collection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "document", Type: "string"},
		},
	}
	if _, err := client.Collections().Create(ctx, schema); err != nil {
		// Collection already existing is the common case on every process
		// restart; Typesense has no idempotent create, so this is logged
		// and ignored rather than treated as fatal.
		slog.DebugContext(ctx, "typesense collection create (may already exist)", "collection", collection, "error", err)
	}

	return &typesenseIndex{client: client, collection: collection}, nil
}

// Rank upserts every candidate's document view, then runs a single
// full-text search and returns hits ordered by Typesense's own ranking.
// Any error (including a transient Typesense outage) falls back to the
// in-process BM25 ranker so retrieval degrades gracefully rather than
// failing the run.
func (idx *typesenseIndex) Rank(query string, candidates []candidateDoc) []scoredID {
	ctx := context.Background()
	documents := idx.client.Collection(idx.collection).Documents()

	for _, c := range candidates {
		if _, err := documents.Upsert(ctx, typesenseDocument{ID: c.ID, Document: c.Document}); err != nil {
			slog.WarnContext(ctx, "typesense: upserting memory document failed, falling back to BM25", "memory_id", c.ID, "error", err)
			return newBM25Index().Rank(query, candidates)
		}
	}

	result, err := documents.Search(ctx, &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("document"),
		PerPage: pointer.Int(len(candidates)),
	})
	if err != nil || result.Hits == nil {
		slog.WarnContext(ctx, "typesense: search failed, falling back to BM25", "error", err)
		return newBM25Index().Rank(query, candidates)
	}

	out := make([]scoredID, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		id, _ := (*hit.Document)["id"].(string)
		if id == "" {
			continue
		}
		score := 0.0
		if hit.TextMatch != nil {
			score = float64(*hit.TextMatch)
		}
		out = append(out, scoredID{ID: id, Score: score})
	}
	return out
}
