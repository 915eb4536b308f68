// Package bank implements the ReasoningBank (C6): retrieve, inject,
// judge, extract, and store procedural memory items across runs of the
// RLM driver, plus pack import/export and an optional meta-analysis tier.
package bank

import (
	"time"

	"github.com/redis/go-redis/v9"

	"graphrlm.dev/core/common/llm"
	"graphrlm.dev/core/internal/store"
)

// DefaultRetrieveK is the default number of memory items surfaced per
// retrieval, per spec §4.6 ("default k = 3").
const DefaultRetrieveK = 3

// Bank bundles the persistent store and judge/extract sub-LLM client one
// run's memory lifecycle needs. One Bank instance is shared safely across
// concurrent runs — all of its state lives in the store and the optional
// Typesense index, per spec §5's "memory store is shared" policy.
type Bank struct {
	stores *store.Stores
	judge  llm.Client
	index  Index
}

// Index is the lexical-retrieval backend over the memory corpus. Typesense
// is the preferred implementation; bm25Index is the always-available
// in-process fallback, per spec §4.6.
type Index interface {
	// Rank returns memory ids ordered by descending lexical score against
	// query, restricted to the given candidate set (already scope- and
	// level-filtered).
	Rank(query string, candidates []candidateDoc) []scoredID
}

// New builds a Bank. index may be nil, in which case retrieval falls back
// to the in-process BM25 ranker over the same document view.
func New(stores *store.Stores, judge llm.Client, index Index) *Bank {
	if index == nil {
		index = newBM25Index()
	}
	return &Bank{stores: stores, judge: judge, index: index}
}

// WithRetrievalCache wraps the Bank's Index with a Redis-backed ranking
// cache, so repeated retrievals against an unchanged corpus skip
// re-ranking. Optional: a Bank never requires Redis to function.
func (b *Bank) WithRetrievalCache(rdb *redis.Client, ttl time.Duration) *Bank {
	b.index = NewCachedIndex(rdb, ttl, b.index)
	return b
}
