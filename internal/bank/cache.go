package bank

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRetrievalCacheTTL bounds how long a ranking for one (query,
// corpus) pair is reused before Retrieve re-ranks against Index directly.
const DefaultRetrievalCacheTTL = 5 * time.Minute

// cachedIndex decorates an Index with a Redis-backed score cache, so
// repeated retrievals for the same query against an unchanged corpus skip
// re-ranking. Falls through to the wrapped Index on any Redis error.
type cachedIndex struct {
	rdb   *redis.Client
	ttl   time.Duration
	inner Index
}

// NewCachedIndex wraps inner with a Redis-backed ranking cache.
func NewCachedIndex(rdb *redis.Client, ttl time.Duration, inner Index) Index {
	if ttl <= 0 {
		ttl = DefaultRetrievalCacheTTL
	}
	return &cachedIndex{rdb: rdb, ttl: ttl, inner: inner}
}

func (c *cachedIndex) Rank(query string, candidates []candidateDoc) []scoredID {
	ctx := context.Background()
	key := rankCacheKey(query, candidates)

	if cached, ok := c.lookup(ctx, key); ok {
		return cached
	}

	result := c.inner.Rank(query, candidates)

	if data, err := json.Marshal(result); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.DebugContext(ctx, "bank: retrieval cache write failed", "error", err)
		}
	}
	return result
}

func (c *cachedIndex) lookup(ctx context.Context, key string) ([]scoredID, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.DebugContext(ctx, "bank: retrieval cache read failed", "error", err)
		}
		return nil, false
	}
	var out []scoredID
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

// rankCacheKey identifies a (query, corpus-membership) pair: the corpus's
// candidate ids are part of the key so a newly stored memory item
// invalidates the cache for every query by changing the key, without
// requiring an explicit invalidation path.
func rankCacheKey(query string, candidates []candidateDoc) string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	sort.Strings(ids)

	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(ids, ",")))
	return "bank:rank:" + hex.EncodeToString(h.Sum(nil))
}
