package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/retailops/asset-helpdesk/pkg/metrics"
	"github.com/retailops/asset-helpdesk/pkg/redis"
)

const answerKeyPrefix = "answer:"

// AnswerCache caches synthesized answers in Redis, keyed by the normalized
// question plus filters. Cache failures are never surfaced to callers: a
// broken cache degrades to computing every answer.
type AnswerCache struct {
	client  *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAnswerCache creates an answer cache with the given TTL.
func NewAnswerCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *AnswerCache {
	return &AnswerCache{
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "answer-cache"),
	}
}

// Key derives the cache key for a query. Questions are lowercased and
// whitespace-trimmed so trivially restated questions share an entry.
func (c *AnswerCache) Key(question, assetCategory, filename string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", normalized, assetCategory, filename)))
	return answerKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached response for the key, or ok=false on a miss or any
// cache error.
func (c *AnswerCache) Get(ctx context.Context, key string) (QueryResponse, bool) {
	raw, err := c.client.Get(ctx, key)
	if err != nil {
		if !redis.IsNilError(err) {
			c.logger.Warn("answer cache read failed", "error", err)
		}
		c.metrics.CacheMissesTotal.Inc()
		return QueryResponse{}, false
	}
	var resp QueryResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		c.logger.Warn("answer cache entry corrupt, ignoring", "key", key, "error", err)
		c.metrics.CacheMissesTotal.Inc()
		return QueryResponse{}, false
	}
	c.metrics.CacheHitsTotal.Inc()
	return resp, true
}

// Set stores a response under the key. Errors are logged, not returned.
func (c *AnswerCache) Set(ctx context.Context, key string, resp QueryResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("answer cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("answer cache write failed", "key", key, "error", err)
	}
}

// Do runs fn once per key across concurrent callers, so a stampede of
// identical questions costs one embedding and one synthesis.
func (c *AnswerCache) Do(key string, fn func() (QueryResponse, error)) (QueryResponse, error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return QueryResponse{}, err
	}
	return v.(QueryResponse), nil
}

// Invalidate drops every cached answer. Called after ingestion changes the
// index, since any cached answer may now be stale.
func (c *AnswerCache) Invalidate(ctx context.Context) {
	deleted, err := c.client.FlushByPattern(ctx, answerKeyPrefix+"*")
	if err != nil {
		c.logger.Warn("answer cache invalidation failed", "error", err)
		return
	}
	c.logger.Info("answer cache invalidated", "keys_deleted", deleted)
}
