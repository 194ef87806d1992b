// Package cache memoises search results in Redis. Keys are scoped to the
// record store's fingerprint so a reload with different data never serves
// stale results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/tracing"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// Backend is the subset of *pkgredis.Client the cache needs. LocalBackend
// implements it in process.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	backend     Backend
	ttl         time.Duration
	fingerprint string
	metrics     *metrics.Metrics
	group       singleflight.Group
	logger      *slog.Logger
	hits        atomic.Int64
	misses      atomic.Int64
}

// New returns a cache for results computed over the store identified by
// fingerprint. m may be nil.
func New(backend Backend, ttl time.Duration, fingerprint string, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		backend:     backend,
		ttl:         ttl,
		fingerprint: fingerprint,
		metrics:     m,
		logger:      slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, plan *parser.QueryPlan) (*executor.SearchResult, bool) {
	key := c.buildKey(plan)
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) && !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	// The key ignores case, so the entry may hold another caller's spelling.
	result.Query = plan.RawQuery
	c.hit()
	c.logger.Debug("cache hit", "query", plan.RawQuery, "strategy", plan.Strategy, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, plan *parser.QueryPlan, result *executor.SearchResult) {
	key := c.buildKey(plan)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for plan or runs computeFn once per
// key, even under concurrent callers. The bool reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	plan *parser.QueryPlan,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	_, span := tracing.StartChildSpan(ctx, "cache_lookup")
	result, ok := c.Get(ctx, plan)
	span.SetAttr("hit", ok)
	span.End()
	if ok {
		return result, true, nil
	}
	key := c.buildKey(plan)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, plan, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	// Callers sharing the flight may differ in case; records are read-only.
	result = withQuery(val.(*executor.SearchResult), plan.RawQuery)
	return result, false, nil
}

func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.backend.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func withQuery(r *executor.SearchResult, query string) *executor.SearchResult {
	if r.Query == query {
		return r
	}
	out := *r
	out.Query = query
	return &out
}

// buildKey hashes the lowered query because ALL matches on it verbatim;
// two queries differing only in spacing are different searches.
func (c *QueryCache) buildKey(plan *parser.QueryPlan) string {
	raw := fmt.Sprintf("%s|%s|%s", c.fingerprint, plan.Strategy, plan.Lowered)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
