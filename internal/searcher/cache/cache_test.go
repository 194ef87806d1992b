package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/record"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/metrics"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (b *memoryBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (b *memoryBackend) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = string(value.([]byte))
	b.ttls[key] = ttl
	return nil
}

func (b *memoryBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range b.data {
		if strings.HasPrefix(k, prefix) {
			delete(b.data, k)
			n++
		}
	}
	return n, nil
}

var people = []string{
	"Alice Smith alice@x.com",
	"Bob Jones bob@x.com",
	"Carol White carol@y.com",
}

func setup(t *testing.T) (*QueryCache, *memoryBackend, *executor.Executor, *metrics.Metrics) {
	t.Helper()
	engine := indexer.NewEngine(people, nil)
	m := metrics.New(prometheus.NewRegistry())
	backend := newMemoryBackend()
	return New(backend, time.Minute, engine.Store().Fingerprint(), m), backend, executor.New(engine, nil), m
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c, backend, exec, m := setup(t)
	ctx := context.Background()
	plan := parser.Parse("alice", parser.StrategyAny)

	var calls int
	compute := func() (*executor.SearchResult, error) {
		calls++
		return exec.Execute(ctx, plan)
	}

	first, hit, err := c.GetOrCompute(ctx, plan, compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	second, hit, err := c.GetOrCompute(ctx, plan, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(record.Record{})); diff != "" {
		t.Errorf("cached result differs (-computed +cached):\n%s", diff)
	}
	if second.Records[0].Lower() != "alice smith alice@x.com" {
		t.Errorf("decoded record lost its lowered text: %q", second.Records[0].Lower())
	}
	for _, ttl := range backend.ttls {
		if ttl != time.Minute {
			t.Errorf("ttl = %v, want 1m", ttl)
		}
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats = %d hits %d misses, want 1/1", hits, misses)
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 1 {
		t.Errorf("cache_hits_total = %v", got)
	}
	if got := testutil.ToFloat64(m.CacheMissesTotal); got != 1 {
		t.Errorf("cache_misses_total = %v", got)
	}
}

func TestHitEchoesCallerQuery(t *testing.T) {
	c, _, exec, _ := setup(t)
	ctx := context.Background()

	for i, q := range []string{"alice", "ALICE", "Alice"} {
		plan := parser.Parse(q, parser.StrategyAny)
		res, hit, err := c.GetOrCompute(ctx, plan, func() (*executor.SearchResult, error) {
			return exec.Execute(ctx, plan)
		})
		if err != nil {
			t.Fatal(err)
		}
		if hit != (i > 0) {
			t.Errorf("%q: hit = %v", q, hit)
		}
		if res.Query != q {
			t.Errorf("%q: result query = %q", q, res.Query)
		}
		if diff := cmp.Diff([]int{0}, positionsOf(res)); diff != "" {
			t.Errorf("%q: records mismatch (-want +got):\n%s", q, diff)
		}
	}
}

func TestWithQueryLeavesSharedResultAlone(t *testing.T) {
	shared := &executor.SearchResult{Query: "alice", Strategy: parser.StrategyAny}
	got := withQuery(shared, "ALICE")
	if got.Query != "ALICE" {
		t.Errorf("Query = %q, want ALICE", got.Query)
	}
	if shared.Query != "alice" {
		t.Errorf("shared result mutated to %q", shared.Query)
	}
	if withQuery(shared, "alice") != shared {
		t.Error("same query should return the shared result")
	}
}

func positionsOf(res *executor.SearchResult) []int {
	out := make([]int, 0, len(res.Records))
	for _, r := range res.Records {
		out = append(out, r.Position)
	}
	return out
}

func TestKeysSeparateStrategyQueryAndStore(t *testing.T) {
	c, _, _, _ := setup(t)
	base := c.buildKey(parser.Parse("Alice", parser.StrategyAny))

	if got := c.buildKey(parser.Parse("alice", parser.StrategyAny)); got != base {
		t.Error("queries differing only in case should share a key")
	}
	if got := c.buildKey(parser.Parse("alice", parser.StrategyAll)); got == base {
		t.Error("strategy must be part of the key")
	}
	if got := c.buildKey(parser.Parse("alice  ", parser.StrategyAny)); got == base {
		t.Error("trailing spaces change ALL semantics and must change the key")
	}
	other := New(newMemoryBackend(), time.Minute, "different-store", nil)
	if got := other.buildKey(parser.Parse("alice", parser.StrategyAny)); got == base {
		t.Error("store fingerprint must be part of the key")
	}
	if !strings.HasPrefix(base, keyPrefix) {
		t.Errorf("key %q missing prefix", base)
	}
}

func TestGetOrComputePropagatesError(t *testing.T) {
	c, backend, _, _ := setup(t)
	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), parser.Parse("bob", parser.StrategyAll),
		func() (*executor.SearchResult, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(backend.data) != 0 {
		t.Error("failed computations must not be cached")
	}
}

func TestGetOrComputeCollapsesConcurrentMisses(t *testing.T) {
	c, _, exec, _ := setup(t)
	ctx := context.Background()
	plan := parser.Parse("x.com", parser.StrategyAny)

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		<-release
		return exec.Execute(ctx, plan)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := c.GetOrCompute(ctx, plan, compute); err != nil {
				t.Error(err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// Late arrivals read the cache, so at most a straggler recomputes.
	if got := calls.Load(); got < 1 || got > 2 {
		t.Errorf("compute calls = %d", got)
	}
}

func TestInvalidate(t *testing.T) {
	c, backend, exec, _ := setup(t)
	ctx := context.Background()
	plan := parser.Parse("carol", parser.StrategyNone)
	if _, _, err := c.GetOrCompute(ctx, plan, func() (*executor.SearchResult, error) {
		return exec.Execute(ctx, plan)
	}); err != nil {
		t.Fatal(err)
	}
	backend.data["unrelated"] = "keep"

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := c.Get(ctx, plan); ok {
		t.Error("entry survived invalidation")
	}
	if backend.data["unrelated"] != "keep" {
		t.Error("invalidation removed a key outside the cache prefix")
	}
}

func TestLocalBackend(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBackend(2, time.Minute)

	if _, err := b.Get(ctx, "search:a"); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get on empty = %v, want ErrMiss", err)
	}
	b.Set(ctx, "search:a", []byte("1"), 0)
	b.Set(ctx, "search:b", "2", 0)
	b.Set(ctx, "search:c", []byte("3"), 0)
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2 after eviction", b.Len())
	}
	if _, err := b.Get(ctx, "search:a"); !errors.Is(err, ErrMiss) {
		t.Error("oldest entry should have been evicted")
	}
	if err := b.Set(ctx, "search:d", 42, 0); err == nil {
		t.Error("non-string value accepted")
	}

	b.Set(ctx, "other", "x", 0)
	n, _ := b.FlushByPattern(ctx, keyPrefix+"*")
	if n != 1 {
		t.Errorf("flushed %d, want 1", n)
	}
	if v, err := b.Get(ctx, "other"); err != nil || v != "x" {
		t.Errorf("unprefixed key = %q, %v", v, err)
	}
}

func TestQueryCacheOverLocalBackend(t *testing.T) {
	engine := indexer.NewEngine(people, nil)
	exec := executor.New(engine, nil)
	c := New(NewLocalBackend(16, time.Minute), time.Minute, engine.Store().Fingerprint(), nil)
	ctx := context.Background()
	plan := parser.Parse("bob", parser.StrategyAll)
	compute := func() (*executor.SearchResult, error) { return exec.Execute(ctx, plan) }

	if _, hit, _ := c.GetOrCompute(ctx, plan, compute); hit {
		t.Fatal("first lookup should miss")
	}
	res, hit, err := c.GetOrCompute(ctx, plan, compute)
	if err != nil || !hit {
		t.Fatalf("second lookup hit=%v err=%v", hit, err)
	}
	if res.Total != 1 || res.Records[0].Position != 1 {
		t.Errorf("cached result = %+v", res)
	}
}
