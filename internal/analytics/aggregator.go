package analytics

import (
	"sort"
	"sync"
	"time"
)

type AggregatedStats struct {
	TotalSearches     int64            `json:"total_searches"`
	Rejected          int64            `json:"rejected"`
	CacheHits         int64            `json:"cache_hits"`
	ZeroResultCount   int64            `json:"zero_result_count"`
	ByStrategy        map[string]int64 `json:"by_strategy"`
	AvgLatencyMs      float64          `json:"avg_latency_ms"`
	P50LatencyMs      int64            `json:"p50_latency_ms"`
	P95LatencyMs      int64            `json:"p95_latency_ms"`
	P99LatencyMs      int64            `json:"p99_latency_ms"`
	TopQueries        []QueryCount     `json:"top_queries"`
	ZeroResultQueries []QueryCount     `json:"zero_result_queries"`
	QueriesPerMinute  float64          `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// maxLatencySamples bounds memory; older samples are overwritten.
const maxLatencySamples = 10000

// Aggregator keeps in-process search statistics for the analytics endpoint.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     int64
	rejected          int64
	cacheHits         int64
	zeroResults       int64
	byStrategy        map[string]int64
	latencies         []int64
	next              int
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		byStrategy:        make(map[string]int64),
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
	}
}

func (a *Aggregator) Record(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if event.Type == EventRejected {
		a.rejected++
		return
	}
	a.totalSearches++
	a.byStrategy[event.Strategy]++
	a.queryCounts[event.Query]++
	if event.CacheHit {
		a.cacheHits++
	}
	if event.Results == 0 {
		a.zeroResults++
		a.zeroResultQueries[event.Query]++
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
}

// DefaultTopQueries is how many entries Stats reports per query ranking.
const DefaultTopQueries = 10

func (a *Aggregator) Stats() AggregatedStats {
	return a.Snapshot(DefaultTopQueries)
}

// Snapshot is Stats with the query rankings cut to top entries.
func (a *Aggregator) Snapshot(top int) AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches,
		Rejected:        a.rejected,
		CacheHits:       a.cacheHits,
		ZeroResultCount: a.zeroResults,
		ByStrategy:      make(map[string]int64, len(a.byStrategy)),
	}
	for k, v := range a.byStrategy {
		stats.ByStrategy[k] = v
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, top)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, top)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then query, so ties are stable across calls.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
