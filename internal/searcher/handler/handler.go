// Package handler exposes the query evaluator over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/record"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/tracing"
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan) (*executor.SearchResult, error)
}

// Handler serves search and record listing. queryCache and collector are
// optional.
type Handler struct {
	executor       SearchExecutor
	store          *record.Store
	cache          *cache.QueryCache
	collector      *analytics.Collector
	maxQueryLength int
	logger         *slog.Logger
}

func New(exec SearchExecutor, store *record.Store, queryCache *cache.QueryCache, collector *analytics.Collector, maxQueryLength int) *Handler {
	return &Handler{
		executor:       exec,
		store:          store,
		cache:          queryCache,
		collector:      collector,
		maxQueryLength: maxQueryLength,
		logger:         slog.Default().With("component", "search-handler"),
	}
}

// Search serves GET /api/v1/search?q=...&strategy=ALL|ANY|NONE. An empty q is
// a valid query; an absent one is not.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	params := r.URL.Query()
	if !params.Has("q") {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	query := params.Get("q")
	if h.maxQueryLength > 0 && len(query) > h.maxQueryLength {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("query exceeds %d bytes", h.maxQueryLength))
		return
	}

	strategy, err := parser.ParseStrategy(params.Get("strategy"))
	if err != nil {
		h.track(ctx, analytics.SearchEvent{
			Type:     analytics.EventRejected,
			Query:    query,
			Strategy: params.Get("strategy"),
		})
		h.writeAppError(w, err)
		return
	}

	ctx, span := tracing.StartSpan(ctx, "search", middleware.GetRequestID(ctx))
	defer func() {
		span.End()
		span.Log(log)
	}()
	span.SetAttr("strategy", strategy.String())

	plan := parser.Parse(query, strategy)
	var result *executor.SearchResult
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, plan, func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, plan)
		})
	} else {
		result, err = h.executor.Execute(ctx, plan)
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "strategy", strategy, "error", err)
		h.writeAppError(w, err)
		return
	}

	latencyMs := time.Since(start).Milliseconds()
	log.Info("search completed",
		"query", query,
		"strategy", strategy,
		"total", result.Total,
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)

	eventType := analytics.EventSearch
	if result.Total == 0 {
		eventType = analytics.EventZeroResult
	}
	h.track(ctx, analytics.SearchEvent{
		Type:      eventType,
		Query:     query,
		Strategy:  strategy.String(),
		Keys:      plan.Keys,
		Results:   result.Total,
		LatencyMs: latencyMs,
		CacheHit:  cacheHit,
	})

	if h.cache != nil {
		w.Header().Set(CacheHeader, cacheStatus(cacheHit))
	}
	h.writeJSON(w, http.StatusOK, result)
}

// CacheHeader reports HIT or MISS on search responses when caching is on.
const CacheHeader = "X-Cache"

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// Records serves GET /api/v1/records.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	all := h.store.All()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(all),
		"records": all,
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) track(ctx context.Context, event analytics.SearchEvent) {
	if h.collector == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.RequestID = middleware.GetRequestID(ctx)
	h.collector.Track(event)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.writeError(w, apperrors.HTTPStatusCode(err), appErr.Message)
		return
	}
	h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
}
