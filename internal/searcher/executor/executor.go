// Package executor evaluates a QueryPlan against an indexer.Engine.
//
// Candidate gathering is shared by every strategy: for each search key that is
// an exact index key, the records listed under it are appended to a candidate
// list that may hold duplicates. The strategies then combine candidates:
//
//   - ANY keeps each candidate once, in the order it was first gathered:
//     keys in query order, each key's records by position.
//   - ALL keeps candidates whose lowercase text contains the whole lowercased
//     query as one substring. It is a phrase check, not a per-key intersection.
//   - NONE keeps every record that is not a candidate.
//
// NONE emits two sections when there are candidates: the complement, and
// then the full record list. Without candidates only the full list is
// emitted. SearchResult.Sections carries every section; Records holds only
// the complement.
//
// A record is identified by its position, so identical lines are distinct
// records and each is emitted. This differs from the console tool this was
// modelled on, which de-duplicated by text and printed identical lines once.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/record"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/tracing"
)

type SearchResult struct {
	Query    string            `json:"query"`
	Strategy parser.Strategy   `json:"strategy"`
	Total    int               `json:"total"`
	Records  []record.Record   `json:"records"`
	Sections [][]record.Record `json:"sections"`
}

type evaluateFunc func(e *Executor, plan *parser.QueryPlan, candidates []record.Record) *SearchResult

var evaluators = map[parser.Strategy]evaluateFunc{
	parser.StrategyAll:  evaluateAll,
	parser.StrategyAny:  evaluateAny,
	parser.StrategyNone: evaluateNone,
}

type Executor struct {
	engine  *indexer.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns an Executor over engine. m may be nil.
func New(engine *indexer.Engine, m *metrics.Metrics) *Executor {
	return &Executor{
		engine:  engine,
		metrics: m,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// Evaluate parses strategyToken and query and executes the plan.
func (e *Executor) Evaluate(ctx context.Context, query, strategyToken string) (*SearchResult, error) {
	strategy, err := parser.ParseStrategy(strategyToken)
	if err != nil {
		e.observe("invalid", "error", 0, 0)
		return nil, err
	}
	return e.Execute(ctx, parser.Parse(query, strategy))
}

func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("executing query %q: %w", plan.RawQuery, err)
	}
	evaluate, ok := evaluators[plan.Strategy]
	if !ok {
		e.observe("invalid", "error", 0, 0)
		return nil, fmt.Errorf("executing query %q: %w", plan.RawQuery, apperrors.ErrInvalidStrategy)
	}

	_, span := tracing.StartChildSpan(ctx, "execute")
	defer span.End()

	start := time.Now()
	candidates := e.gather(plan)
	result := evaluate(e, plan, candidates)
	result.Query = plan.RawQuery
	result.Strategy = plan.Strategy
	result.Total = len(result.Records)
	elapsed := time.Since(start)

	resultType := "hit"
	if result.Total == 0 {
		resultType = "zero_result"
	}
	e.observe(plan.Strategy.String(), resultType, result.Total, elapsed)
	span.SetAttr("keys", len(plan.Keys))
	span.SetAttr("candidates", len(candidates))
	span.SetAttr("results", result.Total)
	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"strategy", plan.Strategy,
		"keys", plan.Keys,
		"candidates", len(candidates),
		"results", result.Total,
	)
	return result, nil
}

// gather appends the records of every key that is an exact index key.
func (e *Executor) gather(plan *parser.QueryPlan) []record.Record {
	var candidates []record.Record
	for _, key := range plan.Keys {
		candidates = append(candidates, e.engine.Search(key)...)
	}
	return candidates
}

func evaluateAny(e *Executor, plan *parser.QueryPlan, candidates []record.Record) *SearchResult {
	matches := distinct(candidates)
	return &SearchResult{
		Records:  matches,
		Sections: [][]record.Record{matches},
	}
}

func evaluateAll(e *Executor, plan *parser.QueryPlan, candidates []record.Record) *SearchResult {
	phrase := make([]record.Record, 0, len(candidates))
	for _, r := range candidates {
		if strings.Contains(r.Lower(), plan.Lowered) {
			phrase = append(phrase, r)
		}
	}
	matches := distinct(phrase)
	return &SearchResult{
		Records:  matches,
		Sections: [][]record.Record{matches},
	}
}

func evaluateNone(e *Executor, plan *parser.QueryPlan, candidates []record.Record) *SearchResult {
	excluded := make(map[int]struct{}, len(candidates))
	for _, r := range candidates {
		excluded[r.Position] = struct{}{}
	}
	all := e.engine.Store().All()
	complement := make([]record.Record, 0, len(all))
	for _, r := range all {
		if _, ok := excluded[r.Position]; !ok {
			complement = append(complement, r)
		}
	}

	sections := make([][]record.Record, 0, 2)
	if len(candidates) > 0 {
		sections = append(sections, complement)
	}
	sections = append(sections, all)
	return &SearchResult{
		Records:  complement,
		Sections: sections,
	}
}

// distinct drops repeated positions, keeping first-seen order.
func distinct(records []record.Record) []record.Record {
	seen := make(map[int]struct{}, len(records))
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Position]; ok {
			continue
		}
		seen[r.Position] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (e *Executor) observe(strategy, resultType string, results int, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(strategy, resultType).Inc()
	if resultType == "error" {
		return
	}
	e.metrics.SearchLatency.WithLabelValues(strategy).Observe(elapsed.Seconds())
	e.metrics.SearchResultsCount.WithLabelValues(strategy).Observe(float64(results))
}
