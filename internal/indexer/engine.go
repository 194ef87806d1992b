package indexer

import (
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/record"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/metrics"
)

// Engine owns a record store and the index built from it. Both are read-only
// once NewEngine returns; rebuilding means constructing a new Engine.
type Engine struct {
	store  *record.Store
	index  *index.Index
	logger *slog.Logger
}

// NewEngine loads lines into a store and builds its index. m may be nil.
func NewEngine(lines []string, m *metrics.Metrics) *Engine {
	logger := slog.Default().With("component", "indexer")
	store := record.NewStore(lines)

	start := time.Now()
	idx := index.Build(store)
	elapsed := time.Since(start)

	if m != nil {
		m.IndexBuildDuration.Observe(elapsed.Seconds())
		m.IndexTerms.Set(float64(idx.Len()))
	}
	logger.Info("index built",
		"records", store.Len(),
		"terms", idx.Len(),
		"postings", idx.PostingsCount(),
		"fingerprint", store.Fingerprint(),
		"duration_ms", elapsed.Milliseconds(),
	)
	return &Engine{
		store:  store,
		index:  idx,
		logger: logger,
	}
}

func (e *Engine) Store() *record.Store {
	return e.store
}

func (e *Engine) Index() *index.Index {
	return e.index
}

// Search returns the records listed under term, in position order.
func (e *Engine) Search(term string) []record.Record {
	postings, ok := e.index.Lookup(term)
	if !ok {
		return nil
	}
	out := make([]record.Record, 0, len(postings))
	for _, pos := range postings {
		out = append(out, e.store.At(pos))
	}
	e.logger.Debug("term lookup", "term", term, "matches", len(out))
	return out
}
