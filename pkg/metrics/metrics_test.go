package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersOnCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SearchQueriesTotal.WithLabelValues("ANY", "hit").Inc()
	m.SearchQueriesTotal.WithLabelValues("ANY", "hit").Inc()
	m.IndexTerms.Set(7)

	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("ANY", "hit")); got != 2 {
		t.Errorf("search_queries_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.IndexTerms); got != 7 {
		t.Errorf("index_terms = %v, want 7", got)
	}

	// A second registry must accept a fresh set of collectors.
	New(prometheus.NewRegistry())
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CacheHitsTotal.Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "cache_hits_total 1") {
		t.Errorf("scrape output missing cache_hits_total:\n%s", body)
	}
}
