package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/handler"
)

func TestRunLoadTestAgainstHandler(t *testing.T) {
	engine := indexer.NewEngine([]string{"Erick Harrington harrington@gmail.com", "Katie Jacobs"}, nil)
	h := handler.New(executor.New(engine, nil), engine.Store(), nil, nil, 256)
	srv := httptest.NewServer(http.HandlerFunc(h.Search))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	stats := runLoadTest(ctx, Config{
		BaseURL:     srv.URL,
		Concurrency: 2,
		Queries:     []string{"erick", "katie"},
		Strategies:  []string{"ANY", "NONE", "bogus"},
	})

	if stats.totalRequests.Load() == 0 {
		t.Fatal("no requests recorded")
	}
	var out bytes.Buffer
	if err := printReport(&out, stats, 100*time.Millisecond); err != nil {
		t.Fatalf("printReport: %v", err)
	}
	report := out.String()
	for _, want := range []string{"Total Requests:", "=== Latency ANY", "200:"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestPrintReportWithoutRequests(t *testing.T) {
	var out bytes.Buffer
	if err := printReport(&out, NewStats(), time.Second); err == nil {
		t.Fatal("expected error when nothing completed")
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4}
	if got := percentile(sorted, 50); got != 2 {
		t.Errorf("p50 = %v, want 2", got)
	}
	if got := percentile(sorted, 100); got != 4 {
		t.Errorf("p100 = %v, want 4", got)
	}
}
