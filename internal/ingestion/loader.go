package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/resilience"
)

// Open builds the Source selected by cfg.Source. in and out are only used by
// the console source. The returned close function releases any connection
// the source opened and is never nil.
func Open(ctx context.Context, cfg *config.Config, in LineReader, out io.Writer) (Source, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Source.Kind {
	case config.SourceFile:
		return &FileSource{Path: cfg.Source.Path}, noop, nil
	case config.SourceConsole:
		if in == nil || out == nil {
			return nil, noop, fmt.Errorf("source kind %q needs interactive input", config.SourceConsole)
		}
		return &ConsoleSource{In: in, Out: out}, noop, nil
	case config.SourcePostgres:
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, noop, err
		}
		return &PostgresSource{Client: client, Query: cfg.Source.Query}, client.Close, nil
	case config.SourceRedis:
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return &RedisSource{Client: client, Key: cfg.Source.RedisKey}, client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// Load reads every line from src. Non-interactive sources are bounded by
// timeout. m may be nil.
func Load(ctx context.Context, src Source, timeout time.Duration, m *metrics.Metrics) ([]string, error) {
	logger := slog.Default().With("component", "ingestion", "source", src.Kind())
	if src.Kind() == config.SourceConsole {
		timeout = 0
	}

	start := time.Now()
	var lines []string
	err := resilience.WithTimeout(ctx, timeout, "load-records", func(ctx context.Context) error {
		var err error
		lines, err = src.Load(ctx)
		return err
	})
	if err != nil {
		logger.Error("loading records failed", "error", err)
		return nil, err
	}
	if m != nil {
		m.RecordsLoadedTotal.WithLabelValues(src.Kind()).Add(float64(len(lines)))
	}
	logger.Info("records loaded", "count", len(lines), "duration_ms", time.Since(start).Milliseconds())
	return lines, nil
}
