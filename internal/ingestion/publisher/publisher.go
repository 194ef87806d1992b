// Package publisher writes a record set to the shared stores that the
// postgres and redis record sources read from.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/resilience"
)

// Sink replaces the whole record set held by one store.
type Sink interface {
	Kind() string
	Replace(ctx context.Context, lines []string) error
}

type lineReplacer interface {
	ReplaceLines(ctx context.Context, lines []string) error
}

type listReplacer interface {
	ReplaceList(ctx context.Context, key string, values []string) error
}

// PostgresSink fills the records table read by the default postgres query.
type PostgresSink struct {
	Client lineReplacer
}

func (s *PostgresSink) Kind() string { return config.SourcePostgres }

func (s *PostgresSink) Replace(ctx context.Context, lines []string) error {
	return s.Client.ReplaceLines(ctx, lines)
}

type RedisSink struct {
	Client listReplacer
	Key    string
}

func (s *RedisSink) Kind() string { return config.SourceRedis }

func (s *RedisSink) Replace(ctx context.Context, lines []string) error {
	return s.Client.ReplaceList(ctx, s.Key, lines)
}

type Publisher struct {
	sinks  []Sink
	retry  resilience.RetryConfig
	logger *slog.Logger
}

func New(sinks ...Sink) *Publisher {
	return &Publisher{
		sinks:  sinks,
		logger: slog.Default().With("component", "publisher"),
	}
}

// Publish validates lines and writes them to every sink in order. It stops at
// the first sink that keeps failing after retries.
func (p *Publisher) Publish(ctx context.Context, lines []string) error {
	if len(p.sinks) == 0 {
		return apperrors.New(apperrors.ErrInvalidInput, 400, "no record store selected")
	}
	if err := validator.ValidateLines(lines); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidInput, 400, "invalid records: %v", err)
	}
	for _, sink := range p.sinks {
		err := resilience.Retry(ctx, "publish-"+sink.Kind(), p.retry, func(ctx context.Context) error {
			return sink.Replace(ctx, lines)
		})
		if err != nil {
			return fmt.Errorf("publishing records to %s: %w", sink.Kind(), err)
		}
		p.logger.Info("records published", "sink", sink.Kind(), "count", len(lines))
	}
	return nil
}
