package ingestion

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/config"
)

type lineQuerier interface {
	QueryLines(ctx context.Context, query string) ([]string, error)
}

type listReader interface {
	LRange(ctx context.Context, key string) ([]string, error)
}

// PostgresSource takes the first column of every row returned by Query.
// Query must order its rows; record positions follow row order.
type PostgresSource struct {
	Client lineQuerier
	Query  string
}

func (s *PostgresSource) Kind() string { return config.SourcePostgres }

func (s *PostgresSource) Load(ctx context.Context) ([]string, error) {
	lines, err := s.Client.QueryLines(ctx, s.Query)
	if err != nil {
		return nil, fmt.Errorf("loading records from postgres: %w", err)
	}
	return lines, nil
}

// RedisSource reads a Redis list, head first.
type RedisSource struct {
	Client listReader
	Key    string
}

func (s *RedisSource) Kind() string { return config.SourceRedis }

func (s *RedisSource) Load(ctx context.Context) ([]string, error) {
	lines, err := s.Client.LRange(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("loading records from redis list %s: %w", s.Key, err)
	}
	return lines, nil
}
