// Command seed loads a line-delimited records file into PostgreSQL and/or a
// Redis list so the search tools can use the postgres and redis sources.
//
// Usage:
//
//	go run ./cmd/seed -data configs/people.txt -postgres -redis-key people
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	dataPath   string
	postgres   bool
	redisKey   string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to config file")
	fs.StringVar(&opts.dataPath, "data", "", "line-delimited records file to publish")
	fs.BoolVar(&opts.postgres, "postgres", false, "replace the postgres records table")
	fs.StringVar(&opts.redisKey, "redis-key", "", "replace this redis list")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.dataPath == "" {
		return nil, errors.New("-data is required")
	}
	if !opts.postgres && opts.redisKey == "" {
		return nil, errors.New("pick at least one of -postgres or -redis-key")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, stderr)

	lines, err := ingestion.Load(ctx, &ingestion.FileSource{Path: opts.dataPath}, cfg.Source.Timeout, nil)
	if err != nil {
		return err
	}

	var sinks []publisher.Sink
	if opts.postgres {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
		sinks = append(sinks, &publisher.PostgresSink{Client: db})
	}
	if opts.redisKey != "" {
		rdb, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sinks = append(sinks, &publisher.RedisSink{Client: rdb, Key: opts.redisKey})
	}

	if err := publisher.New(sinks...).Publish(ctx, lines); err != nil {
		return err
	}
	slog.Info("seed complete", "records", len(lines), "sinks", len(sinks))
	return nil
}
