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

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/console"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		if errors.Is(err, apperrors.ErrMissingInputFile) {
			fmt.Fprintf(os.Stderr, "input file not found: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "recordsearch: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("recordsearch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dataPath := fs.String("data", "", "path to a line-delimited records file; omit to type records in")
	configPath := fs.String("config", "", "path to config file")
	logLevel := fs.String("log-level", "warn", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *dataPath != "" {
		cfg.UseDataFile(*dataPath)
	}
	logger.Setup(*logLevel, cfg.Logging.Format, stderr)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, reg)
		defer shutdown(context.Background())
	}

	in := console.NewLineReader(stdin)
	src, closeSource, err := ingestion.Open(ctx, cfg, in, stdout)
	if err != nil {
		return fmt.Errorf("opening record source: %w", err)
	}
	defer closeSource()

	lines, err := ingestion.Load(ctx, src, cfg.Source.Timeout, m)
	if err != nil {
		return err
	}

	engine := indexer.NewEngine(lines, m)
	menu := console.NewMenu(in, stdout, executor.New(engine, m), engine.Store())
	if err := menu.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Debug("menu closed")
	return nil
}
