package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	dataPath := flag.String("data", "", "path to a line-delimited records file (overrides source config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataPath != "" {
		cfg.UseDataFile(*dataPath)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("search service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

// service bundles the collaborators behind the HTTP routes.
type service struct {
	handler        *handler.Handler
	analytics      *analytics.Handler
	checker        *health.Checker
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	limiter        *middleware.Limiter
	requestTimeout time.Duration
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Source.Kind == config.SourceConsole {
		return errors.New("the search service needs a file, postgres or redis record source")
	}
	slog.Info("starting search service", "port", cfg.Server.Port, "source", cfg.Source.Kind)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	src, closeSource, err := ingestion.Open(ctx, cfg, nil, nil)
	if err != nil {
		return fmt.Errorf("opening record source: %w", err)
	}
	lines, err := ingestion.Load(ctx, src, cfg.Source.Timeout, m)
	closeSource()
	if err != nil {
		return err
	}
	engine := indexer.NewEngine(lines, m)

	checker := health.NewChecker()
	var backend cache.Backend
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, falling back to local cache", "error", err)
		} else {
			defer redisClient.Close()
			backend = redisClient
			checker.Register("redis", health.PingCheck(redisClient, health.StatusDegraded))
			slog.Info("redis search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}
	if backend == nil && cfg.Search.LocalCacheSize > 0 {
		backend = cache.NewLocalBackend(cfg.Search.LocalCacheSize, cfg.Redis.CacheTTL)
		slog.Info("local search cache enabled", "size", cfg.Search.LocalCacheSize, "ttl", cfg.Redis.CacheTTL)
	}
	var queryCache *cache.QueryCache
	if backend != nil {
		queryCache = cache.New(backend, cfg.Redis.CacheTTL, engine.Store().Fingerprint(), m)
	}

	var publisher analytics.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer
		slog.Info("analytics publishing enabled", "topic", cfg.Kafka.AnalyticsTopic)
	}
	aggregator := analytics.NewAggregator()
	collector := analytics.NewCollector(aggregator, publisher, cfg.Kafka.BufferSize)
	collector.Start(ctx)
	defer collector.Close()

	svc := &service{
		handler:        handler.New(executor.New(engine, m), engine.Store(), queryCache, collector, cfg.Search.MaxQueryLength),
		analytics:      analytics.NewHandler(aggregator),
		checker:        checker,
		metrics:        m,
		gatherer:       reg,
		requestTimeout: cfg.Server.WriteTimeout,
	}
	if cfg.Server.RateLimit > 0 {
		svc.limiter = middleware.NewLimiter(cfg.Server.RateLimit, time.Minute)
		go pruneLimiter(ctx, svc.limiter)
	}
	checker.Register("index", health.IndexCheck(func() (int, int) {
		return engine.Store().Len(), engine.Index().Len()
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      svc.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

func (s *service) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", s.handler.Search)
	mux.HandleFunc("GET /api/v1/records", s.handler.Records)
	mux.HandleFunc("GET /api/v1/cache/stats", s.handler.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", s.handler.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", s.analytics.Stats)
	mux.HandleFunc("GET /health/live", s.checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", s.checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler(s.gatherer))

	var chain http.Handler = mux
	if s.requestTimeout > 0 {
		chain = middleware.Timeout(s.requestTimeout)(chain)
	}
	if s.limiter != nil {
		chain = middleware.RateLimit(s.limiter)(chain)
	}
	chain = middleware.Metrics(s.metrics)(chain)
	chain = middleware.RequestID(chain)
	return chain
}

func pruneLimiter(ctx context.Context, l *middleware.Limiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Prune(); n > 0 {
				slog.Debug("rate limiter pruned", "clients", n)
			}
		}
	}
}
