// Command helpdesk runs the retail asset helpdesk: an HTTP service that
// ingests equipment documentation into a vector index and answers
// troubleshooting questions grounded on it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/retailops/asset-helpdesk/internal/catalog"
	"github.com/retailops/asset-helpdesk/internal/chunker"
	"github.com/retailops/asset-helpdesk/internal/document"
	"github.com/retailops/asset-helpdesk/internal/embedding"
	"github.com/retailops/asset-helpdesk/internal/extractor"
	"github.com/retailops/asset-helpdesk/internal/llm"
	"github.com/retailops/asset-helpdesk/internal/rag"
	"github.com/retailops/asset-helpdesk/internal/runlog"
	"github.com/retailops/asset-helpdesk/internal/vectorstore"
	"github.com/retailops/asset-helpdesk/pkg/config"
	"github.com/retailops/asset-helpdesk/pkg/health"
	"github.com/retailops/asset-helpdesk/pkg/kafka"
	"github.com/retailops/asset-helpdesk/pkg/logger"
	"github.com/retailops/asset-helpdesk/pkg/metrics"
	"github.com/retailops/asset-helpdesk/pkg/middleware"
	"github.com/retailops/asset-helpdesk/pkg/postgres"
	"github.com/retailops/asset-helpdesk/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("main")
	log.Info("starting asset helpdesk", "port", cfg.Server.Port, "docs_folder", cfg.Docs.Folder)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker()

	// Catalog is in-memory and always available, even when the document
	// pipeline is degraded.
	catalogSvc := catalog.NewService()
	catalogHandler := catalog.NewHandler(catalogSvc)

	ragService, cleanup := buildPipeline(ctx, cfg, m, checker, log)
	defer cleanup()
	ragHandler := rag.NewHandler(ragService)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", checker.ReadyHandler())
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	mux.HandleFunc("GET /api/v1/assets", catalogHandler.List)
	mux.HandleFunc("GET /api/v1/assets/stats", catalogHandler.Stats)
	mux.HandleFunc("GET /api/v1/assets/{id}", catalogHandler.Get)

	mux.HandleFunc("POST /api/v1/ingest", ragHandler.Ingest)
	mux.HandleFunc("GET /api/v1/ingest/status", ragHandler.IngestStatus)
	mux.HandleFunc("GET /api/v1/ingest/runs", ragHandler.IngestRuns)
	mux.HandleFunc("POST /api/v1/query", ragHandler.Query)
	mux.HandleFunc("POST /api/v1/search", ragHandler.Search)
	mux.HandleFunc("GET /api/v1/stats", ragHandler.Stats)
	mux.HandleFunc("DELETE /api/v1/collection", ragHandler.ResetCollection)
	mux.HandleFunc("POST /api/v1/summarize", ragHandler.Summarize)

	handler := middleware.Timeout(cfg.Server.WriteTimeout)(
		middleware.RequestID(
			middleware.Metrics(m)(mux),
		),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout + 5*time.Second,
	}

	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}
	if metricsShutdown != nil {
		if err := metricsShutdown(shutdownCtx); err != nil {
			log.Error("metrics server shutdown failed", "error", err)
		}
	}
	log.Info("shutdown complete")
	return nil
}

// buildPipeline assembles the document pipeline. Hard dependencies (vector
// store, embedder, synthesizer) missing means a nil service: the server still
// runs in degraded mode with catalog and health only. Optional backends
// (Redis, Kafka, Postgres) are disabled individually when unreachable.
func buildPipeline(
	ctx context.Context,
	cfg *config.Config,
	m *metrics.Metrics,
	checker *health.Checker,
	log *slog.Logger,
) (*rag.Service, func()) {
	noop := func() {}

	scanner, err := document.NewScanner(cfg.Docs.Folder)
	if err != nil {
		log.Error("docs folder unavailable, document pipeline disabled", "error", err)
		return nil, noop
	}

	ch, err := chunker.New(cfg.Docs.ChunkSize, cfg.Docs.ChunkOverlap)
	if err != nil {
		log.Error("invalid chunking config, document pipeline disabled", "error", err)
		return nil, noop
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		log.Error("embedding client unavailable, document pipeline disabled", "error", err)
		return nil, noop
	}
	synthesizer, err := llm.New(cfg.LLM)
	if err != nil {
		log.Error("llm client unavailable, document pipeline disabled", "error", err)
		return nil, noop
	}

	index := vectorstore.New(cfg.Qdrant)
	if err := index.EnsureCollection(ctx, embedder.Dimension()); err != nil {
		log.Error("vector store unavailable, document pipeline disabled", "error", err)
		return nil, noop
	}

	ledger := rag.NewLedger()
	if err := ledger.Reload(ctx, index); err != nil {
		log.Error("failed to load ingestion ledger, document pipeline disabled", "error", err)
		return nil, noop
	}

	checker.Register("qdrant", pingCheck(index.Ping))
	checker.Register("embedding", pingCheck(embedder.Ping))

	opts := rag.Options{
		TopK:       cfg.Docs.TopK,
		MaxResults: cfg.Docs.MaxResults,
	}
	var cleanups []func()

	if redisClient, err := redis.NewClient(cfg.Redis); err != nil {
		log.Warn("redis unavailable, answer cache disabled", "error", err)
	} else {
		opts.Cache = rag.NewAnswerCache(redisClient, cfg.Redis.CacheTTL, m)
		checker.Register("redis", pingCheck(redisClient.Ping))
		cleanups = append(cleanups, func() { redisClient.Close() })
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.AuditTopic)
		audit := rag.NewAuditCollector(producer, 1000)
		audit.Start(ctx)
		opts.Audit = audit
		cleanups = append(cleanups, func() {
			audit.Close()
			producer.Close()
		})
	}

	if cfg.Postgres.Enabled {
		if pg, err := postgres.New(cfg.Postgres); err != nil {
			log.Warn("postgres unavailable, run history disabled", "error", err)
		} else if store, err := runlog.NewStore(ctx, pg); err != nil {
			log.Warn("run log setup failed, run history disabled", "error", err)
			pg.Close()
		} else {
			opts.Runs = store
			checker.Register("postgres", pingCheck(pg.Ping))
			cleanups = append(cleanups, func() { pg.Close() })
		}
	}

	service := rag.NewService(scanner, extractor.New(), ch, embedder, synthesizer, index, ledger, m, opts)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return service, cleanup
}

// pingCheck adapts a ping function into a health check.
func pingCheck(ping func(context.Context) error) health.Check {
	return func(ctx context.Context) health.ComponentHealth {
		if err := ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	}
}
