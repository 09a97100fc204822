// Package cli implements the cobra command tree: serve, corpus load, and
// evaluate.  The bootstrap here is also used by cmd/apiserver so both entry
// points wire the application identically.
package cli

import (
	"context"
	"net/http"

	"github.com/turtacn/PatentGym/internal/application/evaluation"
	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/domain/corpus"
	"github.com/turtacn/PatentGym/internal/infrastructure/cache"
	"github.com/turtacn/PatentGym/internal/infrastructure/llm"
	"github.com/turtacn/PatentGym/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
	"github.com/turtacn/PatentGym/internal/intelligence/embedding"
	"github.com/turtacn/PatentGym/internal/intelligence/evaluator"
	"github.com/turtacn/PatentGym/internal/intelligence/rag"
	httpiface "github.com/turtacn/PatentGym/internal/interfaces/http"
	"github.com/turtacn/PatentGym/internal/interfaces/http/handlers"
	"github.com/turtacn/PatentGym/internal/interfaces/http/middleware"
)

// Application bundles every wired component of the evaluation platform.
type Application struct {
	Config   *config.Config
	Logger   logging.Logger
	Metrics  *prometheus.AppMetrics
	Index    *memory.VectorIndex
	Embedder embedding.TextEmbedder
	Provider llm.Provider
	RAG      *rag.System
	Service  *evaluation.Service
	Server   *httpiface.Server

	metricsHandler http.Handler
	store          cache.Store
	publisher      *kafka.Publisher
	rateLimiter    *middleware.RateLimiter
}

// BuildApplication wires the full component graph from cfg.  Optional
// collaborators (LLM, Redis, Kafka, metrics) are skipped when disabled in
// config; the evaluators degrade accordingly.
func BuildApplication(cfg *config.Config, logger logging.Logger) (*Application, error) {
	app := &Application{Config: cfg, Logger: logger}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
			EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.Metrics = prometheus.NewAppMetrics(collector)
		app.metricsHandler = collector.Handler()
	}

	app.Index = memory.NewVectorIndex("reference-corpus", logger)

	embedder, err := embedding.NewEmbedder(cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}
	app.Embedder = embedder

	if cfg.LLM.Enabled {
		provider, err := llm.NewProvider(cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		app.Provider = provider
	}

	app.RAG = rag.NewSystem(app.Index, app.Embedder, app.Provider, cfg.Evaluation.Novelty.MaxRetrievedDocs, logger)

	var generator evaluator.Generator
	if app.Provider != nil {
		generator = app.Provider
	}
	novelty := evaluator.NewHybridNoveltyEvaluator(cfg.Evaluation, app.RAG, generator, logger)
	inventive := evaluator.NewHybridInventiveStepEvaluator(cfg.Evaluation, app.RAG, generator, logger)

	if cfg.Cache.Enabled {
		store, err := cache.NewStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		app.store = store
	}

	if cfg.Kafka.Enabled {
		publisher, err := kafka.NewPublisher(cfg.Kafka, logger)
		if err != nil {
			return nil, err
		}
		app.publisher = publisher
	}

	deps := evaluation.Deps{
		Config:    cfg,
		Index:     app.Index,
		Embedder:  app.Embedder,
		Novelty:   novelty,
		Inventive: inventive,
		Store:     app.store,
		Metrics:   app.Metrics,
		Logger:    logger,
	}
	if app.publisher != nil {
		deps.Publisher = app.publisher
	}
	app.Service = evaluation.NewService(deps)

	app.rateLimiter = middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	router := httpiface.NewRouter(httpiface.RouterConfig{
		Server:         cfg.Server,
		Evaluation:     handlers.NewEvaluationHandler(app.Service, logger),
		Search:         handlers.NewSearchHandler(app.Service, logger),
		Health:         handlers.NewHealthHandler(app.Service, Version),
		RateLimiter:    app.rateLimiter,
		Metrics:        app.Metrics,
		MetricsHandler: app.metricsHandler,
		Logger:         logger,
	})
	app.Server = httpiface.NewServer(cfg.Server, router, logger)

	return app, nil
}

// LoadCorpus reads the reference corpus from the configured path and indexes
// it.  A missing path is not an error; the index simply stays empty.
func (a *Application) LoadCorpus(ctx context.Context) (int, error) {
	if a.Config.Corpus.Path == "" {
		a.Logger.Warn("no corpus path configured, starting with an empty index")
		return 0, nil
	}
	indexer := corpus.NewIndexer(a.Index, a.Embedder, a.Config.Corpus.Workers, a.Logger)
	return indexer.IndexFile(ctx, a.Config.Corpus.Path)
}

// Close releases background resources in reverse dependency order.
func (a *Application) Close() {
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Logger.Warn("kafka publisher close failed", logging.Err(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Warn("cache store close failed", logging.Err(err))
		}
	}
}
