// Package http assembles the gin route tree and the HTTP server lifecycle
// for the evaluation API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PatentGym/internal/interfaces/http/handlers"
	"github.com/turtacn/PatentGym/internal/interfaces/http/middleware"
)

// RouterConfig carries everything the route tree needs.  MetricsHandler and
// Metrics are optional; RateLimiter is optional and owned by the caller.
type RouterConfig struct {
	Server config.ServerConfig

	Evaluation *handlers.EvaluationHandler
	Search     *handlers.SearchHandler
	Health     *handlers.HealthHandler

	RateLimiter    *middleware.RateLimiter
	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler

	Logger logging.Logger
}

// NewRouter builds the complete gin engine: global middleware chain, public
// probes, and the /api/v1 group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Recovery(logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Handler())
	}

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Health)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	{
		if cfg.Evaluation != nil {
			api.POST("/claims/parse", cfg.Evaluation.ParseClaim)
			api.POST("/evaluations/novelty", cfg.Evaluation.EvaluateNovelty)
			api.POST("/evaluations/inventive-step", cfg.Evaluation.EvaluateInventiveStep)
		}
		if cfg.Search != nil {
			api.GET("/search", cfg.Search.Search)
		}
	}

	return r
}
