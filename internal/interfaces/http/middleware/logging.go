package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/prometheus"
)

// slowRequestThreshold is the duration above which a request is logged at
// Warn level even when it succeeds.
const slowRequestThreshold = 3 * time.Second

// skippedLogPaths are high-frequency probe paths that would only add noise.
var skippedLogPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// RequestLogging emits one structured log line per request with method, path,
// status, duration, and request ID.  5xx responses log at Error level, 4xx
// and slow requests at Warn.
func RequestLogging(logger logging.Logger) gin.HandlerFunc {
	logger = logger.Named("http")
	return func(c *gin.Context) {
		if _, skip := skippedLogPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("duration", elapsed),
			logging.String("request_id", RequestIDFrom(c)),
			logging.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request failed", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("request rejected", fields...)
		case elapsed > slowRequestThreshold:
			logger.Warn("slow request", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}

// Metrics records per-request counters and latency histograms.  The path
// label uses the route template so that parameterized routes do not explode
// label cardinality.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.HTTPActiveRequests.WithLabelValues(method, path).Inc()
		start := time.Now()
		c.Next()

		m.HTTPActiveRequests.WithLabelValues(method, path).Dec()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		m.HTTPRequestsTotal.WithLabelValues(method, path, statusLabel(c.Writer.Status())).Inc()
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
