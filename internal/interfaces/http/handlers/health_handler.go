package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
)

// StatsProvider reports the current vector-index state.
// *evaluation.Service satisfies it.
type StatsProvider interface {
	IndexStats() memory.Stats
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status    string      `json:"status"`
	Version   string      `json:"version,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Index     indexHealth `json:"index"`
}

type indexHealth struct {
	Records   int `json:"records"`
	Dimension int `json:"dimension"`
}

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	stats   StatsProvider
	version string
}

// NewHealthHandler wires the handler.  version may be empty.
func NewHealthHandler(stats StatsProvider, version string) *HealthHandler {
	return &HealthHandler{stats: stats, version: version}
}

// Health handles GET /healthz.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := healthResponse{
		Status:    "ok",
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	}
	if h.stats != nil {
		s := h.stats.IndexStats()
		resp.Index = indexHealth{Records: s.Count, Dimension: s.Dimension}
	}
	respondJSON(c, http.StatusOK, resp)
}
