package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
)

// SearchService is the similarity-search surface the handler consumes.
// *evaluation.Service satisfies it.
type SearchService interface {
	Search(ctx context.Context, query string, topK int, sourceType string) ([]memory.SearchResult, error)
}

// searchHit is the wire form of one similarity match.
type searchHit struct {
	ID         string            `json:"id"`
	Similarity float64           `json:"similarity"`
	Metadata   map[string]string `json:"metadata"`
}

// searchResponse is the body of GET /api/v1/search.
type searchResponse struct {
	Query   string      `json:"query"`
	Count   int         `json:"count"`
	Results []searchHit `json:"results"`
}

// SearchHandler serves vector similarity search over the reference corpus.
type SearchHandler struct {
	svc    SearchService
	logger logging.Logger
}

// NewSearchHandler wires the handler.
func NewSearchHandler(svc SearchService, logger logging.Logger) *SearchHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SearchHandler{svc: svc, logger: logger.Named("http.search")}
}

// Search handles GET /api/v1/search?q=...&top_k=...&source_type=...
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	sourceType := c.Query("source_type")

	topK := 0
	if raw := c.Query("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, "top_k must be an integer")
			return
		}
		topK = parsed
	}

	results, err := h.svc.Search(c.Request.Context(), query, topK, sourceType)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := searchResponse{
		Query:   query,
		Count:   len(results),
		Results: make([]searchHit, 0, len(results)),
	}
	for _, r := range results {
		resp.Results = append(resp.Results, searchHit{
			ID:         r.ID,
			Similarity: r.SimilarityScore,
			Metadata:   r.Metadata,
		})
	}
	respondJSON(c, http.StatusOK, resp)
}
