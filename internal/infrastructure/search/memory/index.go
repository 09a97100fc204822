// Package memory implements an in-process vector index with cosine-similarity
// top-k retrieval.  It backs the prior-art and precedent search paths without
// requiring an external vector store.
package memory

import (
	"math"
	"sort"
	"sync"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Types
// ─────────────────────────────────────────────────────────────────────────────

// Record is one stored embedding with its metadata.
type Record struct {
	ID        string
	Embedding []float64
	Metadata  map[string]string
}

// SearchResult is one ranked hit from a similarity search.
type SearchResult struct {
	ID              string            `json:"id"`
	SimilarityScore float64           `json:"similarity_score"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Stats summarizes the index state.
type Stats struct {
	Count     int
	Dimension int
}

// Filter restricts a search to records whose metadata contains every listed
// key/value pair.  A nil or empty filter matches all records.
type Filter map[string]string

func (f Filter) matches(meta map[string]string) bool {
	for k, v := range f {
		if meta[k] != v {
			return false
		}
	}
	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// VectorIndex
// ─────────────────────────────────────────────────────────────────────────────

// VectorIndex stores embeddings append-only and serves concurrent cosine
// similarity searches.  The first Add establishes the index dimension; every
// later Add must match it.  Writers are serialized; readers observe either
// the pre- or post-add state of any record, never a partial one.
type VectorIndex struct {
	mu        sync.RWMutex
	name      string
	records   []Record
	ids       map[string]struct{}
	dimension int
	logger    logging.Logger
}

// NewVectorIndex constructs an empty index.  The name labels log entries and
// metrics when several indexes coexist in one process.
func NewVectorIndex(name string, logger logging.Logger) *VectorIndex {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &VectorIndex{
		name:   name,
		ids:    make(map[string]struct{}),
		logger: logger.Named("vectorindex"),
	}
}

// Add appends one record.  It fails with EmptyEmbedding for a zero-length
// vector, RecordAlreadyExists for a duplicate id, and DimensionMismatch when
// the vector length differs from the established index dimension.
func (x *VectorIndex) Add(id string, embedding []float64, metadata map[string]string) error {
	if len(embedding) == 0 {
		return errors.New(errors.ErrCodeEmptyEmbedding, "embedding must not be empty").
			WithDetail("record_id=" + id)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, dup := x.ids[id]; dup {
		return errors.New(errors.ErrCodeRecordAlreadyExists, "record id already indexed").
			WithDetail("record_id=" + id)
	}
	if x.dimension == 0 {
		x.dimension = len(embedding)
	} else if len(embedding) != x.dimension {
		return errors.New(errors.ErrCodeDimensionMismatch, "embedding length does not match index dimension").
			WithDetail("record_id=" + id)
	}

	// Copy to keep the record immutable after insertion.
	vec := make([]float64, len(embedding))
	copy(vec, embedding)
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	x.records = append(x.records, Record{ID: id, Embedding: vec, Metadata: meta})
	x.ids[id] = struct{}{}

	x.logger.Debug("record indexed",
		logging.String("index", x.name),
		logging.String("record_id", id),
		logging.Int("count", len(x.records)))
	return nil
}

// Search returns up to topK records ranked by cosine similarity to the query
// embedding, highest first; ties keep insertion order.  The filter is applied
// before ranking.  Searching an empty index returns an empty slice.
func (x *VectorIndex) Search(query []float64, topK int, filter Filter) []SearchResult {
	if topK <= 0 || len(query) == 0 {
		return []SearchResult{}
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	results := make([]SearchResult, 0, len(x.records))
	for _, rec := range x.records {
		if !filter.matches(rec.Metadata) {
			continue
		}
		results = append(results, SearchResult{
			ID:              rec.ID,
			SimilarityScore: cosineSimilarity(query, rec.Embedding),
			Metadata:        rec.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Stats reports the record count and the established dimension (0 while the
// index is empty).
func (x *VectorIndex) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return Stats{Count: len(x.records), Dimension: x.dimension}
}

// cosineSimilarity computes dot(a,b) / (‖a‖·‖b‖), defined as 0.0 when either
// norm is zero.  Mismatched lengths compare over the shorter prefix; the Add
// dimension check makes that unreachable for indexed records.
func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
