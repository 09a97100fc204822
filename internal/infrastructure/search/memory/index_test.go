package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

func newIndex(t *testing.T) *VectorIndex {
	t.Helper()
	return NewVectorIndex("test", logging.NewNopLogger())
}

func TestAddAndStats(t *testing.T) {
	x := newIndex(t)

	require.NoError(t, x.Add("a", []float64{1, 0, 0}, map[string]string{"category": "특허법"}))
	require.NoError(t, x.Add("b", []float64{0, 1, 0}, nil))

	stats := x.Stats()
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 3, stats.Dimension)
}

func TestAddEmptyEmbedding(t *testing.T) {
	x := newIndex(t)

	err := x.Add("a", nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyEmbedding))
}

func TestAddDuplicateID(t *testing.T) {
	x := newIndex(t)

	require.NoError(t, x.Add("a", []float64{1, 0}, nil))
	err := x.Add("a", []float64{0, 1}, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRecordAlreadyExists))
}

func TestAddDimensionMismatch(t *testing.T) {
	x := newIndex(t)

	require.NoError(t, x.Add("a", []float64{1, 0, 0}, nil))
	err := x.Add("b", []float64{1, 0}, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDimensionMismatch))

	// failed add leaves the index unchanged
	assert.Equal(t, 1, x.Stats().Count)
}

func TestSearchEmptyIndex(t *testing.T) {
	x := newIndex(t)

	results := x.Search([]float64{1, 0, 0}, 5, nil)
	assert.Empty(t, results)
}

func TestSearchTopOneCosine(t *testing.T) {
	x := newIndex(t)
	require.NoError(t, x.Add("first", []float64{1, 0, 0}, nil))
	require.NoError(t, x.Add("second", []float64{0.9, 0.1, 0}, nil))

	results := x.Search([]float64{1, 0, 0}, 1, nil)
	require.Len(t, results, 1)
	assert.Equal(t, "first", results[0].ID)
	assert.InDelta(t, 1.0, results[0].SimilarityScore, 1e-9)
}

func TestSearchOrderingAndTopK(t *testing.T) {
	x := newIndex(t)
	require.NoError(t, x.Add("far", []float64{0, 0, 1}, nil))
	require.NoError(t, x.Add("near", []float64{1, 0.1, 0}, nil))
	require.NoError(t, x.Add("exact", []float64{2, 0, 0}, nil))

	results := x.Search([]float64{1, 0, 0}, 2, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].ID)
	assert.Equal(t, "near", results[1].ID)
	assert.GreaterOrEqual(t, results[0].SimilarityScore, results[1].SimilarityScore)
}

func TestSearchStableTieBreak(t *testing.T) {
	x := newIndex(t)
	// identical vectors score identically; insertion order decides
	require.NoError(t, x.Add("older", []float64{1, 1, 0}, nil))
	require.NoError(t, x.Add("newer", []float64{1, 1, 0}, nil))

	results := x.Search([]float64{1, 1, 0}, 2, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "older", results[0].ID)
	assert.Equal(t, "newer", results[1].ID)
}

func TestSearchFilter(t *testing.T) {
	x := newIndex(t)
	require.NoError(t, x.Add("law", []float64{1, 0}, map[string]string{"category": "특허법"}))
	require.NoError(t, x.Add("case", []float64{1, 0}, map[string]string{"category": "판례"}))

	results := x.Search([]float64{1, 0}, 10, Filter{"category": "판례"})
	require.Len(t, results, 1)
	assert.Equal(t, "case", results[0].ID)

	// filter excludes before ranking, so no match means empty
	assert.Empty(t, x.Search([]float64{1, 0}, 10, Filter{"category": "민법"}))
}

func TestSearchZeroNormVector(t *testing.T) {
	x := newIndex(t)
	require.NoError(t, x.Add("zero", []float64{0, 0, 0}, nil))

	results := x.Search([]float64{1, 0, 0}, 1, nil)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].SimilarityScore)
}

func TestSearchInvalidArgs(t *testing.T) {
	x := newIndex(t)
	require.NoError(t, x.Add("a", []float64{1, 0}, nil))

	assert.Empty(t, x.Search([]float64{1, 0}, 0, nil))
	assert.Empty(t, x.Search(nil, 5, nil))
}

func TestConcurrentAddAndSearch(t *testing.T) {
	x := newIndex(t)
	require.NoError(t, x.Add("seed", []float64{1, 0, 0}, nil))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = x.Add(fmt.Sprintf("rec-%d", i), []float64{0, 1, 0}, nil)
		}(i)
		go func() {
			defer wg.Done()
			_ = x.Search([]float64{1, 0, 0}, 3, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 9, x.Stats().Count)
}

func TestCosineSimilaritySelf(t *testing.T) {
	v := []float64{0.3, -0.7, 2.1}
	assert.InDelta(t, 1.0, cosineSimilarity(v, v), 1e-9)
}
