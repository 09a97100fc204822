package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
	"github.com/turtacn/PatentGym/pkg/errors"
)

const sampleDataset = `
statutes:
  - number: "제29조"
    title: "특허요건"
    content: "산업상 이용할 수 있는 발명으로서 신규성과 진보성을 갖추어야 한다."
    category: "특허법"
  - number: "제750조"
    title: "불법행위의 내용"
    content: "고의 또는 과실로 인한 위법행위로 타인에게 손해를 가한 자는 그 손해를 배상할 책임이 있다."
    category: "민법"
  - number: "제0조"
    title: "빈 조문"
    content: ""
precedents:
  - case_number: "2020후1234"
    court: "대법원"
    case_type: "진보성"
    summary: "통상의 기술자가 선행기술로부터 쉽게 발명할 수 있는지를 기준으로 판단한다."
    outcome: "기각"
  - case_number: ""
    summary: "사건번호 누락"
`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDataset(t *testing.T) {
	ds, err := LoadDataset(writeDataset(t, sampleDataset), logging.NewNopLogger())
	require.NoError(t, err)

	// incomplete records are dropped, valid ones kept
	require.Len(t, ds.Statutes, 2)
	require.Len(t, ds.Precedents, 1)
	assert.Equal(t, 3, ds.Size())

	assert.Equal(t, "특허법:제29조", ds.Statutes[0].ID())
	assert.Equal(t, CategoryCivilLaw, ds.Statutes[1].Category)
	assert.Equal(t, "판례:2020후1234", ds.Precedents[0].ID())
	assert.Contains(t, ds.Statutes[0].EmbeddingText(), "제29조")
	assert.Contains(t, ds.Precedents[0].EmbeddingText(), "진보성")
}

func TestLoadDatasetDefaultsCategory(t *testing.T) {
	ds, err := LoadDataset(writeDataset(t, `
statutes:
  - number: "제1조"
    title: "목적"
    content: "이 법은 발명을 보호한다."
`), logging.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, ds.Statutes, 1)
	assert.Equal(t, CategoryPatentLaw, ds.Statutes[0].Category)
}

func TestLoadDatasetNotFound(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "missing.yaml"), logging.NewNopLogger())
	assert.True(t, errors.IsCode(err, errors.ErrCodeCorpusNotFound))
}

func TestLoadDatasetInvalidYAML(t *testing.T) {
	_, err := LoadDataset(writeDataset(t, "statutes: [not: {valid"), logging.NewNopLogger())
	assert.True(t, errors.IsCode(err, errors.ErrCodeCorpusParseError))
}

type constEmbedder struct {
	fail bool
}

func (c *constEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if c.fail {
		return nil, errors.New(errors.ErrCodeEmbeddingUnavailable, "down")
	}
	// deterministic per-text vector so records stay distinguishable
	v := []float64{1, float64(len([]rune(text)) % 7), 1}
	return v, nil
}

func (c *constEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := c.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *constEmbedder) Dimension() int { return 3 }
func (c *constEmbedder) Name() string   { return "const" }

func TestIndexDataset(t *testing.T) {
	idx := memory.NewVectorIndex("corpus", logging.NewNopLogger())
	ix := NewIndexer(idx, &constEmbedder{}, 2, logging.NewNopLogger())

	ds, err := LoadDataset(writeDataset(t, sampleDataset), logging.NewNopLogger())
	require.NoError(t, err)

	added, err := ix.IndexDataset(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, 3, idx.Stats().Count)

	// category lands in metadata as the search filter key
	hits := idx.Search([]float64{1, 1, 1}, 10, memory.Filter{"source_type": CategoryPrecedent})
	require.Len(t, hits, 1)
	assert.Equal(t, "판례:2020후1234", hits[0].ID)
	assert.Equal(t, "2020후1234", hits[0].Metadata["number"])
	assert.Equal(t, "대법원 진보성", hits[0].Metadata["title"])
}

func TestIndexDatasetSkipsDuplicates(t *testing.T) {
	idx := memory.NewVectorIndex("corpus", logging.NewNopLogger())
	ix := NewIndexer(idx, &constEmbedder{}, 2, logging.NewNopLogger())

	ds, err := LoadDataset(writeDataset(t, sampleDataset), logging.NewNopLogger())
	require.NoError(t, err)

	_, err = ix.IndexDataset(context.Background(), ds)
	require.NoError(t, err)

	added, err := ix.IndexDataset(context.Background(), ds)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, 3, idx.Stats().Count)
}

func TestIndexDatasetEmbeddingFailure(t *testing.T) {
	idx := memory.NewVectorIndex("corpus", logging.NewNopLogger())
	ix := NewIndexer(idx, &constEmbedder{fail: true}, 2, logging.NewNopLogger())

	ds := &Dataset{Statutes: []StatuteRecord{{Number: "제1조", Title: "목적", Content: "내용", Category: CategoryPatentLaw}}}
	_, err := ix.IndexDataset(context.Background(), ds)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCorpusLoadFailed))
}

func TestIndexFile(t *testing.T) {
	idx := memory.NewVectorIndex("corpus", logging.NewNopLogger())
	ix := NewIndexer(idx, &constEmbedder{}, 0, logging.NewNopLogger())

	added, err := ix.IndexFile(context.Background(), writeDataset(t, sampleDataset))
	require.NoError(t, err)
	assert.Equal(t, 3, added)
}
