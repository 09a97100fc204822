package corpus

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
	"github.com/turtacn/PatentGym/internal/intelligence/embedding"
	"github.com/turtacn/PatentGym/pkg/errors"
)

// Indexer embeds corpus records and loads them into the vector index with
// bounded concurrency.
type Indexer struct {
	index    *memory.VectorIndex
	embedder embedding.TextEmbedder
	workers  int
	logger   logging.Logger
}

// NewIndexer builds an indexer.  workers below 1 fall back to 4.
func NewIndexer(index *memory.VectorIndex, embedder embedding.TextEmbedder, workers int, logger logging.Logger) *Indexer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if workers < 1 {
		workers = 4
	}
	return &Indexer{
		index:    index,
		embedder: embedder,
		workers:  workers,
		logger:   logger.Named("corpus.indexer"),
	}
}

type indexJob struct {
	id       string
	text     string
	metadata map[string]string
}

// IndexDataset embeds and indexes every record of ds.  Records already
// present in the index are skipped; embedding failures abort the load.
// Returns the number of records actually added.
func (ix *Indexer) IndexDataset(ctx context.Context, ds *Dataset) (int, error) {
	jobs := make([]indexJob, 0, ds.Size())
	for _, s := range ds.Statutes {
		jobs = append(jobs, indexJob{
			id:   s.ID(),
			text: s.EmbeddingText(),
			metadata: map[string]string{
				"number":      s.Number,
				"title":       s.Title,
				"content":     s.Content,
				"source_type": s.Category,
			},
		})
	}
	for _, p := range ds.Precedents {
		jobs = append(jobs, indexJob{
			id:   p.ID(),
			text: p.EmbeddingText(),
			metadata: map[string]string{
				"number":      p.CaseNumber,
				"title":       p.Court + " " + p.CaseType,
				"content":     p.Summary,
				"outcome":     p.Outcome,
				"source_type": CategoryPrecedent,
			},
		})
	}

	var added int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			vec, err := ix.embedder.Embed(gctx, job.text)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeCorpusLoadFailed, "failed to embed corpus record").
					WithDetail(job.id)
			}

			if err := ix.index.Add(job.id, vec, job.metadata); err != nil {
				if errors.IsCode(err, errors.ErrCodeRecordAlreadyExists) {
					ix.logger.Warn("skipping duplicate corpus record", logging.String("id", job.id))
					return nil
				}
				return err
			}
			atomic.AddInt64(&added, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(atomic.LoadInt64(&added)), err
	}

	ix.logger.Info("corpus indexed",
		logging.Int("records", int(added)),
		logging.Int("statutes", len(ds.Statutes)),
		logging.Int("precedents", len(ds.Precedents)))
	return int(added), nil
}

// IndexFile loads the dataset at path and indexes it.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	ds, err := LoadDataset(path, ix.logger)
	if err != nil {
		return 0, err
	}
	return ix.IndexDataset(ctx, ds)
}
