package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/PatentGym/internal/domain/corpus"
	"github.com/turtacn/PatentGym/internal/infrastructure/search/memory"
	"github.com/turtacn/PatentGym/internal/intelligence/embedding"
)

// newCorpusCommand builds the `corpus` command group.
func newCorpusCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage the reference corpus of statutes and precedents",
	}
	cmd.AddCommand(newCorpusLoadCommand(opts))
	return cmd
}

// newCorpusLoadCommand builds `corpus load`: parse the corpus file, embed
// every record, and report what the server would index at startup.
func newCorpusLoadCommand(opts *rootOptions) *cobra.Command {
	var (
		path         string
		validateOnly bool
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load and index a corpus file, reporting record counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			if path == "" {
				path = cfg.Corpus.Path
			}
			if path == "" {
				return fmt.Errorf("no corpus path given: set --path or corpus.path in config")
			}

			ds, err := corpus.LoadDataset(path, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d statutes and %d precedents from %s\n",
				len(ds.Statutes), len(ds.Precedents), path)

			if validateOnly {
				return nil
			}

			embedder, err := embedding.NewEmbedder(cfg.Embedding, logger)
			if err != nil {
				return err
			}
			index := memory.NewVectorIndex("reference-corpus", logger)
			indexer := corpus.NewIndexer(index, embedder, cfg.Corpus.Workers, logger)

			added, err := indexer.IndexDataset(cmd.Context(), ds)
			if err != nil {
				return err
			}
			stats := index.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d records (dimension %d)\n", added, stats.Dimension)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "corpus YAML file (default: corpus.path from config)")
	cmd.Flags().BoolVar(&validateOnly, "validate-only", false, "parse and validate without embedding")
	return cmd
}
