package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
)

// newServeCommand builds the `serve` subcommand: load the corpus, start the
// HTTP API, and run until SIGINT/SIGTERM.
func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the evaluation API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			app, err := BuildApplication(cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			added, err := app.LoadCorpus(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("corpus loaded",
				logging.Int("records", added),
				logging.Int("index_size", app.Index.Stats().Count))

			errCh := make(chan error, 1)
			go func() { errCh <- app.Server.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("shutdown signal received", logging.String("signal", sig.String()))
			}

			if err := app.Server.Stop(context.Background()); err != nil {
				return err
			}
			return <-errCh
		},
	}
}
