// Command apiserver runs only the HTTP evaluation API.  It reads its
// configuration from the file named by -config, or entirely from
// PATENTGYM_* environment variables when the flag is empty.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/internal/interfaces/cli"
)

func main() {
	configPath := flag.String("config", "", "config file path (empty: environment variables only)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "apiserver:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath == "" {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(configPath)
	}
	if err != nil {
		return err
	}

	output := cfg.Log.Output
	if output == "" {
		output = "stdout"
	}
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: []string{output},
	})
	if err != nil {
		return err
	}

	app, err := cli.BuildApplication(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	added, err := app.LoadCorpus(context.Background())
	if err != nil {
		return err
	}
	logger.Info("corpus loaded", logging.Int("records", added))

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
}
