package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// newEvaluateCommand builds `evaluate`: run one claim through the pipeline
// from the terminal and print the result as JSON.
func newEvaluateCommand(opts *rootOptions) *cobra.Command {
	var (
		kind      string
		field     string
		claimFile string
	)

	cmd := &cobra.Command{
		Use:   "evaluate [claim text]",
		Short: "Evaluate a single claim for novelty or inventive step",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch kind {
			case "novelty", "inventive-step", "parse":
			default:
				return fmt.Errorf("unknown evaluation type %q: use novelty, inventive-step, or parse", kind)
			}

			claimText := strings.Join(args, " ")
			if claimFile != "" {
				data, err := os.ReadFile(claimFile)
				if err != nil {
					return fmt.Errorf("read claim file: %w", err)
				}
				claimText = string(data)
			}

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

			if _, err := app.LoadCorpus(cmd.Context()); err != nil {
				return err
			}

			var result interface{}
			switch kind {
			case "novelty":
				result, err = app.Service.EvaluateNovelty(cmd.Context(), claimText)
			case "inventive-step":
				result, err = app.Service.EvaluateInventiveStep(cmd.Context(), claimText, field)
			case "parse":
				result, err = app.Service.ParseClaim(cmd.Context(), claimText)
			}
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "novelty", "evaluation type: novelty, inventive-step, or parse")
	cmd.Flags().StringVarP(&field, "field", "f", "", "technical field for inventive-step evaluation")
	cmd.Flags().StringVar(&claimFile, "file", "", "read claim text from a file instead of arguments")
	return cmd
}
