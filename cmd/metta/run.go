package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/amebel/hyperon-experimental/pkg/cli"
	"github.com/amebel/hyperon-experimental/pkg/config"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/logging"
)

var runFlags struct {
	output   string
	maxSteps int
}

var runCmd = &cobra.Command{
	Use:   "run FILE...",
	Short: "Run MeTTa programs",
	Long: `Run MeTTa programs in order against one shared space and print the
results of every evaluation, one line per "!".

Examples:
  # Run a program
  metta run family.metta

  # Load a knowledge base, then query it, printing JSON
  metta run kb.metta queries.metta --output json

  # Bound runaway recursion
  metta run loop.metta --max-steps 10000`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrograms,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.output, "output", "o", "text", "output format (text, json)")
	runCmd.Flags().IntVar(&runFlags.maxSteps, "max-steps", 0, "override the evaluation step budget")
}

func runPrograms(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(runFlags.output)
	if err != nil {
		return cli.NewUsageError("run", err)
	}
	cfg := config.GetConfig()
	if runFlags.maxSteps > 0 {
		cfg.Interpreter.MaxSteps = runFlags.maxSteps
	}

	ctx := logging.WithCommand(cmd.Context(), "run")
	st, err := newStack(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer st.Close(context.Background())

	formatter := cli.NewFormatter(format)
	for _, path := range args {
		results, runErr := st.runner.RunFile(logging.WithFile(ctx, path), path)
		// Results of the evaluations before a failure are still printed.
		if err := formatter.FormatResults(cmd.OutOrStdout(), results); err != nil {
			return cli.NewCommandError("run", err)
		}
		if runErr != nil {
			return cli.NewCommandError("run", runErr)
		}
	}
	return nil
}
