package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amebel/hyperon-experimental/pkg/cli"
	"github.com/amebel/hyperon-experimental/pkg/config"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "metta",
	Short: "MeTTa interpreter and knowledge-space server",
	Long: `metta evaluates MeTTa programs against a knowledge space.

Plain atoms of a program are added to the space. An atom following "!" is
evaluated: equality rules (= pattern template) rewrite it, grounded
operations compute on it, and every result is printed.

Configuration is read from the file given with --config and from
HYPERON_* environment variables.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// setup loads the configuration and installs the logger before any
// subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			return cli.NewUsageError(cmd.Name(), err)
		}
		return cli.NewCommandError(cmd.Name(), fmt.Errorf("failed to load config: %w", err))
	}
	config.SetConfig(cfg)
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	l, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return cli.NewUsageError(cmd.Name(), err)
	}
	logger = l
	slog.SetDefault(logger)
	return nil
}
