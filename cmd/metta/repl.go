package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amebel/hyperon-experimental/pkg/cli"
	"github.com/amebel/hyperon-experimental/pkg/config"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/logging"
)

const replPrompt = "metta> "

// errInterrupted reports a session ended by a signal.
var errInterrupted = errors.New("interrupted")

var replFlags struct {
	load []string
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long: `Start an interactive session. Each line is run as a program against a
space kept for the whole session, so atoms added on one line are visible to
the next. The results of every "!" on the line are printed.

Commands:
  :quit     end the session (also Ctrl-D)
  :atoms    print the atoms of the space`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringSliceVarP(&replFlags.load, "load", "l", nil, "programs to run before the session starts")
}

func runREPL(cmd *cobra.Command, _ []string) error {
	ctx := logging.WithCommand(cmd.Context(), "repl")
	out := cmd.OutOrStdout()

	st, err := newStack(ctx, config.GetConfig(), out)
	if err != nil {
		return cli.NewCommandError("repl", err)
	}
	defer st.Close(context.Background())

	for _, path := range replFlags.load {
		if _, err := st.runner.RunFile(logging.WithFile(ctx, path), path); err != nil {
			return cli.NewCommandError("repl", err)
		}
	}

	formatter := cli.NewFormatter(cli.FormatText)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, replPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return cli.NewCommandError("repl", errInterrupted)
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":atoms":
			for _, a := range st.runner.Space().Atoms() {
				fmt.Fprintln(out, a)
			}
			continue
		}

		results, err := st.runner.Run(ctx, line)
		_ = formatter.FormatResults(out, results)
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
}
