package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/cli"
	"github.com/amebel/hyperon-experimental/pkg/config"
	"github.com/amebel/hyperon-experimental/pkg/snapshot"
	"github.com/amebel/hyperon-experimental/pkg/storage"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/logging"
)

var snapshotFlags struct {
	name   string
	output string
	eval   []string
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage snapshots of the knowledge space",
	Long: `Save, load, list and delete snapshots kept in the configured store.

Examples:
  # Load programs into a space and save it
  metta snapshot save kb.metta --name kb

  # Evaluate queries against the latest snapshot of kb
  metta snapshot load kb --eval '(parent Tom $x)'

  # List stored snapshots
  metta snapshot list --output json

  # Delete all snapshots of kb
  metta snapshot delete kb

  # Keep only the 3 newest snapshots of kb
  metta snapshot prune kb 3`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save FILE...",
	Short: "Run programs and save the resulting space",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSnapshotSave,
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load NAME",
	Short: "Load the latest snapshot of NAME and evaluate expressions against it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotLoad,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete all snapshots of NAME",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

var snapshotPruneCmd = &cobra.Command{
	Use:   "prune NAME KEEP",
	Short: "Delete all but the KEEP newest snapshots of NAME",
	Args:  cobra.ExactArgs(2),
	RunE:  runSnapshotPrune,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotLoadCmd, snapshotListCmd, snapshotDeleteCmd, snapshotPruneCmd)

	snapshotSaveCmd.Flags().StringVarP(&snapshotFlags.name, "name", "n", "", "snapshot name (default snapshot.name)")
	snapshotLoadCmd.Flags().StringArrayVarP(&snapshotFlags.eval, "eval", "e", nil, "expression to evaluate after loading")
	snapshotListCmd.Flags().StringVarP(&snapshotFlags.output, "output", "o", "text", "output format (text, json)")
}

// withSnapshotStack runs fn with a runner and the store opened on its
// tokenizer.
func withSnapshotStack(cmd *cobra.Command, name string, fn func(ctx context.Context, st *stack, store storage.Store) error) error {
	cfg := config.GetConfig()
	ctx := logging.WithCommand(cmd.Context(), "snapshot "+name)

	st, err := newStack(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return cli.NewCommandError("snapshot "+name, err)
	}
	defer st.Close(context.Background())

	store, err := openStore(&cfg.Storage, st.runner)
	if err != nil {
		return cli.NewCommandError("snapshot "+name, err)
	}
	defer store.Close()

	if err := fn(ctx, st, store); err != nil {
		return cli.NewCommandError("snapshot "+name, err)
	}
	return nil
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	return withSnapshotStack(cmd, "save", func(ctx context.Context, st *stack, store storage.Store) error {
		for _, path := range args {
			if _, err := st.runner.RunFile(logging.WithFile(ctx, path), path); err != nil {
				return err
			}
		}

		cfg := snapshotConfig(&config.GetConfig().Snapshot)
		cfg.Schedule = ""
		if snapshotFlags.name != "" {
			cfg.Name = snapshotFlags.name
		}
		snap, err := snapshot.NewScheduler(store, st.runner.Space(), cfg, logger,
			snapshot.WithRecorder(st.collector)).RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved snapshot %s of %s (%d atoms)\n", snap.ID, snap.Name, snap.Atoms)
		return nil
	})
}

func runSnapshotLoad(cmd *cobra.Command, args []string) error {
	return withSnapshotStack(cmd, "load", func(ctx context.Context, st *stack, store storage.Store) error {
		n, err := storage.Restore(ctx, store, args[0], st.runner.Space())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Loaded %d atoms from %s\n", n, args[0])

		formatter := cli.NewFormatter(cli.FormatText)
		for _, src := range snapshotFlags.eval {
			expr, err := st.runner.ParseOne(src)
			if err != nil {
				return err
			}
			results, err := st.runner.Evaluate(ctx, expr)
			if err != nil {
				return err
			}
			if err := formatter.FormatResults(cmd.OutOrStdout(), [][]atom.Atom{results}); err != nil {
				return err
			}
		}
		return nil
	})
}

func runSnapshotList(cmd *cobra.Command, _ []string) error {
	format, err := cli.ParseFormat(snapshotFlags.output)
	if err != nil {
		return cli.NewUsageError("snapshot list", err)
	}
	return withSnapshotStack(cmd, "list", func(ctx context.Context, _ *stack, store storage.Store) error {
		snaps, err := store.List(ctx)
		if err != nil {
			return err
		}
		return cli.NewFormatter(format).FormatSnapshots(cmd.OutOrStdout(), snaps)
	})
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	return withSnapshotStack(cmd, "delete", func(ctx context.Context, _ *stack, store storage.Store) error {
		if err := store.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted snapshots of %s\n", args[0])
		return nil
	})
}

func runSnapshotPrune(cmd *cobra.Command, args []string) error {
	keep, err := strconv.Atoi(args[1])
	if err != nil || keep < 0 {
		return cli.NewUsageError("snapshot prune", errors.New("KEEP must be a non-negative integer"))
	}
	return withSnapshotStack(cmd, "prune", func(ctx context.Context, _ *stack, store storage.Store) error {
		n, err := store.Prune(ctx, args[0], keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d snapshots of %s\n", n, args[0])
		return nil
	})
}
