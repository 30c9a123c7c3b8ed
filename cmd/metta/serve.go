package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/amebel/hyperon-experimental/pkg/cli"
	"github.com/amebel/hyperon-experimental/pkg/config"
	"github.com/amebel/hyperon-experimental/pkg/server"
	"github.com/amebel/hyperon-experimental/pkg/snapshot"
	"github.com/amebel/hyperon-experimental/pkg/space"
	"github.com/amebel/hyperon-experimental/pkg/storage"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/health"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/logging"
	"github.com/amebel/hyperon-experimental/pkg/watch"
)

var serveFlags struct {
	listenAddress string
	watch         bool
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve [PATH...]",
	Short: "Serve a knowledge space over HTTP",
	Long: `Load knowledge-base files into a space and serve evaluation against it.

Routes:
  POST /eval       run {"program": "..."} and return the results
  GET  /metrics    Prometheus metrics
  GET  /healthz    liveness probe
  GET  /readyz     readiness probe

PATH arguments and watch.paths name files or directories of knowledge-base
files. Only their plain atoms are loaded; "!" expressions are skipped. With
watching enabled, changed files are reloaded in place. With snapshots
enabled, the space is saved on the configured schedule and on shutdown.

Examples:
  # Serve a knowledge base
  metta serve kb/

  # Reload files as they change
  metta serve --watch kb/

  # Validate the configuration without serving
  metta serve --config metta.yaml --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().BoolVarP(&serveFlags.watch, "watch", "w", false, "reload changed knowledge-base files")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.watch {
		cfg.Watch.Enabled = true
	}
	paths := slices.Concat(args, cfg.Watch.Paths)
	if cfg.Watch.Enabled && len(paths) == 0 {
		return cli.NewUsageError("serve", errors.New("watching needs at least one path"))
	}
	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx := logging.WithCommand(cmd.Context(), "serve")
	if err := serve(ctx, cfg, paths); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// serve runs the server until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, paths []string) error {
	st, err := newStack(ctx, cfg, logWriter{logger})
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	sp := st.runner.Space()
	if gs, ok := sp.(*space.GroundingSpace); ok {
		defer st.collector.ObserveSpace("self", gs)()
	}

	store, err := openStore(&cfg.Storage, st.runner)
	if err != nil {
		return err
	}
	defer store.Close()

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("storage", health.StoreCheck(store))

	if cfg.Snapshot.RestoreOnStart {
		n, err := storage.Restore(ctx, store, cfg.Snapshot.Name, sp)
		switch {
		case errors.Is(err, storage.ErrSnapshotNotFound):
			logger.InfoContext(ctx, "no snapshot to restore", "name", cfg.Snapshot.Name)
		case err != nil:
			return err
		default:
			logger.InfoContext(ctx, "snapshot restored", "name", cfg.Snapshot.Name, "atoms", n)
		}
	}

	watcher, err := watch.New(watchConfig(&cfg.Watch, paths), logger)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	reloader := watch.NewReloader(sp, st.runner, logger)
	files, err := watcher.Files()
	if err != nil {
		return fmt.Errorf("failed to list knowledge-base files: %w", err)
	}
	err = reloader.Load(ctx, files)
	st.collector.RecordReload(len(files), err)
	if err != nil {
		return err
	}

	if cfg.Watch.Enabled {
		onChange := func(ctx context.Context, changed []string) error {
			err := reloader.Reload(ctx, changed)
			st.collector.RecordReload(len(changed), err)
			return err
		}
		go func() {
			if err := watcher.Watch(ctx, onChange); err != nil {
				logger.ErrorContext(ctx, "watcher failed", "error", err)
			}
		}()
		checker.RegisterCheck("watcher", health.RunningCheck("watcher", watcher))
	}

	if cfg.Snapshot.Enabled {
		scheduler := snapshot.NewScheduler(store, sp, snapshotConfig(&cfg.Snapshot), logger,
			snapshot.WithRecorder(st.collector))
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		checker.RegisterCheck("snapshot", health.RunningCheck("snapshot scheduler", scheduler))
		defer func() {
			scheduler.Stop()
			if snap, err := scheduler.RunOnce(context.Background()); err != nil {
				logger.Error("final snapshot failed", "error", err)
			} else {
				logger.Info("final snapshot saved", "id", snap.ID, "atoms", snap.Atoms)
			}
		}()
	}

	var opts []server.Option
	if cfg.Telemetry.Metrics.Enabled {
		opts = append(opts, server.WithMetrics(cfg.Telemetry.Metrics.Path, st.collector.Handler()))
	}
	opts = append(opts, server.WithHealth(checker, &cfg.Telemetry.Health))

	logger.InfoContext(ctx, "knowledge space ready", "files", len(files), "atoms", sp.Len())
	return server.New(&cfg.Server, st.runner, logger, opts...).Start(ctx)
}

// logWriter sends println! output of served programs to the log.
type logWriter struct {
	logger *slog.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.logger.Info("program output", "text", string(bytes.TrimSuffix(p, []byte("\n"))))
	return len(p), nil
}
