package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amebel/hyperon-experimental/pkg/config"
	"github.com/amebel/hyperon-experimental/pkg/interpreter"
	"github.com/amebel/hyperon-experimental/pkg/runner"
	"github.com/amebel/hyperon-experimental/pkg/snapshot"
	"github.com/amebel/hyperon-experimental/pkg/storage"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/metrics"
	"github.com/amebel/hyperon-experimental/pkg/telemetry/tracing"
	"github.com/amebel/hyperon-experimental/pkg/watch"
)

// stack holds the components shared by the commands. Close releases them.
type stack struct {
	runner    *runner.Runner
	tracer    *tracing.Tracer
	collector *metrics.Collector
}

// newStack creates the runner with tracing and metrics wired in. Program
// output goes to out.
func newStack(ctx context.Context, cfg *config.Config, out io.Writer) (*stack, error) {
	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	r, err := runner.New(runnerConfig(cfg), logger,
		runner.WithOutput(out),
		runner.WithTracer(tracer),
		runner.WithRecorder(collector),
	)
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, err
	}
	return &stack{runner: r, tracer: tracer, collector: collector}, nil
}

// Close flushes pending spans.
func (s *stack) Close(ctx context.Context) error {
	return s.tracer.Shutdown(ctx)
}

func runnerConfig(cfg *config.Config) *runner.Config {
	return &runner.Config{
		Cwd:           cfg.Runner.Cwd,
		DisableStdlib: cfg.Runner.DisableStdlib,
		Interpreter: &interpreter.Config{
			MaxSteps:   cfg.Interpreter.MaxSteps,
			MaxDepth:   cfg.Interpreter.MaxDepth,
			TraceSteps: cfg.Interpreter.TraceSteps,
		},
	}
}

// openStore opens the snapshot store. The decoder restores grounded atoms
// through the runner's tokenizer.
func openStore(cfg *config.StorageConfig, decoder storage.Decoder) (*storage.SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Path); cfg.Path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return storage.NewSQLiteStore(&storage.SQLiteConfig{
		Driver:      cfg.Driver,
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	}, decoder, logger)
}

func snapshotConfig(cfg *config.SnapshotConfig) *snapshot.Config {
	return &snapshot.Config{
		Schedule: cfg.Schedule,
		Name:     cfg.Name,
		Keep:     cfg.Keep,
	}
}

func watchConfig(cfg *config.WatchConfig, paths []string) *watch.Config {
	return &watch.Config{
		Paths:            paths,
		DebounceInterval: cfg.Debounce,
		Extensions:       cfg.Extensions,
		SkipHidden:       cfg.SkipHidden,
	}
}
