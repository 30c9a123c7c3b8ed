package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amebel/hyperon-experimental/pkg/space"
	"github.com/amebel/hyperon-experimental/pkg/storage"
)

// Config contains configuration for scheduled snapshots.
type Config struct {
	// Schedule is a standard cron expression. Empty disables scheduling.
	// Default: "*/15 * * * *"
	Schedule string

	// Name is the snapshot name the space is saved under.
	// Default: "default"
	Name string

	// Keep is how many snapshots of Name to retain; older ones are pruned
	// after every save. Zero keeps all.
	// Default: 10
	Keep int
}

// DefaultConfig returns the default snapshot configuration.
func DefaultConfig() *Config {
	return &Config{
		Schedule: "*/15 * * * *",
		Name:     "default",
		Keep:     10,
	}
}

// Recorder receives the outcome of every snapshot attempt. It is
// implemented by the metrics collector.
type Recorder interface {
	RecordSnapshot(name string, atoms int, duration time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordSnapshot(string, int, time.Duration, error) {}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRecorder sets the recorder receiving snapshot outcomes.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.recorder = r
		}
	}
}

// Scheduler periodically saves a space into a store using cron syntax.
//
// Common cron expressions:
//   - "*/15 * * * *" - Every 15 minutes
//   - "0 * * * *"    - Hourly
//   - "0 3 * * *"    - Daily at 3 AM
type Scheduler struct {
	store  storage.Store
	space  space.Space
	config *Config
	cron     *cron.Cron
	recorder Recorder
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	lastRun *storage.Snapshot
}

// NewScheduler creates a scheduler saving sp into store.
func NewScheduler(store storage.Store, sp space.Space, config *Config, logger *slog.Logger, opts ...Option) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Name == "" {
		config.Name = "default"
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		store:    store,
		space:    sp,
		config:   config,
		cron:     cron.New(),
		recorder: noopRecorder{},
		logger:   logger.With("component", "snapshot.scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules snapshots. If Schedule is empty the scheduler does
// nothing. The scheduler stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("snapshot schedule not configured, skipping scheduler")
		return nil
	}
	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}
	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runScheduled(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule snapshots: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("snapshot scheduler started",
		"schedule", s.config.Schedule,
		"name", s.config.Name,
		"keep", s.config.Keep,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// RunOnce saves the space now and prunes old snapshots.
func (s *Scheduler) RunOnce(ctx context.Context) (*storage.Snapshot, error) {
	start := time.Now()
	snap, err := storage.Capture(ctx, s.store, s.config.Name, s.space)
	if err != nil {
		s.recorder.RecordSnapshot(s.config.Name, 0, time.Since(start), err)
		return nil, err
	}
	s.recorder.RecordSnapshot(s.config.Name, snap.Atoms, time.Since(start), nil)

	if s.config.Keep > 0 {
		if _, err := s.store.Prune(ctx, s.config.Name, s.config.Keep); err != nil {
			return snap, fmt.Errorf("failed to prune snapshots: %w", err)
		}
	}

	s.mu.Lock()
	s.lastRun = snap
	s.mu.Unlock()
	return snap, nil
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	s.logger.Debug("starting scheduled snapshot")
	snap, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("scheduled snapshot failed", "error", err)
		return
	}
	s.logger.Info("scheduled snapshot completed", "id", snap.ID, "atoms", snap.Atoms)
}

// Stop stops the scheduler and waits for a running snapshot to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	// Running jobs take s.mu to record their result.
	<-s.cron.Stop().Done()
	s.logger.Info("snapshot scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled snapshot time, or nil when nothing is
// scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

// LastRun returns the snapshot saved most recently by this scheduler.
func (s *Scheduler) LastRun() *storage.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}
