package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/amebel/hyperon-experimental/pkg/storage"
)

// Runner is a background component that can report whether it is active.
// The snapshot scheduler and the watcher implement it.
type Runner interface {
	IsRunning() bool
}

// StoreCheck reports the snapshot store unhealthy when it cannot list its
// snapshots.
func StoreCheck(store storage.Store) CheckFunc {
	return func(ctx context.Context) error {
		if _, err := store.List(ctx); err != nil {
			return fmt.Errorf("snapshot store unavailable: %w", err)
		}
		return nil
	}
}

// RunningCheck reports a background component unhealthy once it stopped.
func RunningCheck(name string, r Runner) CheckFunc {
	return func(context.Context) error {
		if !r.IsRunning() {
			return errors.New(name + " is not running")
		}
		return nil
	}
}
