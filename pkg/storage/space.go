package storage

import (
	"context"
	"fmt"

	"github.com/amebel/hyperon-experimental/pkg/space"
)

// Capture saves the current atoms of sp under name.
func Capture(ctx context.Context, store Store, name string, sp space.Space) (*Snapshot, error) {
	snap, err := store.Save(ctx, name, sp.Atoms())
	if err != nil {
		return nil, fmt.Errorf("failed to capture space: %w", err)
	}
	return snap, nil
}

// Restore adds the atoms of the latest snapshot of name to sp and returns
// how many were added. Atoms already in sp are kept.
func Restore(ctx context.Context, store Store, name string, sp space.Space) (int, error) {
	atoms, err := store.Load(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to restore space: %w", err)
	}
	for _, a := range atoms {
		sp.Add(a)
	}
	return len(atoms), nil
}
