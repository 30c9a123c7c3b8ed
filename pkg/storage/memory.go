package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amebel/hyperon-experimental/pkg/atom"
)

// MemoryStore implements Store in memory. Intended for tests and for
// running without a database.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots []memorySnapshot // oldest first
}

type memorySnapshot struct {
	Snapshot
	atoms []atom.Atom
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores a copy of atoms as a new snapshot under name.
func (s *MemoryStore) Save(_ context.Context, name string, atoms []atom.Atom) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memorySnapshot{
		Snapshot: Snapshot{
			ID:        uuid.NewString(),
			Name:      name,
			Atoms:     len(atoms),
			CreatedAt: time.Now(),
		},
		atoms: slices.Clone(atoms),
	}
	s.snapshots = append(s.snapshots, snap)

	out := snap.Snapshot
	return &out, nil
}

// Load returns the atoms of the latest snapshot saved under name.
func (s *MemoryStore) Load(_ context.Context, name string) ([]atom.Atom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if s.snapshots[i].Name == name {
			return slices.Clone(s.snapshots[i].atoms), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
}

// LoadID returns the atoms of the snapshot with the given ID.
func (s *MemoryStore) LoadID(_ context.Context, id string) ([]atom.Atom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, snap := range s.snapshots {
		if snap.ID == id {
			return slices.Clone(snap.atoms), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
}

// List returns all snapshots, newest first.
func (s *MemoryStore) List(context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Snapshot, 0, len(s.snapshots))
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		out = append(out, s.snapshots[i].Snapshot)
	}
	return out, nil
}

// Delete removes every snapshot saved under name.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.snapshots)
	s.snapshots = slices.DeleteFunc(s.snapshots, func(snap memorySnapshot) bool {
		return snap.Name == name
	})
	if len(s.snapshots) == before {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	return nil
}

// Prune removes all but the newest keep snapshots of name.
func (s *MemoryStore) Prune(_ context.Context, name string, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen, removed := 0, 0
	kept := make([]memorySnapshot, 0, len(s.snapshots))
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		snap := s.snapshots[i]
		if snap.Name == name {
			seen++
			if seen > keep {
				removed++
				continue
			}
		}
		kept = append(kept, snap)
	}
	slices.Reverse(kept)
	s.snapshots = kept
	return removed, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
