package storage

import (
	"context"
	"time"

	"github.com/amebel/hyperon-experimental/pkg/atom"
)

// Snapshot describes a stored copy of a space's atoms.
type Snapshot struct {
	// ID uniquely identifies the snapshot.
	ID string `json:"id"`

	// Name groups snapshots of the same space. Load returns the latest
	// snapshot of a name.
	Name string `json:"name"`

	// Atoms is the number of atoms in the snapshot.
	Atoms int `json:"atoms"`

	// CreatedAt is when the snapshot was saved.
	CreatedAt time.Time `json:"created_at"`
}

// Store persists snapshots of atom multisets.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores atoms as a new snapshot under name, keeping their order.
	Save(ctx context.Context, name string, atoms []atom.Atom) (*Snapshot, error)

	// Load returns the atoms of the latest snapshot saved under name.
	// Returns ErrSnapshotNotFound if there is none.
	Load(ctx context.Context, name string) ([]atom.Atom, error)

	// LoadID returns the atoms of the snapshot with the given ID.
	LoadID(ctx context.Context, id string) ([]atom.Atom, error)

	// List returns all snapshots, newest first.
	List(ctx context.Context) ([]Snapshot, error)

	// Delete removes every snapshot saved under name.
	Delete(ctx context.Context, name string) error

	// Prune removes all but the newest keep snapshots of name and returns
	// how many were removed.
	Prune(ctx context.Context, name string, keep int) (int, error)

	// Close releases the resources held by the store.
	Close() error
}

// Decoder turns the text form of an atom back into an atom.
// *sexpr.Parser implements it.
type Decoder interface {
	ParseOne(src string) (atom.Atom, error)
}
