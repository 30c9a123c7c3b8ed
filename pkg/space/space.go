package space

import (
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/matcher"
)

// Space is a mutable multiset of atoms that can be queried with patterns.
type Space interface {
	// Add inserts an atom. Duplicates are kept.
	Add(a atom.Atom)

	// Remove deletes one structurally equal occurrence of a. It returns false
	// when the atom is absent, which is not an error.
	Remove(a atom.Atom) bool

	// Replace substitutes the first occurrence of from with to. Nothing is
	// added when from is absent.
	Replace(from, to atom.Atom) bool

	// Query matches pattern against every atom present when Query is called
	// and yields one Bindings per unification, in insertion order.
	Query(pattern atom.Atom) iter.Seq[*matcher.Bindings]

	// Atoms returns a copy of the content in insertion order.
	Atoms() []atom.Atom

	// Len returns the number of atoms.
	Len() int
}

// GroundingSpace is the in-memory Space implementation. All methods are safe
// for concurrent use; mutations are serialized by a single lock and queries
// iterate over a snapshot taken when they start, so atoms added or removed
// while a query is being consumed only affect later queries.
type GroundingSpace struct {
	id     uuid.UUID
	logger *slog.Logger

	mu      sync.RWMutex
	content []atom.Atom
	// hashes[i] is atom.Hash(content[i]).
	hashes []uint64
	// counts holds the number of atoms per hash and functions the number
	// of (= (f ...) body) rules per head symbol f.
	counts    map[uint64]int
	functions map[atom.Symbol]int

	observersMu  sync.RWMutex
	observers    []registration
	nextObserver uint64
}

// NewGroundingSpace creates an empty space.
func NewGroundingSpace(logger *slog.Logger) *GroundingSpace {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	return &GroundingSpace{
		id:        id,
		logger:    logger.With("component", "space", "space_id", id.String()),
		counts:    make(map[uint64]int),
		functions: make(map[atom.Symbol]int),
	}
}

// FromAtoms creates a space holding the given atoms in order.
func FromAtoms(logger *slog.Logger, atoms ...atom.Atom) *GroundingSpace {
	s := NewGroundingSpace(logger)
	for _, a := range atoms {
		s.insert(a)
	}
	return s
}

// ID returns the unique identifier of the space.
func (s *GroundingSpace) ID() uuid.UUID {
	return s.id
}

// Add inserts an atom at the end of the space.
func (s *GroundingSpace) Add(a atom.Atom) {
	s.mu.Lock()
	s.insert(a)
	s.mu.Unlock()

	s.logger.Debug("atom added", "atom", a.String())
	s.notify(Event{Type: EventAdd, Atom: a})
}

// Remove deletes the first occurrence of a.
func (s *GroundingSpace) Remove(a atom.Atom) bool {
	s.mu.Lock()
	i := s.indexOf(a)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.track(s.content[i], s.hashes[i], -1)
	// Queries hold the old slice, so build a new one instead of shifting.
	next := make([]atom.Atom, 0, len(s.content)-1)
	next = append(next, s.content[:i]...)
	next = append(next, s.content[i+1:]...)
	s.content = next
	s.hashes = slices.Delete(s.hashes, i, i+1)
	s.mu.Unlock()

	s.logger.Debug("atom removed", "atom", a.String())
	s.notify(Event{Type: EventRemove, Atom: a})
	return true
}

// Replace substitutes the first occurrence of from with to.
func (s *GroundingSpace) Replace(from, to atom.Atom) bool {
	s.mu.Lock()
	i := s.indexOf(from)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.track(s.content[i], s.hashes[i], -1)
	h := atom.Hash(to)
	s.track(to, h, 1)
	next := make([]atom.Atom, len(s.content))
	copy(next, s.content)
	next[i] = to
	s.content = next
	s.hashes[i] = h
	s.mu.Unlock()

	s.logger.Debug("atom replaced", "from", from.String(), "to", to.String())
	s.notify(Event{Type: EventReplace, Atom: from, Replacement: to})
	return true
}

// insert must be called with s.mu held.
func (s *GroundingSpace) insert(a atom.Atom) {
	h := atom.Hash(a)
	s.content = append(s.content, a)
	s.hashes = append(s.hashes, h)
	s.track(a, h, 1)
}

// track adjusts the indexes by delta for a. It must be called with s.mu held.
func (s *GroundingSpace) track(a atom.Atom, h uint64, delta int) {
	if s.counts[h] += delta; s.counts[h] == 0 {
		delete(s.counts, h)
	}
	if head, ok := FunctionHead(a); ok {
		if s.functions[head] += delta; s.functions[head] == 0 {
			delete(s.functions, head)
		}
	}
}

// indexOf must be called with s.mu held.
func (s *GroundingSpace) indexOf(a atom.Atom) int {
	h := atom.Hash(a)
	if s.counts[h] == 0 {
		return -1
	}
	for i, c := range s.content {
		if s.hashes[i] == h && atom.Equal(c, a) {
			return i
		}
	}
	return -1
}

// DefinesFunction reports whether some (= (head ...) body) rule is present.
func (s *GroundingSpace) DefinesFunction(head atom.Symbol) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.functions[head] > 0
}

// Atoms returns a copy of the content.
func (s *GroundingSpace) Atoms() []atom.Atom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]atom.Atom, len(s.content))
	copy(out, s.content)
	return out
}

// Len returns the number of atoms in the space.
func (s *GroundingSpace) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.content)
}

// snapshot returns the current content slice. Mutations never write into a
// slice that has been handed out, except appends past its length.
func (s *GroundingSpace) snapshot() []atom.Atom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content[:len(s.content):len(s.content)]
}

// String identifies the space in logs.
func (s *GroundingSpace) String() string {
	return "GroundingSpace-" + s.id.String()
}
