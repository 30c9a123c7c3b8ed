package space

import (
	"iter"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/matcher"
)

// SpaceType is the type of grounded space atoms.
var SpaceType = atom.Sym("Space")

// spaceValue lets a space appear inside expressions. Matching an atom against
// it runs a query, so (match &self pattern template) style lookups and
// patterns that mention the space work through ordinary unification.
type spaceValue struct {
	space Space
	name  string
}

// NewAtom wraps sp into a grounded atom printed as name.
func NewAtom(sp Space, name string) *atom.Grounded {
	return atom.Gnd(&spaceValue{space: sp, name: name})
}

// Type returns SpaceType.
func (v *spaceValue) Type() atom.Atom { return SpaceType }

// String returns the name the atom was created with.
func (v *spaceValue) String() string { return v.name }

// Equal compares by the identity of the wrapped space.
func (v *spaceValue) Equal(other atom.Value) bool {
	o, ok := other.(*spaceValue)
	return ok && o.space == v.space
}

// Hash follows the identity of the wrapped space, so atoms naming the same
// space differently hash equally. Spaces without an ID all share one hash.
func (v *spaceValue) Hash() uint64 {
	sp, ok := v.space.(interface{ ID() uuid.UUID })
	if !ok {
		return 0
	}
	id := sp.ID()
	return xxhash.Sum64(id[:])
}

// MatchAtom answers other as a query against the space.
func (v *spaceValue) MatchAtom(other atom.Atom) iter.Seq[*matcher.Bindings] {
	return v.space.Query(other)
}

// AsSpace extracts the space wrapped by a grounded space atom.
func AsSpace(a atom.Atom) (Space, bool) {
	g, ok := a.(*atom.Grounded)
	if !ok {
		return nil, false
	}
	v, ok := g.Value().(*spaceValue)
	if !ok {
		return nil, false
	}
	return v.space, true
}
