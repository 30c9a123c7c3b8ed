package matcher

import (
	"iter"

	"github.com/amebel/hyperon-experimental/pkg/atom"
)

// CustomMatcher is implemented by grounded values that take over matching
// against other atoms, for example a space that answers a pattern with the
// results of a query. The returned bindings are merged with the bindings of
// the surrounding unification.
type CustomMatcher interface {
	MatchAtom(other atom.Atom) iter.Seq[*Bindings]
}

// Match unifies pattern with candidate and yields every resulting
// substitution. Variables on either side may be bound. No results means the
// atoms do not unify.
func Match(pattern, candidate atom.Atom) iter.Seq[*Bindings] {
	return MatchWith(pattern, candidate, nil)
}

// MatchWith unifies pattern with candidate under existing bindings.
func MatchWith(pattern, candidate atom.Atom, b *Bindings) iter.Seq[*Bindings] {
	return func(yield func(*Bindings) bool) {
		if b == nil {
			b = NewBindings()
		}
		unify(pattern, candidate, b, yield)
	}
}

// Matches reports whether pattern and candidate unify at least once.
func Matches(pattern, candidate atom.Atom) bool {
	for range Match(pattern, candidate) {
		return true
	}
	return false
}

// unify is written in continuation-passing style: k receives each
// unification in turn and returns false to stop. unify returns false when k
// asked to stop.
func unify(a, b atom.Atom, bnd *Bindings, k func(*Bindings) bool) bool {
	a = bnd.deref(a)
	b = bnd.deref(b)

	if av, ok := a.(atom.Variable); ok {
		nb, ok := bnd.bind(av, b)
		if !ok {
			return true
		}
		return k(nb)
	}
	if bv, ok := b.(atom.Variable); ok {
		nb, ok := bnd.bind(bv, a)
		if !ok {
			return true
		}
		return k(nb)
	}

	if a.Kind() == atom.KindGrounded && atom.Equal(a, b) {
		return k(bnd)
	}
	if cm, ok := customMatcher(a); ok {
		return unifyCustom(cm, b, bnd, k)
	}
	if cm, ok := customMatcher(b); ok {
		return unifyCustom(cm, a, bnd, k)
	}

	switch x := a.(type) {
	case atom.Symbol:
		if y, ok := b.(atom.Symbol); ok && x == y {
			return k(bnd)
		}
	case *atom.Expression:
		y, ok := b.(*atom.Expression)
		if !ok || x.Len() != y.Len() {
			return true
		}
		return unifyChildren(x, y, 0, bnd, k)
	case *atom.Grounded:
		if atom.Equal(x, b) {
			return k(bnd)
		}
	}
	return true
}

func unifyChildren(x, y *atom.Expression, i int, bnd *Bindings, k func(*Bindings) bool) bool {
	if i == x.Len() {
		return k(bnd)
	}
	return unify(x.Child(i), y.Child(i), bnd, func(nb *Bindings) bool {
		return unifyChildren(x, y, i+1, nb, k)
	})
}

func unifyCustom(cm CustomMatcher, other atom.Atom, bnd *Bindings, k func(*Bindings) bool) bool {
	for found := range cm.MatchAtom(bnd.Resolve(other)) {
		for merged := range MergeAll(bnd, found) {
			if !k(merged) {
				return false
			}
		}
	}
	return true
}

func customMatcher(a atom.Atom) (CustomMatcher, bool) {
	g, ok := a.(*atom.Grounded)
	if !ok {
		return nil, false
	}
	cm, ok := g.Value().(CustomMatcher)
	return cm, ok
}
