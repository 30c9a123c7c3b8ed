package interpreter

import (
	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/matcher"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

// TypesOf returns the types of a. Grounded atoms have the type of their
// value. Other atoms have the types declared by (: a T) atoms in sp, plus the
// result type of their head when it is a function of matching arity. An atom
// with no known type is %Undefined%.
func TypesOf(sp space.Space, a atom.Atom) []atom.Atom {
	switch x := a.(type) {
	case *atom.Grounded:
		return []atom.Atom{x.Type()}
	case atom.Variable:
		return []atom.Atom{atom.UndefinedType}
	}

	var out []atom.Atom
	t := matcher.FreshVariable(atom.Var("type"))
	for b := range sp.Query(atom.Expr(atom.HasTypeSymbol, a, t)) {
		if v, ok := b.Lookup(t); ok {
			out = appendUnique(out, v)
		}
	}

	if e, ok := a.(*atom.Expression); ok && e.Len() > 0 {
		for _, ft := range TypesOf(sp, e.Head()) {
			params, result, ok := atom.Signature(ft)
			if ok && len(params) == e.Len()-1 {
				out = appendUnique(out, result)
			}
		}
	}

	if len(out) == 0 {
		return []atom.Atom{atom.UndefinedType}
	}
	return out
}

// typeMatches reports whether a may be passed where t is expected.
func typeMatches(sp space.Space, a, t atom.Atom) bool {
	if t == nil || t.Kind() == atom.KindVariable || atom.Equal(t, atom.UndefinedType) {
		return true
	}
	if atom.IsMetaType(t) {
		return atom.MatchesMetaType(a, t)
	}
	if a.Kind() == atom.KindVariable {
		return true
	}
	for _, at := range TypesOf(sp, a) {
		if atom.Equal(at, atom.UndefinedType) || matcher.Matches(at, t) {
			return true
		}
	}
	return false
}

// actualType picks the type reported in a BadArgType reason.
func actualType(sp space.Space, a atom.Atom) atom.Atom {
	types := TypesOf(sp, a)
	return types[0]
}

func appendUnique(list []atom.Atom, a atom.Atom) []atom.Atom {
	for _, x := range list {
		if atom.Equal(x, a) {
			return list
		}
	}
	return append(list, a)
}
