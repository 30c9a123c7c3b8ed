package space

import (
	"iter"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/matcher"
)

// Query matches pattern against the content of the space. A pattern of the
// form (, q1 q2 ...) is a conjunction: each sub-query is matched with the
// bindings of the previous ones applied. Results are restricted to the
// variables of the pattern.
func (s *GroundingSpace) Query(pattern atom.Atom) iter.Seq[*matcher.Bindings] {
	content := s.snapshot()
	vars := atom.Variables(pattern)

	return func(yield func(*matcher.Bindings) bool) {
		if subs, ok := conjunction(pattern); ok {
			queryAll(content, subs, matcher.NewBindings(), func(b *matcher.Bindings) bool {
				return yield(b.Filter(vars))
			})
			return
		}
		querySingle(content, pattern, nil, func(b *matcher.Bindings) bool {
			return yield(b.Filter(vars))
		})
	}
}

// Subst queries pattern and instantiates template with every result.
func (s *GroundingSpace) Subst(pattern, template atom.Atom) []atom.Atom {
	var out []atom.Atom
	for b := range s.Query(pattern) {
		out = append(out, b.Resolve(template))
	}
	return out
}

func conjunction(pattern atom.Atom) ([]atom.Atom, bool) {
	e, ok := pattern.(*atom.Expression)
	if !ok || e.Len() == 0 || !atom.Equal(e.Head(), atom.CommaSymbol) {
		return nil, false
	}
	return e.Args(), true
}

func queryAll(content []atom.Atom, subs []atom.Atom, acc *matcher.Bindings, yield func(*matcher.Bindings) bool) bool {
	if len(subs) == 0 {
		return yield(acc)
	}
	q := acc.Resolve(subs[0])
	return querySingle(content, q, acc, func(b *matcher.Bindings) bool {
		return queryAll(content, subs[1:], b, yield)
	})
}

// querySingle returns false when yield asked to stop.
func querySingle(content []atom.Atom, pattern atom.Atom, acc *matcher.Bindings, yield func(*matcher.Bindings) bool) bool {
	for _, stored := range content {
		if !mayMatch(stored, pattern) {
			continue
		}
		if !atom.IsGround(stored) {
			stored = matcher.MakeVariablesUnique(stored)
		}
		for b := range matcher.MatchWith(stored, pattern, acc) {
			if !yield(b) {
				return false
			}
		}
	}
	return true
}

// mayMatch is a cheap structural pre-filter that rejects atoms which can
// obviously not unify with the pattern.
func mayMatch(stored, pattern atom.Atom) bool {
	if stored.Kind() == atom.KindVariable || pattern.Kind() == atom.KindVariable {
		return true
	}
	if stored.Kind() == atom.KindGrounded || pattern.Kind() == atom.KindGrounded {
		return true
	}
	if stored.Kind() != pattern.Kind() {
		return false
	}
	switch p := pattern.(type) {
	case atom.Symbol:
		return p == stored.(atom.Symbol)
	case *atom.Expression:
		se := stored.(*atom.Expression)
		if se.Len() != p.Len() {
			return false
		}
		if p.Len() == 0 {
			return true
		}
		ph, pok := p.Head().(atom.Symbol)
		sh, sok := se.Head().(atom.Symbol)
		return !pok || !sok || ph == sh
	}
	return true
}
