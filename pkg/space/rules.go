package space

import "github.com/amebel/hyperon-experimental/pkg/atom"

// FunctionIndex is implemented by spaces that track which symbols their
// rules define functions for.
type FunctionIndex interface {
	DefinesFunction(head atom.Symbol) bool
}

// FunctionHead returns f when a is a rule of the form (= (f ...) body).
func FunctionHead(a atom.Atom) (atom.Symbol, bool) {
	rule, ok := a.(*atom.Expression)
	if !ok || rule.Len() != 3 || !atom.Equal(rule.Head(), atom.EqualSymbol) {
		return atom.Symbol{}, false
	}
	lhs, ok := rule.Child(1).(*atom.Expression)
	if !ok || lhs.Len() == 0 {
		return atom.Symbol{}, false
	}
	head, ok := lhs.Head().(atom.Symbol)
	return head, ok
}

// DefinesFunction reports whether sp holds a rule defining a function named
// head. Spaces without a FunctionIndex are scanned.
func DefinesFunction(sp Space, head atom.Symbol) bool {
	if idx, ok := sp.(FunctionIndex); ok {
		return idx.DefinesFunction(head)
	}
	for _, a := range sp.Atoms() {
		if h, ok := FunctionHead(a); ok && h == head {
			return true
		}
	}
	return false
}
