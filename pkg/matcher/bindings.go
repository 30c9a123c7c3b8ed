package matcher

import (
	"iter"
	"slices"
	"strings"

	"github.com/amebel/hyperon-experimental/pkg/atom"
)

// Bindings is a substitution from variables to atoms. A variable may be bound
// to another variable; lookups follow such links transitively.
//
// Bindings are persistent: operations that add information return a new value
// and leave the receiver untouched, so branches may share them. A nil
// *Bindings is a valid empty substitution.
type Bindings struct {
	vars map[atom.Variable]atom.Atom
}

// NewBindings returns an empty substitution.
func NewBindings() *Bindings {
	return &Bindings{}
}

// Len returns the number of bound variables, including variable links.
func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.vars)
}

// IsEmpty reports whether no variable is bound.
func (b *Bindings) IsEmpty() bool {
	return b.Len() == 0
}

// walk follows variable links starting at v. It returns either the unbound
// root variable or the first non-variable value.
func (b *Bindings) walk(v atom.Variable) atom.Atom {
	if b == nil {
		return v
	}
	var cur atom.Atom = v
	for {
		cv, ok := cur.(atom.Variable)
		if !ok {
			return cur
		}
		next, bound := b.vars[cv]
		if !bound {
			return cv
		}
		cur = next
	}
}

// deref resolves a top-level variable without descending into expressions.
func (b *Bindings) deref(a atom.Atom) atom.Atom {
	if v, ok := a.(atom.Variable); ok {
		return b.walk(v)
	}
	return a
}

// Lookup returns the fully resolved value of v. ok is false when v is unbound
// or only linked to other unbound variables.
func (b *Bindings) Lookup(v atom.Variable) (atom.Atom, bool) {
	r := b.walk(v)
	if r.Kind() == atom.KindVariable {
		if r == atom.Atom(v) {
			return nil, false
		}
		return r, true
	}
	return b.Resolve(r), true
}

// Resolve substitutes every bound variable in a, recursively.
func (b *Bindings) Resolve(a atom.Atom) atom.Atom {
	if b.IsEmpty() {
		return a
	}
	return atom.Transform(a, func(x atom.Atom) atom.Atom {
		v, ok := x.(atom.Variable)
		if !ok {
			return x
		}
		r := b.walk(v)
		if r.Kind() == atom.KindVariable {
			return r
		}
		return b.Resolve(r)
	})
}

// with returns a copy of b extended with v bound to a.
func (b *Bindings) with(v atom.Variable, a atom.Atom) *Bindings {
	n := make(map[atom.Variable]atom.Atom, b.Len()+1)
	if b != nil {
		for k, val := range b.vars {
			n[k] = val
		}
	}
	n[v] = a
	return &Bindings{vars: n}
}

// bind binds the unbound root variable v to a. The occurs check rejects
// bindings that would make v refer to itself. When two variables are linked,
// a fresh variable points to the other one, so variables of the caller stay
// the representatives of their class.
func (b *Bindings) bind(v atom.Variable, a atom.Atom) (*Bindings, bool) {
	if av, ok := a.(atom.Variable); ok {
		r := b.walk(av)
		if r == atom.Atom(v) {
			return b, true
		}
		if rv, isVar := r.(atom.Variable); isVar {
			if isFresh(rv) && !isFresh(v) {
				return b.with(rv, v), true
			}
			return b.with(v, rv), true
		}
		a = r
	}
	if atom.ContainsVariable(b.Resolve(a), v) {
		return nil, false
	}
	return b.with(v, a), true
}

// Add binds v to a, unifying with any value v already has. ok is false when
// the new binding conflicts with the existing ones.
func (b *Bindings) Add(v atom.Variable, a atom.Atom) (*Bindings, bool) {
	var out *Bindings
	unify(v, a, b, func(nb *Bindings) bool {
		out = nb
		return false
	})
	return out, out != nil
}

// Merge combines two substitutions. Variables bound in both must unify;
// otherwise ok is false. The inputs are not modified.
func Merge(a, b *Bindings) (*Bindings, bool) {
	for m := range MergeAll(a, b) {
		return m, true
	}
	return nil, false
}

// MergeAll yields every consistent combination of two substitutions. More than
// one result is only possible when grounded atoms with custom matching are
// involved.
func MergeAll(a, b *Bindings) iter.Seq[*Bindings] {
	return func(yield func(*Bindings) bool) {
		if b.IsEmpty() {
			if a == nil {
				a = NewBindings()
			}
			yield(a)
			return
		}
		keys := b.sortedKeys()
		var step func(i int, acc *Bindings) bool
		step = func(i int, acc *Bindings) bool {
			if i == len(keys) {
				return yield(acc)
			}
			v := keys[i]
			return unify(v, b.vars[v], acc, func(nb *Bindings) bool {
				return step(i+1, nb)
			})
		}
		if a == nil {
			a = NewBindings()
		}
		step(0, a)
	}
}

// Filter returns bindings restricted to vars, with values fully resolved.
func (b *Bindings) Filter(vars []atom.Variable) *Bindings {
	out := NewBindings()
	for _, v := range vars {
		val, ok := b.Lookup(v)
		if !ok {
			continue
		}
		if out.vars == nil {
			out.vars = make(map[atom.Variable]atom.Atom, len(vars))
		}
		out.vars[v] = val
	}
	return out
}

// All yields every bound variable with its resolved value, ordered by name.
func (b *Bindings) All() iter.Seq2[atom.Variable, atom.Atom] {
	return func(yield func(atom.Variable, atom.Atom) bool) {
		for _, v := range b.sortedKeys() {
			val, _ := b.Lookup(v)
			if !yield(v, val) {
				return
			}
		}
	}
}

// Equal reports whether both substitutions resolve every variable they
// mention to equal atoms.
func (b *Bindings) Equal(other *Bindings) bool {
	check := func(x, y *Bindings) bool {
		for _, v := range x.sortedKeys() {
			xv, xok := x.Lookup(v)
			yv, yok := y.Lookup(v)
			if xok != yok || (xok && !atom.Equal(xv, yv)) {
				return false
			}
		}
		return true
	}
	return check(b, other) && check(other, b)
}

// String formats the bindings as { $x <- a, $y <- b }.
func (b *Bindings) String() string {
	if b.IsEmpty() {
		return "{ }"
	}
	var sb strings.Builder
	sb.WriteString("{ ")
	first := true
	for v, val := range b.All() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(v.String())
		sb.WriteString(" <- ")
		sb.WriteString(val.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

func (b *Bindings) sortedKeys() []atom.Variable {
	if b == nil {
		return nil
	}
	keys := make([]atom.Variable, 0, len(b.vars))
	for k := range b.vars {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(x, y atom.Variable) int {
		return strings.Compare(x.Name(), y.Name())
	})
	return keys
}

// Apply substitutes the bindings into a. It is shorthand for b.Resolve(a).
func Apply(b *Bindings, a atom.Atom) atom.Atom {
	return b.Resolve(a)
}
