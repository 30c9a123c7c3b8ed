package atom

import (
	"reflect"
	"strings"
)

// Kind identifies the variant of an Atom.
type Kind int

const (
	// KindSymbol is the kind of Symbol atoms.
	KindSymbol Kind = iota
	// KindVariable is the kind of Variable atoms.
	KindVariable
	// KindExpression is the kind of Expression atoms.
	KindExpression
	// KindGrounded is the kind of Grounded atoms.
	KindGrounded
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSymbol:
		return "Symbol"
	case KindVariable:
		return "Variable"
	case KindExpression:
		return "Expression"
	case KindGrounded:
		return "Grounded"
	default:
		return "Unknown"
	}
}

// Atom is the universal term type. The set of implementations is closed:
// Symbol, Variable, *Expression and *Grounded.
type Atom interface {
	// Kind returns the variant of the atom.
	Kind() Kind

	// String returns the textual form of the atom.
	String() string

	atom()
}

// Symbol is an identifier. Two symbols are equal iff their names are equal.
type Symbol struct {
	name string
}

// Sym creates a symbol atom.
func Sym(name string) Symbol {
	return Symbol{name: name}
}

// Name returns the symbol name.
func (s Symbol) Name() string { return s.name }

// Kind returns KindSymbol.
func (s Symbol) Kind() Kind { return KindSymbol }

// String returns the symbol name.
func (s Symbol) String() string { return s.name }

func (Symbol) atom() {}

// Variable is a placeholder that can be bound by matching. Variables are
// compared by name.
type Variable struct {
	name string
}

// Var creates a variable atom. The name is given without the "$" prefix.
func Var(name string) Variable {
	return Variable{name: name}
}

// Name returns the variable name without the "$" prefix.
func (v Variable) Name() string { return v.name }

// Kind returns KindVariable.
func (v Variable) Kind() Kind { return KindVariable }

// String returns the variable name prefixed with "$".
func (v Variable) String() string { return "$" + v.name }

func (Variable) atom() {}

// Expression is an ordered sequence of atoms. The children slice is owned by
// the expression and never modified after construction.
type Expression struct {
	children []Atom
}

// Expr creates an expression from the given children. The slice is copied.
func Expr(children ...Atom) *Expression {
	c := make([]Atom, len(children))
	copy(c, children)
	return &Expression{children: c}
}

// exprOwned wraps children without copying. Callers must not retain the slice.
func exprOwned(children []Atom) *Expression {
	return &Expression{children: children}
}

// Len returns the number of children.
func (e *Expression) Len() int { return len(e.children) }

// Child returns the i-th child.
func (e *Expression) Child(i int) Atom { return e.children[i] }

// Children returns a copy of the children.
func (e *Expression) Children() []Atom {
	c := make([]Atom, len(e.children))
	copy(c, e.children)
	return c
}

// Head returns the first child, or nil for the empty expression.
func (e *Expression) Head() Atom {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// Args returns a copy of every child after the head.
func (e *Expression) Args() []Atom {
	if len(e.children) < 2 {
		return nil
	}
	c := make([]Atom, len(e.children)-1)
	copy(c, e.children[1:])
	return c
}

// Kind returns KindExpression.
func (e *Expression) Kind() Kind { return KindExpression }

// String returns the parenthesized textual form.
func (e *Expression) String() string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e *Expression) {
	b.WriteByte('(')
	for i, c := range e.children {
		if i > 0 {
			b.WriteByte(' ')
		}
		if sub, ok := c.(*Expression); ok {
			writeExpr(b, sub)
			continue
		}
		b.WriteString(c.String())
	}
	b.WriteByte(')')
}

func (*Expression) atom() {}

// Grounded wraps a Go value so it can take part in expressions.
type Grounded struct {
	value Value
}

// Gnd creates a grounded atom around a value.
func Gnd(v Value) *Grounded {
	return &Grounded{value: v}
}

// Value returns the wrapped value.
func (g *Grounded) Value() Value { return g.value }

// Type returns the declared type of the wrapped value.
func (g *Grounded) Type() Atom {
	t := g.value.Type()
	if t == nil {
		return UndefinedType
	}
	return t
}

// Executable returns the execution capability of the wrapped value, if any.
func (g *Grounded) Executable() (Executable, bool) {
	ex, ok := g.value.(Executable)
	return ex, ok
}

// Kind returns KindGrounded.
func (g *Grounded) Kind() Kind { return KindGrounded }

// String returns the textual form of the wrapped value.
func (g *Grounded) String() string { return g.value.String() }

func (*Grounded) atom() {}

// Equal reports whether two atoms are structurally equal. Grounded atoms are
// compared by the equality of their payloads.
func Equal(a, b Atom) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Symbol:
		y, ok := b.(Symbol)
		return ok && x.name == y.name
	case Variable:
		y, ok := b.(Variable)
		return ok && x.name == y.name
	case *Expression:
		y, ok := b.(*Expression)
		if !ok || len(x.children) != len(y.children) {
			return false
		}
		for i := range x.children {
			if !Equal(x.children[i], y.children[i]) {
				return false
			}
		}
		return true
	case *Grounded:
		y, ok := b.(*Grounded)
		if !ok {
			return false
		}
		return x == y || ValuesEqual(x.value, y.value)
	}
	return false
}

// ValuesEqual compares two grounded payloads. Values implementing Equaler
// decide for themselves; otherwise comparable values are compared with ==
// and anything else is only equal to itself through the atom pointer.
func ValuesEqual(a, b Value) bool {
	if eq, ok := a.(Equaler); ok {
		return eq.Equal(b)
	}
	if eq, ok := b.(Equaler); ok {
		return eq.Equal(a)
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// IsSymbol reports whether a is the symbol with the given name.
func IsSymbol(a Atom, name string) bool {
	s, ok := a.(Symbol)
	return ok && s.name == name
}

// AsExpression returns a as an expression if it is one.
func AsExpression(a Atom) (*Expression, bool) {
	e, ok := a.(*Expression)
	return e, ok
}
