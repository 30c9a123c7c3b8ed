package atom

import (
	"context"
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Value is the payload of a grounded atom.
type Value interface {
	// Type returns the declared type of the value. Returning nil is the same
	// as returning UndefinedType.
	Type() Atom

	// String returns the textual form used when printing the atom.
	String() string
}

// Executable is implemented by values that can be called. Execute receives the
// arguments of the call expression and returns the alternatives it produces.
// The returned sequence is consumed lazily by the interpreter.
type Executable interface {
	Execute(ctx context.Context, args []Atom) (iter.Seq[Atom], error)
}

// Equaler is implemented by values with their own notion of equality.
type Equaler interface {
	Equal(other Value) bool
}

// Hasher is implemented by values with their own structural hash. Values that
// are equal must hash equally.
type Hasher interface {
	Hash() uint64
}

// Results returns a sequence over the given atoms.
func Results(atoms ...Atom) iter.Seq[Atom] {
	return slices.Values(atoms)
}

// NoResults returns an empty sequence.
func NoResults() iter.Seq[Atom] {
	return func(func(Atom) bool) {}
}

// Number is an integer or floating point grounded value.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

// NewInt creates an integer number.
func NewInt(i int64) Number { return Number{i: i} }

// NewFloat creates a floating point number.
func NewFloat(f float64) Number { return Number{f: f, isFloat: true} }

// Int creates a grounded integer atom.
func Int(i int64) *Grounded { return Gnd(NewInt(i)) }

// Float creates a grounded floating point atom.
func Float(f float64) *Grounded { return Gnd(NewFloat(f)) }

// IsFloat reports whether the number holds a floating point value.
func (n Number) IsFloat() bool { return n.isFloat }

// Int64 returns the number truncated to an integer.
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns the number as a float.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// Type returns NumberType.
func (n Number) Type() Atom { return NumberType }

// String formats the number. Floats always carry a decimal point so that the
// text form parses back into a float.
func (n Number) String() string {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10)
	}
	s := strconv.FormatFloat(n.f, 'g', -1, 64)
	if math.IsInf(n.f, 0) || math.IsNaN(n.f) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

// Equal compares numbers by numeric value, so 2 equals 2.0.
func (n Number) Equal(other Value) bool {
	o, ok := other.(Number)
	if !ok {
		return false
	}
	if !n.isFloat && !o.isFloat {
		return n.i == o.i
	}
	return n.Float64() == o.Float64()
}

// Hash keeps integral floats and integers in the same bucket.
func (n Number) Hash() uint64 {
	f := n.Float64()
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return uint64(int64(f))
	}
	return math.Float64bits(f)
}

// AsNumber extracts a Number from a grounded atom.
func AsNumber(a Atom) (Number, bool) {
	g, ok := a.(*Grounded)
	if !ok {
		return Number{}, false
	}
	n, ok := g.value.(Number)
	return n, ok
}

// Str is a string grounded value.
type Str string

// Text creates a grounded string atom.
func Text(s string) *Grounded { return Gnd(Str(s)) }

// Type returns StringType.
func (s Str) Type() Atom { return StringType }

// String returns the quoted string.
func (s Str) String() string { return strconv.Quote(string(s)) }

// AsString extracts the Go string from a grounded string atom.
func AsString(a Atom) (string, bool) {
	g, ok := a.(*Grounded)
	if !ok {
		return "", false
	}
	s, ok := g.value.(Str)
	return string(s), ok
}

// Bool is a boolean grounded value printed as True or False.
type Bool bool

// Boolean creates a grounded boolean atom.
func Boolean(b bool) *Grounded { return Gnd(Bool(b)) }

// Type returns BoolType.
func (b Bool) Type() Atom { return BoolType }

// String returns "True" or "False".
func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}

// AsBool extracts the Go bool from a grounded boolean atom.
func AsBool(a Atom) (bool, bool) {
	g, ok := a.(*Grounded)
	if !ok {
		return false, false
	}
	b, ok := g.value.(Bool)
	return bool(b), ok
}

// OperationFunc is the Go implementation of an Operation.
type OperationFunc func(ctx context.Context, args []Atom) ([]Atom, error)

// Operation is a named executable value with a declared signature.
// Operations compare by identity.
type Operation struct {
	name string
	typ  Atom
	fn   func(ctx context.Context, args []Atom) (iter.Seq[Atom], error)
}

// NewOperation wraps fn into a grounded atom. typ is normally built with
// FuncType; nil means the signature is unknown and no checks are made.
func NewOperation(name string, typ Atom, fn OperationFunc) *Grounded {
	return Gnd(&Operation{
		name: name,
		typ:  typ,
		fn: func(ctx context.Context, args []Atom) (iter.Seq[Atom], error) {
			res, err := fn(ctx, args)
			if err != nil {
				return nil, err
			}
			return slices.Values(res), nil
		},
	})
}

// NewLazyOperation is like NewOperation for functions producing a lazy
// sequence of alternatives.
func NewLazyOperation(name string, typ Atom, fn func(ctx context.Context, args []Atom) (iter.Seq[Atom], error)) *Grounded {
	return Gnd(&Operation{name: name, typ: typ, fn: fn})
}

// Name returns the operation name.
func (o *Operation) Name() string { return o.name }

// Type returns the declared signature.
func (o *Operation) Type() Atom {
	if o.typ == nil {
		return UndefinedType
	}
	return o.typ
}

// String returns the operation name.
func (o *Operation) String() string { return o.name }

// Execute calls the wrapped function.
func (o *Operation) Execute(ctx context.Context, args []Atom) (iter.Seq[Atom], error) {
	return o.fn(ctx, args)
}
