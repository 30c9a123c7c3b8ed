package atom

// Symbols with a fixed meaning for the runtime.
var (
	// EqualSymbol is the head of rewrite rules: (= pattern template).
	EqualSymbol = Sym("=")

	// HasTypeSymbol is the head of type declarations: (: atom type).
	HasTypeSymbol = Sym(":")

	// ArrowSymbol is the head of function types: (-> arg... result).
	ArrowSymbol = Sym("->")

	// ErrorSymbol is the head of error atoms: (Error atom reason).
	ErrorSymbol = Sym("Error")

	// VoidSymbol denotes the absence of a meaningful value.
	VoidSymbol = Sym("Void")

	// CommaSymbol joins sub-queries of a conjunctive query.
	CommaSymbol = Sym(",")
)

// Meta types and the types of the built-in grounded values.
var (
	TypeType       = Sym("Type")
	AtomType       = Sym("Atom")
	SymbolType     = Sym("Symbol")
	VariableType   = Sym("Variable")
	ExpressionType = Sym("Expression")
	GroundedType   = Sym("Grounded")
	UndefinedType  = Sym("%Undefined%")
	NumberType     = Sym("Number")
	StringType     = Sym("String")
	BoolType       = Sym("Bool")
)

// Unit returns the empty expression.
func Unit() *Expression {
	return &Expression{}
}

// FuncType builds a function type (-> params... result).
func FuncType(params ...Atom) *Expression {
	c := make([]Atom, 0, len(params)+1)
	c = append(c, ArrowSymbol)
	c = append(c, params...)
	return exprOwned(c)
}

// Signature splits a function type into parameter types and result type.
// ok is false when t is not of the form (-> params... result).
func Signature(t Atom) (params []Atom, result Atom, ok bool) {
	e, isExpr := t.(*Expression)
	if !isExpr || e.Len() < 2 || !Equal(e.children[0], ArrowSymbol) {
		return nil, nil, false
	}
	n := e.Len()
	params = make([]Atom, n-2)
	copy(params, e.children[1:n-1])
	return params, e.children[n-1], true
}

// IsMetaType reports whether t is one of the meta types naming an atom
// variant or Atom itself.
func IsMetaType(t Atom) bool {
	switch {
	case Equal(t, AtomType), Equal(t, SymbolType), Equal(t, VariableType),
		Equal(t, ExpressionType), Equal(t, GroundedType):
		return true
	}
	return false
}

// MatchesMetaType reports whether a belongs to the meta type t.
func MatchesMetaType(a Atom, t Atom) bool {
	switch {
	case Equal(t, AtomType):
		return true
	case Equal(t, SymbolType):
		return a.Kind() == KindSymbol
	case Equal(t, VariableType):
		return a.Kind() == KindVariable
	case Equal(t, ExpressionType):
		return a.Kind() == KindExpression
	case Equal(t, GroundedType):
		return a.Kind() == KindGrounded
	}
	return false
}
