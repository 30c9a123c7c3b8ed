package atom

// Walk visits a and its descendants in pre-order. Children of an expression
// are skipped when fn returns false for it.
func Walk(a Atom, fn func(Atom) bool) {
	if !fn(a) {
		return
	}
	if e, ok := a.(*Expression); ok {
		for _, c := range e.children {
			Walk(c, fn)
		}
	}
}

// Variables returns the distinct variables of a in order of first occurrence.
func Variables(a Atom) []Variable {
	var vars []Variable
	seen := make(map[Variable]struct{})
	Walk(a, func(x Atom) bool {
		if v, ok := x.(Variable); ok {
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				vars = append(vars, v)
			}
		}
		return true
	})
	return vars
}

// ContainsVariable reports whether v occurs anywhere in a.
func ContainsVariable(a Atom, v Variable) bool {
	switch x := a.(type) {
	case Variable:
		return x == v
	case *Expression:
		for _, c := range x.children {
			if ContainsVariable(c, v) {
				return true
			}
		}
	}
	return false
}

// IsGround reports whether a contains no variables.
func IsGround(a Atom) bool {
	ground := true
	Walk(a, func(x Atom) bool {
		if x.Kind() == KindVariable {
			ground = false
		}
		return ground
	})
	return ground
}

// Transform rebuilds a by applying fn to every non-expression atom. Subtrees
// that fn leaves untouched are shared with the original.
func Transform(a Atom, fn func(Atom) Atom) Atom {
	e, ok := a.(*Expression)
	if !ok {
		return fn(a)
	}
	var out []Atom
	for i, c := range e.children {
		nc := Transform(c, fn)
		if out == nil && nc != c {
			out = make([]Atom, len(e.children))
			copy(out, e.children[:i])
		}
		if out != nil {
			out[i] = nc
		}
	}
	if out == nil {
		return e
	}
	return exprOwned(out)
}
