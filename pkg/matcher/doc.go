// Package matcher implements unification of atoms and the Bindings
// substitution it produces.
//
// Matching is full unification: both the pattern and the candidate may carry
// unbound variables, so matching a rule head against a query binds variables
// on both sides. Results are produced lazily as an iter.Seq; an empty sequence
// means the atoms do not unify. Binding conflicts and occurs-check violations
// are not errors, they simply remove a branch.
//
//	for b := range matcher.Match(pattern, candidate) {
//	    fmt.Println(b.Resolve(template))
//	}
//
// Grounded values may override matching by implementing CustomMatcher.
package matcher
