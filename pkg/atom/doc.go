// Package atom provides the term representation shared by every other package
// of the runtime: symbols, variables, expressions and grounded atoms.
//
// # Variants
//
// An Atom is one of four variants:
//
//   - Symbol: an identifier compared by name
//   - Variable: a placeholder that matching may bind, printed with a "$" prefix
//   - Expression: an ordered list of child atoms, the only composite variant
//   - Grounded: an opaque Go value that may be executable
//
// Atoms are immutable once constructed. Rewriting always builds new atoms,
// which lets expressions share children freely. Atoms form trees, never
// graphs, so traversal, equality and hashing need no cycle detection.
//
// # Grounded values
//
// Any Go type becomes groundable by implementing Value. Optional capabilities
// are discovered with type assertions:
//
//   - Executable: the value can be called with arguments
//   - Equaler: the value defines its own equality
//   - Hasher: the value defines its own structural hash
//
// Number, Str and Bool are the built-in values produced by the parser for
// literals; Operation adapts a Go function into an executable value.
//
// # Basic Usage
//
//	rule := atom.Expr(atom.EqualSymbol,
//	    atom.Expr(atom.Sym("double"), atom.Var("x")),
//	    atom.Expr(atom.Sym("*"), atom.Var("x"), atom.Int(2)),
//	)
//	fmt.Println(rule) // (= (double $x) (* $x 2))
package atom
