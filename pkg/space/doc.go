// Package space provides the atom container queried by the interpreter.
//
// A space is a multiset of atoms kept in insertion order. Query matches a
// pattern against every atom present at the moment Query is called and yields
// the resulting bindings lazily, so a caller may add or remove atoms while it
// is still consuming results without disturbing the iteration.
//
// # Queries
//
//	sp := space.NewGroundingSpace(logger)
//	sp.Add(atom.Expr(atom.Sym("parent"), atom.Sym("Tom"), atom.Sym("Bob")))
//	sp.Add(atom.Expr(atom.Sym("parent"), atom.Sym("Bob"), atom.Sym("Ann")))
//
//	// Conjunctive query: grandparents of Ann.
//	q := atom.Expr(atom.CommaSymbol,
//	    atom.Expr(atom.Sym("parent"), atom.Var("x"), atom.Var("y")),
//	    atom.Expr(atom.Sym("parent"), atom.Var("y"), atom.Sym("Ann")),
//	)
//	for b := range sp.Query(q) {
//	    fmt.Println(b) // { $x <- Tom, $y <- Bob }
//	}
//
// # Thread Safety
//
// GroundingSpace serializes Add, Remove and Replace with a mutex. Queries take
// a snapshot under a read lock and never hold it while yielding.
package space
