// Package runner executes MeTTa programs.
//
// A program is a sequence of atoms. Each atom is added to the runner's
// space, except atoms following the "!" symbol, which are evaluated instead:
//
//	(= (double $x) (* $x 2))
//	!(double 21)
//
// Run returns one result list per evaluated atom, in program order. The
// token &self refers to the runner's space and (import! &self file) runs
// another file into it, resolving file against the directory of the
// importing program.
//
// Grounded atoms are made available to programs by registering tokens:
//
//	r.AddAtom("inc", atom.NewOperation("inc", typ, fn))
package runner
