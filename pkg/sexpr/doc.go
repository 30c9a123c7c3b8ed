// Package sexpr reads atoms from their textual S-expression form.
//
// The text form is the one produced by the String method of atoms, so
// printing an atom and parsing it back with a tokenizer that knows its
// grounded atoms yields an equal atom.
//
//	tok := sexpr.NewTokenizer()
//	tok.MustRegister(`-?\d+`, func(s string) (atom.Atom, error) {
//	    n, err := strconv.ParseInt(s, 10, 64)
//	    return atom.Int(n), err
//	})
//	atoms, err := sexpr.NewParser(tok).ParseAll(`(= (double $x) (* $x 2)) !(double 21)`)
package sexpr
