package stdlib

import (
	"strconv"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/sexpr"
)

// Token patterns of the literal values.
const (
	IntPattern   = `-?\d+`
	FloatPattern = `-?\d+\.\d+(?:[eE][-+]?\d+)?|-?\d+[eE][-+]?\d+`
	BoolPattern  = `True|False`
)

// RegisterLiterals teaches tok to read integers, floats and booleans.
func RegisterLiterals(tok *sexpr.Tokenizer) {
	tok.MustRegister(IntPattern, func(s string) (atom.Atom, error) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return atom.Int(n), nil
	})
	tok.MustRegister(FloatPattern, func(s string) (atom.Atom, error) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return atom.Float(f), nil
	})
	tok.MustRegister(BoolPattern, func(s string) (atom.Atom, error) {
		return atom.Boolean(s == "True"), nil
	})
}
