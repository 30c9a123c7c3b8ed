package interpreter

import (
	"errors"

	"github.com/amebel/hyperon-experimental/pkg/atom"
)

// ErrInvalidConfig indicates invalid interpreter configuration.
var ErrInvalidConfig = errors.New("invalid interpreter configuration")

// Reasons carried by error atoms produced by the interpreter itself.
var (
	// StepBudgetExhausted is the reason of the error atom ending an
	// evaluation that ran out of steps.
	StepBudgetExhausted = atom.Sym("StepBudgetExhausted")

	// DepthBudgetExhausted is the reason of the error atom ending a branch
	// that nested too deeply.
	DepthBudgetExhausted = atom.Sym("DepthBudgetExhausted")

	// IncorrectNumberOfArguments is the reason used when a grounded call does
	// not match the arity of its signature.
	IncorrectNumberOfArguments = atom.Sym("IncorrectNumberOfArguments")

	// BadArgType heads the reason used when an argument does not match the
	// declared parameter type: (BadArgType position expected actual).
	BadArgType = atom.Sym("BadArgType")
)

func badArgType(pos int, expected, actual atom.Atom) atom.Atom {
	return atom.Expr(BadArgType, atom.Int(int64(pos)), expected, actual)
}
