package stdlib

import (
	"context"
	"math"

	"github.com/amebel/hyperon-experimental/pkg/atom"
)

var (
	numBinary = atom.FuncType(atom.NumberType, atom.NumberType, atom.NumberType)
	numCmp    = atom.FuncType(atom.NumberType, atom.NumberType, atom.BoolType)
	boolBin   = atom.FuncType(atom.BoolType, atom.BoolType, atom.BoolType)
)

func numbers(args []atom.Atom) (atom.Number, atom.Number, error) {
	x, ok := atom.AsNumber(args[0])
	if !ok {
		return atom.Number{}, atom.Number{}, atom.NewExecError("expected a number, got %s", args[0])
	}
	y, ok := atom.AsNumber(args[1])
	if !ok {
		return atom.Number{}, atom.Number{}, atom.NewExecError("expected a number, got %s", args[1])
	}
	return x, y, nil
}

// arithmetic registers an operation computing on integers when both operands
// are integers and on floats otherwise.
func (l *Library) arithmetic(name string, ints func(x, y int64) (atom.Number, error), floats func(x, y float64) (atom.Number, error)) {
	l.operation(name, numBinary, func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
		x, y, err := numbers(args)
		if err != nil {
			return nil, err
		}
		var n atom.Number
		if !x.IsFloat() && !y.IsFloat() && ints != nil {
			n, err = ints(x.Int64(), y.Int64())
		} else {
			n, err = floats(x.Float64(), y.Float64())
		}
		if err != nil {
			return nil, err
		}
		return single(atom.Gnd(n)), nil
	})
}

func errOverflow(op string, x, y int64) error {
	return atom.NewExecError("integer overflow in (%s %d %d)", op, x, y)
}

func (l *Library) comparison(name string, cmp func(x, y atom.Number) bool) {
	l.operation(name, numCmp, func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
		x, y, err := numbers(args)
		if err != nil {
			return nil, err
		}
		return single(atom.Boolean(cmp(x, y))), nil
	})
}

func less(x, y atom.Number) bool {
	if !x.IsFloat() && !y.IsFloat() {
		return x.Int64() < y.Int64()
	}
	return x.Float64() < y.Float64()
}

func (l *Library) registerArithmetic() {
	l.arithmetic("+",
		func(x, y int64) (atom.Number, error) {
			r := x + y
			if (x^r)&(y^r) < 0 {
				return atom.Number{}, errOverflow("+", x, y)
			}
			return atom.NewInt(r), nil
		},
		func(x, y float64) (atom.Number, error) { return atom.NewFloat(x + y), nil })
	l.arithmetic("-",
		func(x, y int64) (atom.Number, error) {
			r := x - y
			if (x^y)&(x^r) < 0 {
				return atom.Number{}, errOverflow("-", x, y)
			}
			return atom.NewInt(r), nil
		},
		func(x, y float64) (atom.Number, error) { return atom.NewFloat(x - y), nil })
	l.arithmetic("*",
		func(x, y int64) (atom.Number, error) {
			r := x * y
			if x != 0 && (r/x != y || (x == -1 && y == math.MinInt64)) {
				return atom.Number{}, errOverflow("*", x, y)
			}
			return atom.NewInt(r), nil
		},
		func(x, y float64) (atom.Number, error) { return atom.NewFloat(x * y), nil })
	// Division always produces a float.
	l.arithmetic("/", nil, func(x, y float64) (atom.Number, error) {
		if y == 0 {
			return atom.Number{}, atom.NewExecError("division by zero")
		}
		return atom.NewFloat(x / y), nil
	})
	l.arithmetic("%",
		func(x, y int64) (atom.Number, error) {
			if y == 0 {
				return atom.Number{}, atom.NewExecError("division by zero")
			}
			return atom.NewInt(x % y), nil
		},
		func(x, y float64) (atom.Number, error) {
			if y == 0 {
				return atom.Number{}, atom.NewExecError("division by zero")
			}
			return atom.NewFloat(math.Mod(x, y)), nil
		})

	l.comparison("<", less)
	l.comparison(">", func(x, y atom.Number) bool { return less(y, x) })
	l.comparison("<=", func(x, y atom.Number) bool { return !less(y, x) })
	l.comparison(">=", func(x, y atom.Number) bool { return !less(x, y) })
}

func (l *Library) registerLogic() {
	t := atom.Var("t")
	l.operation("==", atom.FuncType(t, t, atom.BoolType), func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
		return single(atom.Boolean(atom.Equal(args[0], args[1]))), nil
	})

	logic := func(name string, fn func(x, y bool) bool) {
		l.operation(name, boolBin, func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			x, ok := atom.AsBool(args[0])
			if !ok {
				return nil, atom.NewExecError("expected a boolean, got %s", args[0])
			}
			y, ok := atom.AsBool(args[1])
			if !ok {
				return nil, atom.NewExecError("expected a boolean, got %s", args[1])
			}
			return single(atom.Boolean(fn(x, y))), nil
		})
	}
	logic("and", func(x, y bool) bool { return x && y })
	logic("or", func(x, y bool) bool { return x || y })

	l.operation("not", atom.FuncType(atom.BoolType, atom.BoolType), func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
		x, ok := atom.AsBool(args[0])
		if !ok {
			return nil, atom.NewExecError("expected a boolean, got %s", args[0])
		}
		return single(atom.Boolean(!x)), nil
	})

	l.operation("if", atom.FuncType(atom.BoolType, atom.AtomType, atom.AtomType, atom.UndefinedType),
		func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			cond, ok := atom.AsBool(args[0])
			if !ok {
				return nil, atom.NewExecError("expected a boolean condition, got %s", args[0])
			}
			if cond {
				return single(args[1]), nil
			}
			return single(args[2]), nil
		})
}
