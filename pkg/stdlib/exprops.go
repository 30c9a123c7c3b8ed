package stdlib

import (
	"context"
	"fmt"

	"github.com/amebel/hyperon-experimental/pkg/atom"
)

func (l *Library) registerExpressionOps() {
	l.operation("car-atom", atom.FuncType(atom.ExpressionType, atom.AtomType),
		func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			e, err := expressionArg(args[0])
			if err != nil {
				return nil, err
			}
			if e.Len() == 0 {
				return nil, atom.NewExecError("car-atom of an empty expression")
			}
			return single(e.Head()), nil
		})

	l.operation("cdr-atom", atom.FuncType(atom.ExpressionType, atom.AtomType),
		func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			e, err := expressionArg(args[0])
			if err != nil {
				return nil, err
			}
			if e.Len() == 0 {
				return nil, atom.NewExecError("cdr-atom of an empty expression")
			}
			return single(atom.Expr(e.Args()...)), nil
		})

	l.operation("cons-atom", atom.FuncType(atom.AtomType, atom.ExpressionType, atom.AtomType),
		func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			tail, err := expressionArg(args[1])
			if err != nil {
				return nil, err
			}
			return single(atom.Expr(append([]atom.Atom{args[0]}, tail.Children()...)...)), nil
		})
}

func (l *Library) registerIO() {
	l.operation("println!", atom.FuncType(atom.UndefinedType, atom.Unit()),
		func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			text := args[0].String()
			if s, ok := atom.AsString(args[0]); ok {
				text = s
			}
			if _, err := fmt.Fprintln(l.out, text); err != nil {
				return nil, &atom.ExecError{Message: "println! failed", Cause: err}
			}
			return single(atom.Unit()), nil
		})
}
