package stdlib

import (
	"context"
	"iter"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/interpreter"
	"github.com/amebel/hyperon-experimental/pkg/matcher"
)

func (l *Library) registerNondeterminism() {
	// (superpose (a b c)) yields a, b and c as separate alternatives.
	l.lazyOperation("superpose", atom.FuncType(atom.AtomType, atom.UndefinedType),
		func(_ context.Context, args []atom.Atom) (iter.Seq[atom.Atom], error) {
			e, err := expressionArg(args[0])
			if err != nil {
				return nil, err
			}
			return atom.Results(e.Children()...), nil
		})

	// (collapse expr) evaluates expr and wraps all its results into one
	// expression.
	l.operation("collapse", atom.FuncType(atom.AtomType, atom.AtomType),
		func(ctx context.Context, args []atom.Atom) ([]atom.Atom, error) {
			var out []atom.Atom
			for r := range l.eval.Evaluate(ctx, l.spaceFor(ctx), args[0]) {
				out = append(out, r)
			}
			return single(atom.Expr(out...)), nil
		})

	l.operation("empty", atom.FuncType(atom.UndefinedType),
		func(context.Context, []atom.Atom) ([]atom.Atom, error) {
			return nil, nil
		})

	// (let pattern value template) instantiates template for every way
	// pattern unifies with the evaluated value.
	l.lazyOperation("let", atom.FuncType(atom.AtomType, atom.UndefinedType, atom.AtomType, atom.UndefinedType),
		func(_ context.Context, args []atom.Atom) (iter.Seq[atom.Atom], error) {
			pattern, value, template := args[0], args[1], args[2]
			return func(yield func(atom.Atom) bool) {
				for b := range matcher.Match(pattern, value) {
					if !yield(b.Resolve(template)) {
						return
					}
				}
			}, nil
		})

	// (let* ((p1 v1) (p2 v2) ...) template) nests let for each pair.
	l.operation("let*", atom.FuncType(atom.AtomType, atom.AtomType, atom.UndefinedType),
		func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			pairs, err := expressionArg(args[0])
			if err != nil {
				return nil, err
			}
			if pairs.Len() == 0 {
				return single(args[1]), nil
			}
			first, ok := pairs.Child(0).(*atom.Expression)
			if !ok || first.Len() != 2 {
				return nil, atom.NewExecError("let* expects (pattern value) pairs, got %s", pairs.Child(0))
			}
			letOp, _ := l.Operation("let")
			letStarOp, _ := l.Operation("let*")
			rest := atom.Expr(letStarOp, atom.Expr(pairs.Args()...), args[1])
			return single(atom.Expr(letOp, first.Child(0), first.Child(1), rest)), nil
		})

	// (get-type atom) yields every type known for atom.
	l.operation("get-type", atom.FuncType(atom.AtomType, atom.AtomType),
		func(ctx context.Context, args []atom.Atom) ([]atom.Atom, error) {
			return interpreter.TypesOf(l.spaceFor(ctx), args[0]), nil
		})
}
