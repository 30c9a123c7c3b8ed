package stdlib

import (
	"context"
	"iter"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

func (l *Library) registerSpaceOps() {
	// (match space pattern template) instantiates template for every atom
	// of the space matching pattern.
	l.lazyOperation("match", atom.FuncType(space.SpaceType, atom.AtomType, atom.AtomType, atom.UndefinedType),
		func(_ context.Context, args []atom.Atom) (iter.Seq[atom.Atom], error) {
			sp, err := spaceArg(args[0])
			if err != nil {
				return nil, err
			}
			pattern, template := args[1], args[2]
			return func(yield func(atom.Atom) bool) {
				for b := range sp.Query(pattern) {
					if !yield(b.Resolve(template)) {
						return
					}
				}
			}, nil
		})

	l.operation("add-atom", atom.FuncType(space.SpaceType, atom.AtomType, atom.Unit()),
		func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			sp, err := spaceArg(args[0])
			if err != nil {
				return nil, err
			}
			sp.Add(args[1])
			return single(atom.Unit()), nil
		})

	l.operation("remove-atom", atom.FuncType(space.SpaceType, atom.AtomType, atom.Unit()),
		func(ctx context.Context, args []atom.Atom) ([]atom.Atom, error) {
			sp, err := spaceArg(args[0])
			if err != nil {
				return nil, err
			}
			if !sp.Remove(args[1]) {
				l.logger.DebugContext(ctx, "atom to remove not found", "atom", args[1].String())
			}
			return single(atom.Unit()), nil
		})

	l.operation("get-atoms", atom.FuncType(space.SpaceType, atom.AtomType),
		func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			sp, err := spaceArg(args[0])
			if err != nil {
				return nil, err
			}
			return sp.Atoms(), nil
		})

	l.operation("new-space", atom.FuncType(space.SpaceType),
		func(context.Context, []atom.Atom) ([]atom.Atom, error) {
			sp := space.NewGroundingSpace(l.logger)
			return single(space.NewAtom(sp, sp.String())), nil
		})
}
