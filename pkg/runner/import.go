package runner

import (
	"context"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

const importOpName = "import!"

// importOp builds (import! space file): it runs file as a program whose
// plain atoms go to space. Results of evaluations inside the file are
// discarded.
func (r *Runner) importOp() *atom.Grounded {
	typ := atom.FuncType(space.SpaceType, atom.AtomType, atom.Unit())
	return atom.NewOperation(importOpName, typ, func(ctx context.Context, args []atom.Atom) ([]atom.Atom, error) {
		sp, ok := space.AsSpace(args[0])
		if !ok {
			return nil, atom.NewExecError("import! expects a space, got %s", args[0])
		}

		path, ok := atom.AsString(args[1])
		if !ok {
			sym, isSym := args[1].(atom.Symbol)
			if !isSym {
				return nil, atom.NewExecError("import! expects a file name, got %s", args[1])
			}
			path = sym.Name()
		}

		if _, err := r.runFile(ctx, sp, path); err != nil {
			return nil, &atom.ExecError{Message: "import! failed", Cause: err}
		}
		return []atom.Atom{atom.Unit()}, nil
	})
}
