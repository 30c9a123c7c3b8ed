package stdlib

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/interpreter"
	"github.com/amebel/hyperon-experimental/pkg/matcher"
	"github.com/amebel/hyperon-experimental/pkg/sexpr"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

// Evaluator runs nested evaluations for operations such as collapse. It is
// implemented by *interpreter.Interpreter.
type Evaluator interface {
	Evaluate(ctx context.Context, sp space.Space, expr atom.Atom) iter.Seq2[atom.Atom, *matcher.Bindings]
}

// Library is the set of standard grounded operations.
type Library struct {
	eval   Evaluator
	space  space.Space
	out    io.Writer
	logger *slog.Logger

	ops    []*atom.Grounded
	byName map[string]*atom.Grounded
}

// Option configures a Library.
type Option func(*Library)

// WithOutput sets the writer println! prints to. Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(l *Library) {
		l.out = w
	}
}

// WithLogger sets the logger of the library.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

// New creates the library. Operations that need a space use the space of
// the evaluation calling them, or sp when called outside an evaluation.
func New(eval Evaluator, sp space.Space, opts ...Option) *Library {
	l := &Library{
		eval:   eval,
		space:  sp,
		out:    os.Stdout,
		byName: make(map[string]*atom.Grounded),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	l.logger = l.logger.With("component", "stdlib")

	l.registerArithmetic()
	l.registerLogic()
	l.registerNondeterminism()
	l.registerSpaceOps()
	l.registerExpressionOps()
	l.registerIO()
	return l
}

// Operation returns the operation registered under name.
func (l *Library) Operation(name string) (*atom.Grounded, bool) {
	op, ok := l.byName[name]
	return op, ok
}

// Names returns the names of all operations in registration order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.ops))
	for _, op := range l.ops {
		names = append(names, op.String())
	}
	return names
}

// Register teaches tok the literal values and the name of every operation.
func (l *Library) Register(tok *sexpr.Tokenizer) {
	RegisterLiterals(tok)
	for _, op := range l.ops {
		tok.RegisterAtom(op.String(), op)
	}
}

func (l *Library) add(op *atom.Grounded) {
	l.ops = append(l.ops, op)
	l.byName[op.String()] = op
}

func (l *Library) operation(name string, typ atom.Atom, fn atom.OperationFunc) {
	l.add(atom.NewOperation(name, typ, fn))
}

func (l *Library) lazyOperation(name string, typ atom.Atom, fn func(context.Context, []atom.Atom) (iter.Seq[atom.Atom], error)) {
	l.add(atom.NewLazyOperation(name, typ, fn))
}

// spaceFor returns the space of the running evaluation.
func (l *Library) spaceFor(ctx context.Context) space.Space {
	if sp, ok := interpreter.SpaceFromContext(ctx); ok {
		return sp
	}
	return l.space
}

func spaceArg(a atom.Atom) (space.Space, error) {
	sp, ok := space.AsSpace(a)
	if !ok {
		return nil, atom.NewExecError("expected a space, got %s", a)
	}
	return sp, nil
}

func expressionArg(a atom.Atom) (*atom.Expression, error) {
	e, ok := a.(*atom.Expression)
	if !ok {
		return nil, atom.NewExecError("expected an expression, got %s", a)
	}
	return e, nil
}

func single(a atom.Atom) []atom.Atom {
	return []atom.Atom{a}
}
