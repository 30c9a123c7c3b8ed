package interpreter

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/matcher"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

// Outcomes reported to the Recorder when an evaluation ends.
const (
	OutcomeComplete        = "complete"
	OutcomeStopped         = "stopped"
	OutcomeBudgetExhausted = "budget_exhausted"
	OutcomeCancelled       = "cancelled"
)

// Recorder receives evaluation statistics. It is implemented by the metrics
// collector.
type Recorder interface {
	// RecordEvaluation is called once per top-level evaluation.
	RecordEvaluation(outcome string, steps int, results int, duration time.Duration)

	// RecordGroundedCall is called for every execution of a grounded
	// operation. failed is true when the operation returned an error.
	RecordGroundedCall(operation string, failed bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordEvaluation(string, int, int, time.Duration) {}
func (noopRecorder) RecordGroundedCall(string, bool)                  {}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithRecorder sets the recorder receiving evaluation statistics.
func WithRecorder(r Recorder) Option {
	return func(in *Interpreter) {
		if r != nil {
			in.recorder = r
		}
	}
}

// Interpreter evaluates atoms against a space. It holds no per-evaluation
// state and may be used by several goroutines at once, provided each
// evaluation is consumed by a single goroutine.
type Interpreter struct {
	config   *Config
	logger   *slog.Logger
	recorder Recorder
}

// New creates an interpreter. A nil config means DefaultConfig().
func New(config *Config, logger *slog.Logger, opts ...Option) (*Interpreter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	in := &Interpreter{
		config:   config,
		logger:   logger.With("component", "interpreter"),
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(in)
	}
	return in, nil
}

// Config returns the configuration of the interpreter.
func (in *Interpreter) Config() *Config {
	return in.config
}

// Evaluate returns the lazy stream of results of expr. Each result comes with
// the bindings of the variables of expr that produced it. Nothing is computed
// until the sequence is ranged over, and computation stops as soon as the
// consumer stops.
//
// When ctx is the context handed to a grounded operation, the evaluation is
// nested: it shares the step budget of the enclosing evaluation and continues
// its depth.
func (in *Interpreter) Evaluate(ctx context.Context, sp space.Space, expr atom.Atom) iter.Seq2[atom.Atom, *matcher.Bindings] {
	return func(yield func(atom.Atom, *matcher.Bindings) bool) {
		e := in.newEvaluation(ctx, sp)
		vars := atom.Variables(expr)
		start := time.Now()
		results := 0
		stopped := false

		e.eval(expr, matcher.NewBindings(), e.base, func(r atom.Atom, b *matcher.Bindings) bool {
			results++
			if !yield(b.Resolve(r), b.Filter(vars)) {
				stopped = true
				return false
			}
			return true
		})

		outcome := OutcomeComplete
		switch {
		case stopped:
			outcome = OutcomeStopped
		case e.budget.exhausted:
			outcome = OutcomeBudgetExhausted
			if !e.nested {
				e.logger.WarnContext(e.logCtx, "step budget exhausted",
					"expr", expr.String(),
					"max_steps", in.config.MaxSteps,
				)
				results++
				yield(atom.ErrorAtom(expr, StepBudgetExhausted), matcher.NewBindings())
			}
		case ctx.Err() != nil:
			outcome = OutcomeCancelled
		}

		if !e.nested {
			in.recorder.RecordEvaluation(outcome, e.budget.steps, results, time.Since(start))
		}
		e.logger.DebugContext(e.logCtx, "evaluation finished",
			"expr", expr.String(),
			"outcome", outcome,
			"results", results,
			"steps", e.budget.steps,
			"nested", e.nested,
			"duration", time.Since(start),
		)
	}
}

// Collect evaluates expr and gathers at most limit results; zero means all.
// The returned error is ctx.Err().
func (in *Interpreter) Collect(ctx context.Context, sp space.Space, expr atom.Atom, limit int) ([]atom.Atom, error) {
	var out []atom.Atom
	for r := range in.Evaluate(ctx, sp, expr) {
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, ctx.Err()
}

// budget is shared by an evaluation and the evaluations nested in it.
type budget struct {
	steps     int
	exhausted bool
}

type evaluation struct {
	ctx    context.Context
	logCtx context.Context // ctx with the evaluation frame, read by log handlers
	in     *Interpreter
	space  space.Space
	id     string
	logger *slog.Logger
	budget *budget
	nested bool
	base   int
}

// frame is attached to the context passed to grounded operations.
type frame struct {
	eval  *evaluation
	depth int
}

type frameKey struct{}

// SpaceFromContext returns the space of the evaluation that invoked a
// grounded operation.
func SpaceFromContext(ctx context.Context) (space.Space, bool) {
	f, ok := ctx.Value(frameKey{}).(*frame)
	if !ok {
		return nil, false
	}
	return f.eval.space, true
}

// EvaluationID returns the identifier of the evaluation that invoked a
// grounded operation.
func EvaluationID(ctx context.Context) (string, bool) {
	f, ok := ctx.Value(frameKey{}).(*frame)
	if !ok {
		return "", false
	}
	return f.eval.id, true
}

func (in *Interpreter) newEvaluation(ctx context.Context, sp space.Space) *evaluation {
	e := &evaluation{ctx: ctx, in: in, space: sp}
	if f, ok := ctx.Value(frameKey{}).(*frame); ok {
		e.budget = f.eval.budget
		e.nested = true
		e.base = f.depth + 1
		e.id = f.eval.id
	} else {
		e.budget = &budget{}
		e.id = uuid.NewString()
	}
	e.logger = in.logger
	e.logCtx = context.WithValue(ctx, frameKey{}, &frame{eval: e, depth: e.base})
	return e
}

// resultFunc receives one alternative and returns false to stop the
// evaluation.
type resultFunc func(atom.Atom, *matcher.Bindings) bool

var templateVar = atom.Var("template")

// step accounts for one evaluation step. It returns false when the
// evaluation must stop.
func (e *evaluation) step(a atom.Atom, depth int) bool {
	if e.budget.exhausted || e.ctx.Err() != nil {
		return false
	}
	e.budget.steps++
	if limit := e.in.config.MaxSteps; limit > 0 && e.budget.steps > limit {
		e.budget.exhausted = true
		return false
	}
	if e.in.config.TraceSteps {
		e.logger.DebugContext(e.logCtx, "step", "step", e.budget.steps, "depth", depth, "atom", a.String())
	}
	return true
}

// eval yields every result of a under bindings b. It returns false when the
// consumer asked to stop or the evaluation was interrupted.
func (e *evaluation) eval(a atom.Atom, b *matcher.Bindings, depth int, yield resultFunc) bool {
	if !e.step(a, depth) {
		return false
	}
	if limit := e.in.config.MaxDepth; limit > 0 && depth > limit {
		e.logger.DebugContext(e.logCtx, "depth budget exhausted", "atom", a.String(), "depth", depth)
		return yield(atom.ErrorAtom(a, DepthBudgetExhausted), b)
	}

	a = b.Resolve(a)
	switch x := a.(type) {
	case atom.Symbol:
		return e.evalSymbol(x, b, depth, yield)
	case *atom.Expression:
		return e.evalExpression(x, b, depth, yield)
	default:
		return yield(a, b)
	}
}

func (e *evaluation) evalSymbol(s atom.Symbol, b *matcher.Bindings, depth int, yield resultFunc) bool {
	matched, cont := e.applyRules(s, b, depth, yield)
	if !cont {
		return false
	}
	if matched {
		return true
	}
	return yield(s, b)
}

func (e *evaluation) evalExpression(x *atom.Expression, b *matcher.Bindings, depth int, yield resultFunc) bool {
	if x.Len() == 0 || atom.IsError(x) {
		return yield(x, b)
	}
	// An expression headed by a variable is data, not a call.
	if x.Head().Kind() == atom.KindVariable {
		return yield(x, b)
	}
	if op, ok := x.Head().(*atom.Grounded); ok {
		if ex, ok := op.Executable(); ok {
			if !e.evalCall(x, op, ex, b, depth, yield) {
				return false
			}
			// Rules defined for the operation are alternatives of the call.
			_, cont := e.applyRules(x, b, depth, yield)
			return cont
		}
	}

	matched, cont := e.applyRules(x, b, depth, yield)
	if !cont {
		return false
	}
	if matched {
		return true
	}
	return e.evalChildren(x, b, depth, yield)
}

// applyRules rewrites a with every (= pattern template) rule of the space
// whose pattern unifies with it, in insertion order.
func (e *evaluation) applyRules(a atom.Atom, b *matcher.Bindings, depth int, yield resultFunc) (matched, cont bool) {
	tmpl := matcher.FreshVariable(templateVar)
	vars := atom.Variables(a)

	for qb := range e.space.Query(atom.Expr(atom.EqualSymbol, a, tmpl)) {
		body, ok := qb.Lookup(tmpl)
		if !ok {
			body = tmpl
		}
		nb, ok := matcher.Merge(b, qb.Filter(vars))
		if !ok {
			continue
		}
		matched = true
		if !e.eval(body, nb, depth+1, yield) {
			return true, false
		}
	}
	return matched, true
}

// evalChildren evaluates the children of an expression no rule applies to.
// Every combination of child results is rebuilt and evaluated again. When no
// child changes, the expression is a normal form unless its head is a
// function defined by some rule, in which case the branch fails.
func (e *evaluation) evalChildren(x *atom.Expression, b *matcher.Bindings, depth int, yield resultFunc) bool {
	children := x.Children()
	out := make([]atom.Atom, len(children))

	var rec func(i int, b *matcher.Bindings, changed bool) bool
	rec = func(i int, b *matcher.Bindings, changed bool) bool {
		if i == len(children) {
			if changed {
				return e.eval(atom.Expr(out...), b, depth+1, yield)
			}
			if e.definesHead(x) {
				return true
			}
			return yield(x, b)
		}
		child := b.Resolve(children[i])
		return e.eval(child, b, depth+1, func(r atom.Atom, nb *matcher.Bindings) bool {
			if atom.IsError(r) && !atom.Equal(r, child) {
				return yield(r, nb)
			}
			out[i] = r
			return rec(i+1, nb, changed || !atom.Equal(r, child))
		})
	}
	return rec(0, b, false)
}

// definesHead reports whether the head of x is a symbol some rule defines a
// function for.
func (e *evaluation) definesHead(x *atom.Expression) bool {
	head, ok := x.Head().(atom.Symbol)
	return ok && space.DefinesFunction(e.space, head)
}

// evalCall evaluates a call of a grounded operation. Arguments declared as
// Atom are passed as they are; the others are evaluated and checked against
// the signature, each alternative threading its bindings into the next
// argument.
func (e *evaluation) evalCall(call *atom.Expression, op *atom.Grounded, ex atom.Executable, b *matcher.Bindings, depth int, yield resultFunc) bool {
	args := call.Args()
	params, result, typed := atom.Signature(op.Type())
	raw := typed && atom.Equal(result, atom.AtomType)
	if typed && len(params) != len(args) {
		return yield(atom.ErrorAtom(call, IncorrectNumberOfArguments), b)
	}

	evaluated := make([]atom.Atom, len(args))

	var rec func(i int, b *matcher.Bindings) bool
	rec = func(i int, b *matcher.Bindings) bool {
		if i == len(args) {
			return e.execute(op, ex, slices.Clone(evaluated), raw, b, depth, yield)
		}
		var want atom.Atom
		if typed {
			want = params[i]
		}
		arg := b.Resolve(args[i])
		if want != nil && atom.Equal(want, atom.AtomType) {
			evaluated[i] = arg
			return rec(i+1, b)
		}
		return e.eval(arg, b, depth+1, func(r atom.Atom, nb *matcher.Bindings) bool {
			if atom.IsError(r) {
				return yield(r, nb)
			}
			if !typeMatches(e.space, r, want) {
				reason := badArgType(i+1, want, actualType(e.space, r))
				return yield(atom.ErrorAtom(nb.Resolve(call), reason), nb)
			}
			evaluated[i] = r
			return rec(i+1, nb)
		})
	}
	return rec(0, b)
}

// execute runs the operation and evaluates its results, unless raw is set
// because the operation declares Atom as its result type.
func (e *evaluation) execute(op *atom.Grounded, ex atom.Executable, args []atom.Atom, raw bool, b *matcher.Bindings, depth int, yield resultFunc) bool {
	reduced := atom.Expr(append([]atom.Atom{op}, args...)...)
	ctx := context.WithValue(e.ctx, frameKey{}, &frame{eval: e, depth: depth})

	results, err := ex.Execute(ctx, args)
	e.in.recorder.RecordGroundedCall(op.String(), err != nil && !errors.Is(err, atom.ErrNoReduce))
	if err != nil {
		if errors.Is(err, atom.ErrNoReduce) {
			return yield(reduced, b)
		}
		if e.budget.exhausted || e.ctx.Err() != nil {
			return false
		}
		e.logger.DebugContext(e.logCtx, "grounded operation failed",
			"operation", op.String(),
			"call", reduced.String(),
			"error", err,
		)
		return yield(atom.ErrorText(reduced, err.Error()), b)
	}

	for r := range results {
		if raw || atom.IsError(r) {
			if !yield(r, b) {
				return false
			}
			continue
		}
		if !e.eval(r, b, depth+1, yield) {
			return false
		}
	}
	return true
}
