package interpreter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

var (
	sym  = atom.Sym
	expr = atom.Expr
	eq   = atom.EqualSymbol
)

func rule(lhs, rhs atom.Atom) atom.Atom {
	return expr(eq, lhs, rhs)
}

func plusOp() *atom.Grounded {
	typ := atom.FuncType(atom.NumberType, atom.NumberType, atom.NumberType)
	return atom.NewOperation("+", typ, func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
		x, _ := atom.AsNumber(args[0])
		y, _ := atom.AsNumber(args[1])
		return []atom.Atom{atom.Int(x.Int64() + y.Int64())}, nil
	})
}

func newTestInterpreter(t *testing.T, cfg *Config, opts ...Option) *Interpreter {
	t.Helper()
	in, err := New(cfg, nil, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return in
}

func evaluate(t *testing.T, in *Interpreter, sp space.Space, e atom.Atom) []atom.Atom {
	t.Helper()
	got, err := in.Collect(context.Background(), sp, e, 100)
	if err != nil {
		t.Fatalf("Collect(%v) error = %v", e, err)
	}
	return got
}

func assertAtoms(t *testing.T, got []atom.Atom, want ...atom.Atom) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !atom.Equal(got[i], want[i]) {
			t.Errorf("result[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(&Config{MaxSteps: -1}, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}

	in, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New(nil) error = %v", err)
	}
	if in.Config().MaxDepth != DefaultConfig().MaxDepth {
		t.Errorf("nil config did not fall back to the defaults")
	}
}

func TestEvaluateAtomic(t *testing.T) {
	in := newTestInterpreter(t, nil)
	sp := space.NewGroundingSpace(nil)

	tests := []struct {
		name string
		in   atom.Atom
	}{
		{name: "symbol", in: sym("a")},
		{name: "variable", in: atom.Var("x")},
		{name: "grounded", in: atom.Int(7)},
		{name: "empty expression", in: expr()},
		{name: "data expression", in: expr(sym("Cons"), atom.Int(1), sym("Nil"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAtoms(t, evaluate(t, in, sp, tt.in), tt.in)
		})
	}
}

func TestEvaluateRuleChain(t *testing.T) {
	in := newTestInterpreter(t, nil)
	sp := space.FromAtoms(nil,
		rule(expr(sym("f"), atom.Var("x")), expr(sym("g"), atom.Var("x"))),
		rule(expr(sym("g"), atom.Int(1)), atom.Int(2)),
	)
	assertAtoms(t, evaluate(t, in, sp, expr(sym("f"), atom.Int(1))), atom.Int(2))
}

func TestEvaluateSymbolRule(t *testing.T) {
	in := newTestInterpreter(t, nil)
	sp := space.FromAtoms(nil, rule(sym("pi"), atom.Float(3.14)))
	assertAtoms(t, evaluate(t, in, sp, sym("pi")), atom.Float(3.14))
}

func TestEvaluateChoiceIsLazy(t *testing.T) {
	probes := 0
	probe := atom.NewOperation("probe", nil, func(context.Context, []atom.Atom) ([]atom.Atom, error) {
		probes++
		return []atom.Atom{sym("b")}, nil
	})

	in := newTestInterpreter(t, nil)
	sp := space.FromAtoms(nil,
		rule(expr(sym("choice")), sym("a")),
		rule(expr(sym("choice")), expr(probe)),
	)

	run := in.Start(context.Background(), sp, expr(sym("choice")))
	defer run.Stop()

	first, ok := run.Next()
	if !ok || !atom.Equal(first.Atom, sym("a")) {
		t.Fatalf("first result = %v, %v, want a", first.Atom, ok)
	}
	if probes != 0 {
		t.Fatalf("second branch computed before it was requested")
	}

	second, ok := run.Next()
	if !ok || !atom.Equal(second.Atom, sym("b")) {
		t.Fatalf("second result = %v, %v, want b", second.Atom, ok)
	}
	if _, ok := run.Next(); ok {
		t.Error("more than two results")
	}
	if probes != 1 {
		t.Errorf("probe ran %d times, want 1", probes)
	}
}

func TestEvaluateGroundedCall(t *testing.T) {
	in := newTestInterpreter(t, nil)
	plus := plusOp()
	sp := space.NewGroundingSpace(nil)

	assertAtoms(t, evaluate(t, in, sp, expr(plus, atom.Int(2), atom.Int(3))), atom.Int(5))

	nested := expr(plus, atom.Int(1), expr(plus, atom.Int(2), atom.Int(3)))
	assertAtoms(t, evaluate(t, in, sp, nested), atom.Int(6))
}

func TestEvaluateBadArgumentKeepsSiblings(t *testing.T) {
	in := newTestInterpreter(t, nil)
	plus := plusOp()
	bad := expr(plus, atom.Int(2), atom.Text("x"))
	sp := space.FromAtoms(nil,
		rule(bad, sym("fallback")),
		rule(expr(sym("g"), atom.Var("x")), expr(plus, atom.Var("x"), atom.Int(1))),
		rule(expr(sym("g"), atom.Var("x")), expr(plus, atom.Var("x"), atom.Text("a"))),
		rule(expr(sym("g"), atom.Var("x")), sym("other")),
	)

	got := evaluate(t, in, sp, bad)
	if len(got) != 2 {
		t.Fatalf("got %v, want an error and the rule result", got)
	}
	reason, ok := atom.ErrorReason(got[0])
	if !ok {
		t.Fatalf("result[0] = %v, want an error atom", got[0])
	}
	want := expr(BadArgType, atom.Int(2), atom.NumberType, atom.StringType)
	if !atom.Equal(reason, want) {
		t.Errorf("reason = %v, want %v", reason, want)
	}
	if !atom.Equal(got[1], sym("fallback")) {
		t.Errorf("result[1] = %v, want fallback", got[1])
	}

	got = evaluate(t, in, sp, expr(sym("g"), atom.Int(2)))
	if len(got) != 3 {
		t.Fatalf("(g 2) = %v, want three alternatives", got)
	}
	if !atom.Equal(got[0], atom.Int(3)) || !atom.IsError(got[1]) || !atom.Equal(got[2], sym("other")) {
		t.Errorf("(g 2) = %v, want [3 (Error ...) other]", got)
	}
}

func TestEvaluateArityError(t *testing.T) {
	in := newTestInterpreter(t, nil)
	call := expr(plusOp(), atom.Int(1))
	got := evaluate(t, in, space.NewGroundingSpace(nil), call)
	if len(got) != 1 {
		t.Fatalf("got %v", got)
	}
	if reason, _ := atom.ErrorReason(got[0]); !atom.Equal(reason, IncorrectNumberOfArguments) {
		t.Errorf("got %v, want an arity error", got[0])
	}
}

func TestEvaluateExecutionError(t *testing.T) {
	div := atom.NewOperation("/", atom.FuncType(atom.NumberType, atom.NumberType, atom.NumberType),
		func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			return nil, atom.NewExecError("division by zero")
		})

	in := newTestInterpreter(t, nil)
	got := evaluate(t, in, space.NewGroundingSpace(nil), expr(div, atom.Int(1), atom.Int(0)))
	want := atom.ErrorText(expr(div, atom.Int(1), atom.Int(0)), "division by zero")
	assertAtoms(t, got, want)
}

func TestEvaluateErrorPropagates(t *testing.T) {
	in := newTestInterpreter(t, nil)
	plus := plusOp()
	inner := expr(plus, atom.Int(2), atom.Text("x"))

	got := evaluate(t, in, space.NewGroundingSpace(nil), expr(plus, atom.Int(1), inner))
	if len(got) != 1 || !atom.IsError(got[0]) {
		t.Fatalf("got %v, want the inner error", got)
	}
	if e := got[0].(*atom.Expression); !atom.Equal(e.Child(1), inner) {
		t.Errorf("error refers to %v, want %v", e.Child(1), inner)
	}
}

func TestEvaluateNoReduce(t *testing.T) {
	decline := atom.NewOperation("decline", nil, func(context.Context, []atom.Atom) ([]atom.Atom, error) {
		return nil, atom.ErrNoReduce
	})
	in := newTestInterpreter(t, nil)
	call := expr(decline, sym("a"))
	assertAtoms(t, evaluate(t, in, space.NewGroundingSpace(nil), call), call)
}

func TestEvaluateAtomArgumentsUnevaluated(t *testing.T) {
	var received []atom.Atom
	capture := atom.NewOperation("capture", atom.FuncType(atom.AtomType, atom.AtomType, atom.Unit()),
		func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
			received = args
			return []atom.Atom{atom.Unit()}, nil
		})

	in := newTestInterpreter(t, nil)
	sp := space.FromAtoms(nil, rule(expr(sym("f"), atom.Int(1)), atom.Int(2)))
	arg := expr(sym("f"), atom.Int(1))

	assertAtoms(t, evaluate(t, in, sp, expr(capture, arg, arg)), atom.Unit())
	if len(received) != 2 || !atom.Equal(received[0], arg) {
		t.Errorf("operation received %v, want the unevaluated %v", received, arg)
	}
}

func TestEvaluateResultsReevaluated(t *testing.T) {
	fcall := expr(sym("f"), atom.Int(1))
	sp := space.FromAtoms(nil, rule(fcall, atom.Int(2)))
	in := newTestInterpreter(t, nil)

	lazy := atom.NewOperation("lazy", atom.FuncType(atom.UndefinedType),
		func(context.Context, []atom.Atom) ([]atom.Atom, error) {
			return []atom.Atom{fcall}, nil
		})
	quoted := atom.NewOperation("quoted", atom.FuncType(atom.AtomType),
		func(context.Context, []atom.Atom) ([]atom.Atom, error) {
			return []atom.Atom{fcall}, nil
		})

	assertAtoms(t, evaluate(t, in, sp, expr(lazy)), atom.Int(2))
	assertAtoms(t, evaluate(t, in, sp, expr(quoted)), fcall)
}

func TestEvaluateDeclaredTypes(t *testing.T) {
	in := newTestInterpreter(t, nil)
	plus := plusOp()
	sp := space.FromAtoms(nil,
		expr(atom.HasTypeSymbol, sym("word"), atom.StringType),
		expr(atom.HasTypeSymbol, sym("n"), atom.NumberType),
	)

	got := evaluate(t, in, sp, expr(plus, atom.Int(1), sym("word")))
	if len(got) != 1 || !atom.IsError(got[0]) {
		t.Errorf("got %v, want a type error", got)
	}

	got = evaluate(t, in, sp, expr(plus, atom.Int(1), sym("n")))
	if len(got) != 1 || atom.IsError(got[0]) {
		t.Errorf("got %v, want a symbol declared as Number to pass the check", got)
	}
}

func TestEvaluateDefinedFunctionWithoutMatch(t *testing.T) {
	in := newTestInterpreter(t, nil)
	sp := space.FromAtoms(nil, rule(expr(sym("g"), atom.Int(1)), atom.Int(2)))

	if got := evaluate(t, in, sp, expr(sym("g"), atom.Int(3))); len(got) != 0 {
		t.Errorf("(g 3) = %v, want no results", got)
	}
	if got := evaluate(t, in, sp, expr(sym("h"), atom.Int(3))); len(got) != 1 {
		t.Errorf("(h 3) = %v, want itself", got)
	}
}

func TestEvaluateChildren(t *testing.T) {
	in := newTestInterpreter(t, nil)
	sp := space.FromAtoms(nil,
		rule(expr(sym("g"), atom.Int(1)), atom.Int(2)),
		rule(expr(sym("two")), sym("x")),
		rule(expr(sym("two")), sym("y")),
	)

	got := evaluate(t, in, sp, expr(sym("Pair"), expr(sym("g"), atom.Int(1)), expr(sym("two"))))
	assertAtoms(t, got,
		expr(sym("Pair"), atom.Int(2), sym("x")),
		expr(sym("Pair"), atom.Int(2), sym("y")),
	)
}

func TestEvaluateIdempotentNormalForms(t *testing.T) {
	in := newTestInterpreter(t, nil)
	sp := space.FromAtoms(nil,
		rule(expr(sym("f"), atom.Var("x")), expr(sym("Cons"), atom.Var("x"), sym("Nil"))),
		rule(expr(sym("g"), atom.Int(1)), atom.Int(2)),
	)

	for _, e := range []atom.Atom{
		expr(sym("f"), expr(sym("g"), atom.Int(1))),
		sym("a"),
		expr(sym("Cons"), atom.Int(1), sym("Nil")),
	} {
		for _, y := range evaluate(t, in, sp, e) {
			assertAtoms(t, evaluate(t, in, sp, y), y)
		}
	}
}

func TestEvaluateVariableHeadedNormalForm(t *testing.T) {
	in := newTestInterpreter(t, &Config{MaxSteps: 1000, MaxDepth: 50})
	a, b := atom.Var("a"), atom.Var("b")
	p, q := atom.Var("p"), atom.Var("q")
	sp := space.FromAtoms(nil, rule(expr(sym("swap"), expr(a, b)), expr(b, a)))

	for r, bnd := range in.Evaluate(context.Background(), sp, expr(sym("swap"), expr(p, q))) {
		if !atom.Equal(r, expr(q, p)) {
			t.Errorf("result = %v, want ($q $p)", r)
		}
		if !bnd.IsEmpty() {
			t.Errorf("bindings = %v, want none", bnd)
		}
	}
	assertAtoms(t, evaluate(t, in, sp, expr(sym("swap"), expr(p, q))), expr(q, p))
	assertAtoms(t, evaluate(t, in, sp, expr(q, p)), expr(q, p))
}

func TestEvaluateKeepsQueryVariables(t *testing.T) {
	in := newTestInterpreter(t, nil)
	x, y := atom.Var("x"), atom.Var("y")
	sp := space.FromAtoms(nil,
		rule(expr(sym("id"), x), x),
		rule(expr(sym("same"), x, x), x),
	)

	assertAtoms(t, evaluate(t, in, sp, expr(sym("id"), y)), y)

	a, b := atom.Var("a"), atom.Var("b")
	for r, bnd := range in.Evaluate(context.Background(), sp, expr(sym("same"), a, b)) {
		for _, v := range atom.Variables(r) {
			if v != a && v != b {
				t.Errorf("result %v mentions internal variable %v", r, v)
			}
		}
		if got, want := bnd.Resolve(a), bnd.Resolve(b); !atom.Equal(got, want) {
			t.Errorf("bindings %v do not unify $a and $b", bnd)
		}
	}
}

func TestEvaluateReturnsBindings(t *testing.T) {
	in := newTestInterpreter(t, nil)
	sp := space.FromAtoms(nil,
		rule(expr(sym("f"), atom.Int(1)), sym("one")),
		rule(expr(sym("f"), atom.Int(2)), sym("two")),
	)

	x := atom.Var("x")
	var results, values []atom.Atom
	for r, b := range in.Evaluate(context.Background(), sp, expr(sym("f"), x)) {
		results = append(results, r)
		v, ok := b.Lookup(x)
		if !ok {
			t.Fatalf("$x unbound in %v", b)
		}
		values = append(values, v)
	}
	assertAtoms(t, results, sym("one"), sym("two"))
	assertAtoms(t, values, atom.Int(1), atom.Int(2))
}

func TestEvaluateInfiniteStreamStopsEarly(t *testing.T) {
	in := newTestInterpreter(t, nil)
	z, s := sym("Z"), sym("S")
	sp := space.FromAtoms(nil,
		rule(expr(sym("nat")), z),
		rule(expr(sym("nat")), expr(s, expr(sym("nat")))),
	)

	got, err := in.Collect(context.Background(), sp, expr(sym("nat")), 3)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	assertAtoms(t, got, z, expr(s, z), expr(s, expr(s, z)))
}

func TestStepBudget(t *testing.T) {
	in := newTestInterpreter(t, &Config{MaxSteps: 50})
	loop := expr(sym("loop"))
	sp := space.FromAtoms(nil, rule(loop, loop))

	got := evaluate(t, in, sp, loop)
	assertAtoms(t, got, atom.ErrorAtom(loop, StepBudgetExhausted))
}

func TestDepthBudget(t *testing.T) {
	in := newTestInterpreter(t, &Config{MaxDepth: 10})
	loop := expr(sym("loop"))
	sp := space.FromAtoms(nil,
		rule(loop, loop),
		rule(loop, sym("done")),
	)

	got := evaluate(t, in, sp, loop)
	if len(got) == 0 {
		t.Fatal("no results")
	}
	if reason, _ := atom.ErrorReason(got[0]); !atom.Equal(reason, DepthBudgetExhausted) {
		t.Errorf("first result = %v, want a depth error", got[0])
	}
	found := false
	for _, r := range got {
		if atom.Equal(r, sym("done")) {
			found = true
		}
	}
	if !found {
		t.Errorf("sibling branches produced nothing: %v", got)
	}
}

func TestEvaluateCancelled(t *testing.T) {
	in := newTestInterpreter(t, &Config{})
	nat := expr(sym("nat"))
	sp := space.FromAtoms(nil,
		rule(nat, sym("Z")),
		rule(nat, expr(sym("S"), nat)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := in.Collect(ctx, sp, nat, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Collect() error = %v, want deadline exceeded", err)
	}
	for _, r := range got {
		if atom.IsError(r) {
			t.Errorf("cancellation produced an error atom %v", r)
		}
	}
}

func TestNestedEvaluation(t *testing.T) {
	in := newTestInterpreter(t, nil)
	sp := space.FromAtoms(nil,
		rule(expr(sym("two")), sym("x")),
		rule(expr(sym("two")), sym("y")),
	)

	var nestedID string
	collapse := atom.NewOperation("collapse", atom.FuncType(atom.AtomType, atom.ExpressionType),
		func(ctx context.Context, args []atom.Atom) ([]atom.Atom, error) {
			cur, ok := SpaceFromContext(ctx)
			if !ok {
				return nil, atom.NewExecError("no space in context")
			}
			nestedID, _ = EvaluationID(ctx)
			var out []atom.Atom
			for r := range in.Evaluate(ctx, cur, args[0]) {
				out = append(out, r)
			}
			return []atom.Atom{expr(out...)}, nil
		})

	got := evaluate(t, in, sp, expr(collapse, expr(sym("two"))))
	assertAtoms(t, got, expr(sym("x"), sym("y")))
	if nestedID == "" {
		t.Error("grounded operation did not see the evaluation id")
	}
}

func TestNestedEvaluationSharesStepBudget(t *testing.T) {
	in := newTestInterpreter(t, &Config{MaxSteps: 100})
	loop := expr(sym("loop"))
	sp := space.FromAtoms(nil, rule(loop, loop))

	collapse := atom.NewOperation("collapse", atom.FuncType(atom.AtomType, atom.ExpressionType),
		func(ctx context.Context, args []atom.Atom) ([]atom.Atom, error) {
			var out []atom.Atom
			for r := range in.Evaluate(ctx, sp, args[0]) {
				out = append(out, r)
			}
			return []atom.Atom{expr(out...)}, nil
		})

	call := expr(collapse, loop)
	assertAtoms(t, evaluate(t, in, sp, call), atom.ErrorAtom(call, StepBudgetExhausted))
}

type fakeRecorder struct {
	outcomes []string
	calls    map[string]int
	failures int
}

func (f *fakeRecorder) RecordEvaluation(outcome string, steps, results int, d time.Duration) {
	f.outcomes = append(f.outcomes, outcome)
}

func (f *fakeRecorder) RecordGroundedCall(op string, failed bool) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
	if failed {
		f.failures++
	}
}

func TestRecorder(t *testing.T) {
	rec := &fakeRecorder{}
	in := newTestInterpreter(t, nil, WithRecorder(rec))
	plus := plusOp()
	sp := space.NewGroundingSpace(nil)

	evaluate(t, in, sp, expr(plus, atom.Int(1), atom.Int(2)))
	for range in.Evaluate(context.Background(), sp, expr(sym("a"))) {
		break
	}

	if len(rec.outcomes) != 2 || rec.outcomes[0] != OutcomeComplete || rec.outcomes[1] != OutcomeStopped {
		t.Errorf("outcomes = %v", rec.outcomes)
	}
	if rec.calls["+"] != 1 || rec.failures != 0 {
		t.Errorf("calls = %v, failures = %d", rec.calls, rec.failures)
	}
}
