package stdlib

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/interpreter"
	"github.com/amebel/hyperon-experimental/pkg/sexpr"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

type testEnv struct {
	in     *interpreter.Interpreter
	space  *space.GroundingSpace
	lib    *Library
	parser *sexpr.Parser
	out    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	in, err := interpreter.New(nil, nil)
	if err != nil {
		t.Fatalf("interpreter.New() error = %v", err)
	}
	sp := space.NewGroundingSpace(nil)
	out := &bytes.Buffer{}
	lib := New(in, sp, WithOutput(out))

	tok := sexpr.NewTokenizer()
	lib.Register(tok)
	tok.RegisterAtom("&self", space.NewAtom(sp, "&self"))

	return &testEnv{in: in, space: sp, lib: lib, parser: sexpr.NewParser(tok), out: out}
}

func (e *testEnv) load(t *testing.T, src string) {
	t.Helper()
	atoms, err := e.parser.ParseAll(src)
	if err != nil {
		t.Fatalf("ParseAll() error = %v", err)
	}
	for _, a := range atoms {
		e.space.Add(a)
	}
}

func (e *testEnv) eval(t *testing.T, src string) []atom.Atom {
	t.Helper()
	a, err := e.parser.ParseOne(src)
	if err != nil {
		t.Fatalf("ParseOne(%q) error = %v", src, err)
	}
	got, err := e.in.Collect(context.Background(), e.space, a, 100)
	if err != nil {
		t.Fatalf("Collect(%q) error = %v", src, err)
	}
	return got
}

func texts(atoms []atom.Atom) []string {
	out := make([]string, len(atoms))
	for i, a := range atoms {
		out[i] = a.String()
	}
	return out
}

func TestOperations(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{src: "(+ 2 3)", want: []string{"5"}},
		{src: "(- 10 4)", want: []string{"6"}},
		{src: "(* 2 2.5)", want: []string{"5.0"}},
		{src: "(/ 7 2)", want: []string{"3.5"}},
		{src: "(% 7 3)", want: []string{"1"}},
		{src: "(+ 9223372036854775806 1)", want: []string{"9223372036854775807"}},
		{src: "(- -9223372036854775807 1)", want: []string{"-9223372036854775808"}},
		{src: "(* -4611686018427387904 2)", want: []string{"-9223372036854775808"}},
		{src: "(+ 1 (* 2 3))", want: []string{"7"}},
		{src: "(< 1 2)", want: []string{"True"}},
		{src: "(> 1 2)", want: []string{"False"}},
		{src: "(<= 2 2)", want: []string{"True"}},
		{src: "(>= 1 2.5)", want: []string{"False"}},
		{src: "(== (a b) (a b))", want: []string{"True"}},
		{src: "(== 2 2.0)", want: []string{"True"}},
		{src: "(and True False)", want: []string{"False"}},
		{src: "(or True False)", want: []string{"True"}},
		{src: "(not False)", want: []string{"True"}},
		{src: "(if (> 3 1) yes no)", want: []string{"yes"}},
		{src: "(if (> 1 3) yes (+ 1 1))", want: []string{"2"}},
		{src: "(superpose (1 2 (+ 1 2)))", want: []string{"1", "2", "3"}},
		{src: "(collapse (superpose (1 2)))", want: []string{"(1 2)"}},
		{src: "(collapse (empty))", want: []string{"()"}},
		{src: "(empty)", want: nil},
		{src: "(+ 1 (superpose (10 20)))", want: []string{"11", "21"}},
		{src: "(let $x (+ 1 2) (* $x 2))", want: []string{"6"}},
		{src: "(let ($a $b) (1 2) (+ $a $b))", want: []string{"3"}},
		{src: "(let (a $b) (c 2) $b)", want: nil},
		{src: "(let* (($x 1) ($y (+ $x 1))) (+ $x $y))", want: []string{"3"}},
		{src: "(car-atom (a b c))", want: []string{"a"}},
		{src: "(cdr-atom (a b c))", want: []string{"(b c)"}},
		{src: "(cons-atom a (b c))", want: []string{"(a b c)"}},
		{src: "(get-type 1)", want: []string{"Number"}},
		{src: `(get-type "s")`, want: []string{"String"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			env := newTestEnv(t)
			got := texts(env.eval(t, tt.src))
			if strings.Join(got, " | ") != strings.Join(tt.want, " | ") {
				t.Errorf("%s = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestOperationErrors(t *testing.T) {
	tests := []struct {
		src     string
		message string
	}{
		{src: `(/ 1 0)`, message: "division by zero"},
		{src: `(% 1 0)`, message: "division by zero"},
		{src: `(+ 9223372036854775807 1)`, message: "integer overflow"},
		{src: `(- 9223372036854775807 -1)`, message: "integer overflow"},
		{src: `(- -9223372036854775808 1)`, message: "integer overflow"},
		{src: `(* 4611686018427387904 2)`, message: "integer overflow"},
		{src: `(* -1 -9223372036854775808)`, message: "integer overflow"},
		{src: `(superpose a)`, message: "expected an expression"},
		{src: `(car-atom ())`, message: "empty expression"},
		{src: `(match nospace $x $x)`, message: ""},
		{src: `(+ 1 "a")`, message: ""},
		{src: `(and True 1)`, message: ""},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			env := newTestEnv(t)
			got := env.eval(t, tt.src)
			if len(got) != 1 || !atom.IsError(got[0]) {
				t.Fatalf("%s = %v, want one error atom", tt.src, got)
			}
			if tt.message == "" {
				return
			}
			reason, _ := atom.ErrorReason(got[0])
			msg, _ := atom.AsString(reason)
			if !strings.Contains(msg, tt.message) {
				t.Errorf("reason = %v, want it to mention %q", reason, tt.message)
			}
		})
	}
}

func TestSpaceOperations(t *testing.T) {
	env := newTestEnv(t)
	env.load(t, `
		(parent Tom Bob)
		(parent Pam Bob)
		(parent Bob Ann)
	`)

	if got := texts(env.eval(t, "(match &self (parent $x Bob) $x)")); strings.Join(got, " ") != "Tom Pam" {
		t.Errorf("match = %v, want [Tom Pam]", got)
	}
	got := texts(env.eval(t, "(match &self (, (parent $x $y) (parent $y Ann)) $x)"))
	if strings.Join(got, " ") != "Tom Pam" {
		t.Errorf("conjunctive match = %v, want [Tom Pam]", got)
	}

	if got := texts(env.eval(t, "(add-atom &self (parent Ann Joe))")); len(got) != 1 || got[0] != "()" {
		t.Errorf("add-atom = %v, want [()]", got)
	}
	if got := texts(env.eval(t, "(match &self (parent Ann $c) $c)")); len(got) != 1 || got[0] != "Joe" {
		t.Errorf("added atom not found: %v", got)
	}

	env.eval(t, "(remove-atom &self (parent Tom Bob))")
	env.eval(t, "(remove-atom &self (parent Nobody Bob))")
	if env.space.Len() != 3 {
		t.Errorf("Len() = %d, want 3", env.space.Len())
	}

	if got := env.eval(t, "(get-atoms &self)"); len(got) != 3 {
		t.Errorf("get-atoms = %v, want 3 atoms", got)
	}
	if got := texts(env.eval(t, "(collapse (match &self (parent $x $y) $x))")); got[0] != "(Pam Bob Ann)" {
		t.Errorf("collapse of match = %v", got)
	}
}

func TestGetAtomsNotEvaluated(t *testing.T) {
	env := newTestEnv(t)
	env.load(t, "(= (f) 1)")

	got := env.eval(t, "(get-atoms &self)")
	if len(got) != 1 || got[0].String() != "(= (f) 1)" {
		t.Errorf("get-atoms = %v, want the rule as stored", got)
	}
}

func TestNewSpace(t *testing.T) {
	env := newTestEnv(t)
	got := env.eval(t, "(let $s (new-space) (collapse (let $u (add-atom $s item) (get-atoms $s))))")
	if len(got) != 1 || got[0].String() != "(item)" {
		t.Errorf("got %v, want [(item)]", texts(got))
	}
	if env.space.Len() != 0 {
		t.Error("new-space added to the main space")
	}
}

func TestPrintln(t *testing.T) {
	env := newTestEnv(t)
	env.eval(t, `(println! "hello")`)
	env.eval(t, `(println! (a 1))`)
	if got := env.out.String(); got != "hello\n(a 1)\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRecursiveProgram(t *testing.T) {
	env := newTestEnv(t)
	env.load(t, `
		(= (fact $n) (if (== $n 0) 1 (* $n (fact (- $n 1)))))
	`)

	if got := texts(env.eval(t, "(fact 5)")); len(got) != 1 || got[0] != "120" {
		t.Errorf("(fact 5) = %v, want [120]", got)
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"+", "superpose", "collapse", "match", "let*", "println!"} {
		op, ok := env.lib.Operation(name)
		if !ok {
			t.Fatalf("operation %s missing", name)
		}
		a, err := env.parser.ParseOne(name)
		if err != nil {
			t.Fatalf("ParseOne(%s) error = %v", name, err)
		}
		if !atom.Equal(a, op) {
			t.Errorf("token %s parsed as %v", name, a)
		}
	}
	if len(env.lib.Names()) < 20 {
		t.Errorf("Names() = %v", env.lib.Names())
	}

	a, err := env.parser.ParseOne("(1 -2 3.5 True)")
	if err != nil {
		t.Fatal(err)
	}
	want := atom.Expr(atom.Int(1), atom.Int(-2), atom.Float(3.5), atom.Boolean(true))
	if !atom.Equal(a, want) {
		t.Errorf("literals parsed as %v", a)
	}
}
