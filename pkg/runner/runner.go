package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/interpreter"
	"github.com/amebel/hyperon-experimental/pkg/sexpr"
	"github.com/amebel/hyperon-experimental/pkg/space"
	"github.com/amebel/hyperon-experimental/pkg/stdlib"
)

// SelfToken is the token that refers to the runner's own space.
const SelfToken = "&self"

// Config contains configuration for a Runner.
type Config struct {
	// Cwd is the directory relative file paths are resolved against.
	// Default: "."
	Cwd string

	// DisableStdlib skips registering the standard operations.
	// Default: false
	DisableStdlib bool

	// Interpreter configures evaluation budgets.
	// Default: interpreter.DefaultConfig()
	Interpreter *interpreter.Config
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() *Config {
	return &Config{
		Cwd:         ".",
		Interpreter: interpreter.DefaultConfig(),
	}
}

// Tracer starts spans. *tracing.Tracer and every trace.Tracer implement it.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Option configures a Runner.
type Option func(*Runner)

// WithSpace makes the runner work on sp instead of a new grounding space.
func WithSpace(sp space.Space) Option {
	return func(r *Runner) {
		r.space = sp
	}
}

// WithOutput sets the writer println! prints to.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithTracer sets the tracer used for run and evaluation spans.
func WithTracer(t Tracer) Option {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithRecorder passes a metrics recorder to the interpreter.
func WithRecorder(rec interpreter.Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// Runner executes programs against a space. Plain atoms of a program are
// added to the space, atoms following "!" are evaluated.
//
// A Runner is not safe for concurrent use.
type Runner struct {
	config    *Config
	space     space.Space
	tokenizer *sexpr.Tokenizer
	interp    *interpreter.Interpreter
	lib       *stdlib.Library
	tracer    Tracer
	recorder  interpreter.Recorder
	out       io.Writer
	logger    *slog.Logger

	cwd string
}

// New creates a Runner. A nil config uses DefaultConfig.
func New(config *Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		config:    config,
		tokenizer: sexpr.NewTokenizer(),
		out:       os.Stdout,
		logger:    logger.With("component", "runner"),
		cwd:       config.Cwd,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cwd == "" {
		r.cwd = "."
	}
	if r.space == nil {
		r.space = space.NewGroundingSpace(logger)
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer("")
	}

	var interpOpts []interpreter.Option
	if r.recorder != nil {
		interpOpts = append(interpOpts, interpreter.WithRecorder(r.recorder))
	}
	interp, err := interpreter.New(config.Interpreter, logger, interpOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}
	r.interp = interp

	if !config.DisableStdlib {
		r.lib = stdlib.New(interp, r.space, stdlib.WithOutput(r.out), stdlib.WithLogger(logger))
		r.lib.Register(r.tokenizer)
	}
	r.tokenizer.RegisterAtom(SelfToken, space.NewAtom(r.space, SelfToken))
	r.tokenizer.RegisterAtom(importOpName, r.importOp())

	return r, nil
}

// Space returns the space the runner works on.
func (r *Runner) Space() space.Space {
	return r.space
}

// Tokenizer returns the tokenizer used to parse programs.
func (r *Runner) Tokenizer() *sexpr.Tokenizer {
	return r.tokenizer
}

// Interpreter returns the runner's interpreter.
func (r *Runner) Interpreter() *interpreter.Interpreter {
	return r.interp
}

// Library returns the standard library, or nil when it is disabled.
func (r *Runner) Library() *stdlib.Library {
	return r.lib
}

// Cwd returns the directory relative paths are resolved against.
func (r *Runner) Cwd() string {
	return r.cwd
}

// AddToken registers a token constructor in the runner's tokenizer.
func (r *Runner) AddToken(pattern string, fn sexpr.TokenFunc) error {
	return r.tokenizer.Register(pattern, fn)
}

// AddAtom makes name parse as a.
func (r *Runner) AddAtom(name string, a atom.Atom) {
	r.tokenizer.RegisterAtom(name, a)
}

// Parse parses every atom of program with the runner's tokenizer.
func (r *Runner) Parse(program string) ([]atom.Atom, error) {
	return sexpr.NewParser(r.tokenizer).ParseAll(program)
}

// ParseOne parses a program consisting of exactly one atom.
func (r *Runner) ParseOne(program string) (atom.Atom, error) {
	return sexpr.NewParser(r.tokenizer).ParseOne(program)
}

// Run executes program and returns the results of every evaluated atom, one
// list per "!" in program order.
func (r *Runner) Run(ctx context.Context, program string) ([][]atom.Atom, error) {
	return r.run(ctx, r.space, sexpr.NewParser(r.tokenizer), program)
}

// RunFile executes the program stored at path. Relative paths inside the
// program, such as import! arguments, are resolved against the file's
// directory while it runs.
func (r *Runner) RunFile(ctx context.Context, path string) ([][]atom.Atom, error) {
	return r.runFile(ctx, r.space, path)
}

// Evaluate evaluates a single atom in the runner's space and collects all
// of its results.
func (r *Runner) Evaluate(ctx context.Context, a atom.Atom) ([]atom.Atom, error) {
	ctx, span := r.tracer.Start(ctx, "runner.evaluate",
		trace.WithAttributes(attribute.String("metta.atom", a.String())))
	defer span.End()

	results, err := r.interp.Collect(ctx, r.space, a, 0)
	span.SetAttributes(attribute.Int("metta.results", len(results)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return results, err
}

// Start begins a step-by-step evaluation of a in the runner's space.
func (r *Runner) Start(ctx context.Context, a atom.Atom) *interpreter.Run {
	return r.interp.Start(ctx, r.space, a)
}

func (r *Runner) run(ctx context.Context, sp space.Space, parser *sexpr.Parser, program string) ([][]atom.Atom, error) {
	ctx, span := r.tracer.Start(ctx, "runner.run")
	defer span.End()

	var results [][]atom.Atom
	reader := parser.Reader(program)
	for {
		a, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "parse failed")
			return results, err
		}

		if !atom.IsSymbol(a, "!") {
			sp.Add(a)
			continue
		}

		loc := reader.Location()
		expr, err := reader.Next()
		if errors.Is(err, io.EOF) {
			err = &sexpr.SyntaxError{Location: loc, Message: "'!' must be followed by an atom"}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "parse failed")
			return results, err
		}

		out, err := r.evaluateIn(ctx, sp, expr)
		results = append(results, out)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return results, err
		}
	}

	span.SetAttributes(attribute.Int("metta.evaluations", len(results)))
	return results, nil
}

func (r *Runner) evaluateIn(ctx context.Context, sp space.Space, expr atom.Atom) ([]atom.Atom, error) {
	ctx, span := r.tracer.Start(ctx, "runner.evaluate",
		trace.WithAttributes(attribute.String("metta.atom", expr.String())))
	defer span.End()

	out, err := r.interp.Collect(ctx, sp, expr, 0)
	span.SetAttributes(attribute.Int("metta.results", len(out)))
	r.logger.DebugContext(ctx, "evaluated", "atom", expr.String(), "results", len(out))
	return out, err
}

func (r *Runner) runFile(ctx context.Context, sp space.Space, path string) ([][]atom.Atom, error) {
	full := r.resolve(path)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	prev := r.cwd
	r.cwd = filepath.Dir(full)
	defer func() { r.cwd = prev }()

	r.logger.InfoContext(ctx, "running file", "path", full)
	parser := sexpr.NewParser(r.tokenizer).WithFile(full)
	results, err := r.run(ctx, sp, parser, string(data))
	if err != nil {
		return results, fmt.Errorf("failed to run %s: %w", path, err)
	}
	return results, nil
}

func (r *Runner) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.cwd, path)
}
