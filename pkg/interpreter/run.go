package interpreter

import (
	"context"
	"iter"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/matcher"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

// Result is one alternative produced by an evaluation.
type Result struct {
	Atom     atom.Atom
	Bindings *matcher.Bindings
}

// Run is a pull-based handle over an evaluation: each call to Next performs
// just enough work to produce the next result. A Run must be used by one
// goroutine at a time, and Stop must be called if it is abandoned before
// being drained.
type Run struct {
	next    func() (atom.Atom, *matcher.Bindings, bool)
	stop    func()
	pending *Result
	done    bool
}

// Start begins evaluating expr without computing anything yet.
func (in *Interpreter) Start(ctx context.Context, sp space.Space, expr atom.Atom) *Run {
	next, stop := iter.Pull2(in.Evaluate(ctx, sp, expr))
	return &Run{next: next, stop: stop}
}

// HasNext reports whether another result is available. It may compute the
// next result and keep it for the following call to Next.
func (r *Run) HasNext() bool {
	if r.pending != nil {
		return true
	}
	if r.done {
		return false
	}
	a, b, ok := r.next()
	if !ok {
		r.finish()
		return false
	}
	r.pending = &Result{Atom: a, Bindings: b}
	return true
}

// Next returns the next result. ok is false once the evaluation is finished.
func (r *Run) Next() (res Result, ok bool) {
	if !r.HasNext() {
		return Result{}, false
	}
	res = *r.pending
	r.pending = nil
	return res, true
}

// Results drains the remaining results.
func (r *Run) Results() []Result {
	var out []Result
	for {
		res, ok := r.Next()
		if !ok {
			return out
		}
		out = append(out, res)
	}
}

// Stop abandons the evaluation. It is safe to call Stop more than once.
func (r *Run) Stop() {
	r.pending = nil
	r.finish()
}

// Done reports whether the evaluation has finished or was stopped.
func (r *Run) Done() bool {
	return r.done && r.pending == nil
}

func (r *Run) finish() {
	if r.done {
		return
	}
	r.done = true
	r.stop()
}
