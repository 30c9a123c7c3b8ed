// Package interpreter implements the non-deterministic evaluator.
//
// Evaluation rewrites an atom using the (= pattern template) rules stored in
// a space and the grounded operations embedded in the atom. Every step may
// produce several alternatives, so the result of an evaluation is a lazy
// stream:
//
//	in, _ := interpreter.New(nil, logger)
//	for result, bindings := range in.Evaluate(ctx, sp, expr) {
//	    fmt.Println(result, bindings)
//	}
//
// Alternatives are explored depth first, left to right. Rules are tried in
// the order they were added to the space. Nothing is computed ahead of the
// consumer, so breaking out of the loop abandons the remaining work.
//
// # Evaluation Rules
//
// Variables and grounded atoms evaluate to themselves. A symbol evaluates to
// itself unless a rule (= S T) rewrites it.
//
// A call of an executable grounded atom has its arguments evaluated and
// checked against the declared signature (-> T1 ... Tn R). Arguments of type
// Atom are passed unevaluated. Execution errors become (Error call message)
// alternatives. Every result of the operation is evaluated again, unless the
// declared result type is Atom. Rules whose pattern unifies with the call add
// further alternatives after those of the operation.
//
// Any other expression is rewritten by every rule whose pattern unifies with
// it. When no rule applies, its children are evaluated; an expression whose
// children do not change is a normal form, unless its head is a function
// defined by rules, in which case the branch produces nothing.
//
// # Budgets
//
// Config.MaxSteps bounds the work of a whole evaluation and Config.MaxDepth
// bounds the nesting of a single branch. Both produce error atoms rather than
// Go errors. Cancelling the context ends the stream without a result.
//
// # Stepping
//
// Start returns a Run that computes results one at a time on demand, for
// callers that drive the evaluation step by step.
package interpreter
