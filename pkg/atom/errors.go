package atom

import (
	"errors"
	"fmt"
)

// ErrNoReduce is returned by an executable value that declines to reduce the
// call. The interpreter then treats the call expression as a normal form.
var ErrNoReduce = errors.New("no reduce")

// ExecError is the error returned by grounded operations on failure.
type ExecError struct {
	Message string
	Cause   error
}

// Error returns the error message.
func (e *ExecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *ExecError) Unwrap() error {
	return e.Cause
}

// NewExecError creates an ExecError with a formatted message.
func NewExecError(format string, args ...any) *ExecError {
	return &ExecError{Message: fmt.Sprintf(format, args...)}
}

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Expected int
	Actual   int
}

// Error returns the error message.
func (e *ArityError) Error() string {
	return fmt.Sprintf("expected %d arguments, got %d", e.Expected, e.Actual)
}

// TypeError reports an argument whose type does not match the signature.
type TypeError struct {
	Position int
	Expected Atom
	Actual   Atom
}

// Error returns the error message.
func (e *TypeError) Error() string {
	return fmt.Sprintf("argument %d: expected %s, got %s", e.Position, e.Expected, e.Actual)
}

// ErrorAtom builds (Error a reason).
func ErrorAtom(a Atom, reason Atom) *Expression {
	return exprOwned([]Atom{ErrorSymbol, a, reason})
}

// ErrorText builds (Error a "message").
func ErrorText(a Atom, message string) *Expression {
	return ErrorAtom(a, Text(message))
}

// IsError reports whether a is an error atom.
func IsError(a Atom) bool {
	e, ok := a.(*Expression)
	return ok && e.Len() == 3 && Equal(e.children[0], ErrorSymbol)
}

// ErrorReason returns the reason carried by an error atom.
func ErrorReason(a Atom) (Atom, bool) {
	if !IsError(a) {
		return nil, false
	}
	return a.(*Expression).children[2], true
}
