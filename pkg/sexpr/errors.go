package sexpr

import "fmt"

// Location is a position in the source text.
type Location struct {
	File   string // Source name, empty for inline text
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String returns "file:line:column", or "line:column" without a file.
func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// SyntaxError reports malformed source text.
type SyntaxError struct {
	Location Location
	Message  string
	Cause    error
}

// Error returns the error message prefixed with its location.
func (e *SyntaxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Location, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// Unwrap returns the underlying cause.
func (e *SyntaxError) Unwrap() error {
	return e.Cause
}
