package interpreter

import "fmt"

// Config contains configuration for the interpreter.
type Config struct {
	// MaxSteps limits the number of evaluation steps of a single top-level
	// evaluation, nested evaluations included. When exceeded, one
	// (Error <expr> StepBudgetExhausted) result is produced and the stream
	// ends. Zero means unlimited.
	// Default: 1000000.
	MaxSteps int

	// MaxDepth limits the nesting of rewrites along a single branch. A branch
	// that goes deeper yields (Error <atom> DepthBudgetExhausted) and the
	// other branches continue. Zero means unlimited.
	// Default: 1000.
	MaxDepth int

	// TraceSteps logs every evaluation step at debug level.
	// Warning: tracing produces a log record per step.
	// Default: false.
	TraceSteps bool
}

// DefaultConfig returns the default interpreter configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxSteps:   1000000,
		MaxDepth:   1000,
		TraceSteps: false,
	}
}

// Validate validates the interpreter configuration.
func (c *Config) Validate() error {
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps must be non-negative, got %d", ErrInvalidConfig, c.MaxSteps)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth must be non-negative, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}
