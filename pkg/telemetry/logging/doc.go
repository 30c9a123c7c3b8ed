// Package logging builds the structured logger used across the module.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "debug",
//	    Format: "json",
//	})
//
//	ctx = logging.WithFile(ctx, "kb/facts.metta")
//	logger.InfoContext(ctx, "running file") // includes file=kb/facts.metta
//
// Records logged with a context also carry:
//   - evaluation_id, when logged from inside a grounded operation
//   - trace_id and span_id, when the context holds a valid span
//
// Every component adds its own "component" attribute with logger.With.
package logging
