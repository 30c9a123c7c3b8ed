package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/amebel/hyperon-experimental/pkg/interpreter"
)

// Context keys for common log fields.
type contextKey string

const (
	// FileKey is the context key for the program file being run.
	FileKey contextKey = "file"

	// CommandKey is the context key for the CLI command being executed.
	CommandKey contextKey = "command"
)

// WithFile adds a program file path to the context.
func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, FileKey, path)
}

// GetFile retrieves the program file path from the context.
func GetFile(ctx context.Context) string {
	if path, ok := ctx.Value(FileKey).(string); ok {
		return path
	}
	return ""
}

// WithCommand adds a command name to the context.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, CommandKey, command)
}

// GetCommand retrieves the command name from the context.
func GetCommand(ctx context.Context) string {
	if command, ok := ctx.Value(CommandKey).(string); ok {
		return command
	}
	return ""
}

// extractContextFields extracts log fields from ctx. Grounded operations
// receive the evaluation context, so their records carry evaluation_id.
func extractContextFields(ctx context.Context) []slog.Attr {
	var fields []slog.Attr

	if command := GetCommand(ctx); command != "" {
		fields = append(fields, slog.String("command", command))
	}
	if path := GetFile(ctx); path != "" {
		fields = append(fields, slog.String("file", path))
	}
	if id, ok := interpreter.EvaluationID(ctx); ok {
		fields = append(fields, slog.String("evaluation_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return fields
}
