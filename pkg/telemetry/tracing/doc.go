// Package tracing provides OpenTelemetry tracing for program runs and
// evaluations.
//
// # Usage
//
//	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	r, err := runner.New(nil, logger, runner.WithTracer(tracer))
//
// Spans are exported over OTLP/gRPC. The runner creates a "runner.run" span
// per program and a "runner.evaluate" span per evaluated expression, with
// the metta.atom and metta.results attributes.
//
// # Sampling
//
//   - always: sample all traces
//   - never: sample no traces
//   - ratio: sample the configured fraction of traces by trace ID
//
// Samplers respect the parent's decision, so a trace propagated over HTTP
// with HTTPMiddleware is either sampled as a whole or not at all.
package tracing
