// Package telemetry groups the observability packages of the MeTTa tools.
//
// # Components
//
//   - logging: slog setup with context fields (command, file, evaluation ID, trace)
//   - metrics: Prometheus collector for evaluations, spaces and snapshots
//   - tracing: OpenTelemetry tracer exporting over OTLP/gRPC
//   - health: liveness and readiness probes
//
// # Usage
//
//	cfg := config.GetConfig()
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
//	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing)
//
//	r, err := runner.New(runnerCfg, logger,
//		runner.WithRecorder(collector),
//		runner.WithTracer(tracer))
//
// Each component is optional. A disabled collector or tracer costs no more
// than a function call per evaluation.
package telemetry
