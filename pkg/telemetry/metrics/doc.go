// Package metrics exposes Prometheus metrics for the interpreter, spaces,
// snapshots, and knowledge-base reloads.
//
// # Metrics Categories
//
//   - Evaluation: count, duration, steps, and results per top-level evaluation
//   - Grounded calls: executions per operation and status
//   - Space: atom count and modifications per observed space
//   - Snapshot: attempts, duration, and size of saved snapshots
//   - Reload: reloads of changed files
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// The collector is an interpreter.Recorder.
//	r, _ := runner.New(nil, logger, runner.WithRecorder(collector))
//
//	// Track the runner's space.
//	stop := collector.ObserveSpace("self", sp)
//	defer stop()
//
//	mux.Handle("/metrics", collector.Handler())
//
// Operation labels are limited to a fixed number of distinct names; further
// operations are counted under "other".
package metrics
