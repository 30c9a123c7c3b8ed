// Package health serves liveness and readiness probes for the serve
// command.
//
// # Endpoints
//
//   - /healthz: liveness, always 200 while the process runs
//   - /readyz: readiness, 503 when any registered check fails
//
// # Usage
//
//	checker := health.New(cfg.CheckTimeout)
//	checker.RegisterCheck("storage", health.StoreCheck(store))
//	checker.RegisterCheck("snapshot", health.RunningCheck("snapshot scheduler", scheduler))
//	checker.Mount(mux, cfg)
//
// Checks run concurrently, each bounded by the check timeout.
package health
