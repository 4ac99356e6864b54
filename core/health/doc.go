// Package health provides HTTP handlers for process health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All dependencies are available
//   - NoContent: Returns 204 for minimal overhead
//
// Usage:
//
//	mux := http.NewServeMux()
//	mux.Handle("GET /health/live", health.Liveness())
//	mux.Handle("GET /health/ready", health.Readiness(log, bus.Ping))
//	mux.Handle("GET /ping", health.NoContent())
//
// Dependency checks must follow func(context.Context) error signature.
package health
