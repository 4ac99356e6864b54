package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/eventbus/core/logger"
)

// Readiness verifies all dependencies are functioning.
// Returns "READY" if all checks pass, 503 Service Unavailable if any fail.
//
// Example:
//
//	mux.Handle("GET /health/ready", health.Readiness(log, bus.Ping))
func Readiness(log *slog.Logger, checks ...func(context.Context) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Component("health"), logger.Error(err))
				writeText(w, http.StatusServiceUnavailable, "NOT READY")
				return
			}
		}
		writeText(w, http.StatusOK, "READY")
	})
}
