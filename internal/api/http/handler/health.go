package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/currencyguard-server/internal/api/http/middleware"
	"github.com/dtroode/currencyguard-server/internal/health"
)

// HealthChecker probes the service's dependencies.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Health reports dependency status.
type Health struct {
	checker HealthChecker
}

func NewHealth(checker HealthChecker) *Health {
	return &Health{checker: checker}
}

// Check answers 200 when every dependency is reachable and 503 otherwise.
// GET /health
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Check(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}

	middleware.WriteJSON(w, status, report)
}
