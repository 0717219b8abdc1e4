package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is anything that can report reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and dependency health
type HealthHandler struct {
	service string
	checks  map[string]Pinger
}

// NewHealthHandler creates a health handler. Each check is pinged on every request.
func NewHealthHandler(service string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{service: service, checks: checks}
}

// Health answers 200 when every check passes, 503 otherwise
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	respondJSON(w, status, map[string]interface{}{
		"status":  overall,
		"service": h.service,
		"checks":  checks,
	})
}
