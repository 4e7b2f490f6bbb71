package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency that can report its health
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the health of the service and its dependencies
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a health handler. Nil pingers are skipped.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	live := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			live[name] = p
		}
	}
	return &HealthHandler{checks: live}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "healthy"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}
	respondWithJSON(w, status, envelope{
		Success: status == http.StatusOK,
		Data: map[string]interface{}{
			"status":       overall,
			"dependencies": deps,
		},
	})
}
