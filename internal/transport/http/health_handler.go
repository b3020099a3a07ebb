package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	startTime time.Time
	version   string
}

// NewHealthHandler records the process start time for uptime reporting.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), version: version}
}

// Handle reports service health.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}
