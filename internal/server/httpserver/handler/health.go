package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/infra/buildinfo"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "certrotate"

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: ServiceName,
		Version: buildinfo.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. Ready means the engine loop is running.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil || !h.engine.Running() {
		h.handleServiceError(w, r, domain.ErrNotRunning)
		return
	}
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "ready",
		Service: ServiceName,
		Version: buildinfo.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /metrics.
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		h.writeError(w, r, http.StatusNotFound, CodeNotFound, "metrics are disabled", nil)
		return
	}
	h.metrics.ServeHTTP(w, r)
}
