package handler

import (
	"net/http"
)

// handleStatus handles GET /status.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.engine.Status())
}

// handleReload handles POST /reload: one manual sync cycle, answered
// with its outcome once it finishes.
func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		h.writeError(w, r, http.StatusTooManyRequests, CodeTooManyRequests, "too many sync requests", nil)
		return
	}

	outcome, err := h.engine.TriggerSync(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, outcome)
}

// handleHistory handles GET /history.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HistoryResponse{Outcomes: h.engine.History()})
}
