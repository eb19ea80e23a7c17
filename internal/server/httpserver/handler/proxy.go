package handler

import (
	"net/http"
)

// handleProxyStatus handles GET /status/proxy. Unavailable runtime data
// is reported as null rather than as an error.
func (h *Handler) handleProxyStatus(w http.ResponseWriter, r *http.Request) {
	transports := h.proxy.Transports()
	if transports == nil {
		transports = []string{}
	}
	h.writeJSON(w, r, http.StatusOK, ProxyStatusResponse{
		Transports:   transports,
		Info:         h.proxy.CheckStatus(r.Context()),
		Certificates: h.proxy.CheckCertificateStatus(r.Context()),
	})
}
