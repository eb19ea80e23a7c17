package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/yndnr/certrotate-go/internal/core/domain"
)

// handleListCertificates handles GET /certificates.
func (h *Handler) handleListCertificates(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, certificatesResponse(h.certificates.Records(), nil))
}

// handleExpiringCertificates handles GET /certificates/expiring?days=N.
func (h *Handler) handleExpiringCertificates(w http.ResponseWriter, r *http.Request) {
	days := h.warningDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "days must be a non-negative integer", nil)
			return
		}
		days = n
	}

	h.writeJSON(w, r, http.StatusOK, certificatesResponse(h.certificates.ExpiringWithin(days), &days))
}

func certificatesResponse(records []*domain.CertificateRecord, days *int) CertificatesResponse {
	now := time.Now()
	views := make([]CertificateView, 0, len(records))
	for _, rec := range records {
		views = append(views, NewCertificateView(rec, now))
	}
	return CertificatesResponse{Certificates: views, Count: len(views), Days: days}
}
