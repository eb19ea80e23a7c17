package handler

import (
	"time"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/reload"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// HealthResponse is the body of GET /health and GET /ready.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// CertificateView is a certificate record as shown by the API.
type CertificateView struct {
	Identifier      string    `json:"identifier"`
	DomainNames     []string  `json:"domain_names"`
	SerialNumber    string    `json:"serial_number"`
	ExpiresAt       time.Time `json:"expires_at"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	IsExpired       bool      `json:"is_expired"`
	CertificatePath string    `json:"certificate_path"`
	KeyPath         string    `json:"key_path"`
}

// NewCertificateView builds the API view of rec at now.
func NewCertificateView(rec *domain.CertificateRecord, now time.Time) CertificateView {
	return CertificateView{
		Identifier:      rec.Identifier,
		DomainNames:     rec.DomainNames,
		SerialNumber:    rec.SerialNumber,
		ExpiresAt:       rec.ExpiresAt,
		DaysUntilExpiry: rec.DaysUntilExpiry(now),
		IsExpired:       rec.IsExpired(now),
		CertificatePath: rec.CertificatePath,
		KeyPath:         rec.KeyPath,
	}
}

// CertificatesResponse is the body of GET /certificates and /certificates/expiring.
type CertificatesResponse struct {
	Certificates []CertificateView `json:"certificates"`
	Count        int               `json:"count"`
	// Days is set for the expiring listing only.
	Days *int `json:"days,omitempty"`
}

// HistoryResponse is the body of GET /history, newest first.
type HistoryResponse struct {
	Outcomes []*domain.SyncOutcome `json:"outcomes"`
}

// ListSecretsResponse is the body of GET /status/list_secrets.
type ListSecretsResponse struct {
	AllSecrets       []domain.Summary `json:"all_secrets"`
	MonitoredSecrets []domain.Summary `json:"monitored_secrets"`
	DiscoveryMethod  string           `json:"discovery_method"`
	DiscoveryConfig  map[string]any   `json:"discovery_config"`
	TotalSecrets     int              `json:"total_secrets"`
	MonitoredCount   int              `json:"monitored_count"`
	IncludeTags      bool             `json:"include_tags"`
}

// TagFilter names one tag key/value pair.
type TagFilter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SecretsByTagResponse is the body of GET /status/secrets_by_tag.
type SecretsByTagResponse struct {
	TagFilter   TagFilter        `json:"tag_filter"`
	Secrets     []domain.Summary `json:"secrets"`
	Count       int              `json:"count"`
	IncludeTags bool             `json:"include_tags"`
}

// ProxyStatusResponse is the body of GET /status/proxy.
type ProxyStatusResponse struct {
	Transports   []string                  `json:"transports"`
	Info         map[string]string         `json:"info"`
	Certificates *reload.CertificateStatus `json:"certificates"`
}
