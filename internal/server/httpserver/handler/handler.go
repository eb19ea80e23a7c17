package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/core/engine"
	"github.com/yndnr/certrotate-go/internal/reload"
	"github.com/yndnr/certrotate-go/internal/telemetry/logger"
)

// HTTP-layer error codes.
const (
	CodeBadRequest      = "CR-HTTP-4000"
	CodeNotFound        = "CR-HTTP-4040"
	CodeTooManyRequests = "CR-HTTP-4290"
	CodeInternal        = "CR-SYS-5000"
)

// Engine is the reconciliation engine surface used by the API.
type Engine interface {
	Running() bool
	Status() engine.Status
	History() []*domain.SyncOutcome
	TriggerSync(ctx context.Context) (*domain.SyncOutcome, error)
}

// Certificates is the local store surface used by the API.
type Certificates interface {
	Records() []*domain.CertificateRecord
	ExpiringWithin(days int) []*domain.CertificateRecord
}

// Secrets is the remote inventory surface used by the API.
type Secrets interface {
	Discovery() string
	MonitoredNames() []string
	Tag() (key, value string)
	ListAll(ctx context.Context, includeTags bool) ([]domain.Summary, error)
	ListByTag(ctx context.Context, key, value string) ([]domain.Summary, error)
}

// Proxy is the reload notifier surface used by the API.
type Proxy interface {
	Transports() []string
	CheckStatus(ctx context.Context) map[string]string
	CheckCertificateStatus(ctx context.Context) *reload.CertificateStatus
}

// Config wires a Handler.
type Config struct {
	Engine       Engine
	Certificates Certificates
	Secrets      Secrets
	Proxy        Proxy

	// Metrics serves GET /metrics. Nil answers 404.
	Metrics http.Handler

	// ReloadRateLimit bounds POST /reload per second. Zero disables it.
	ReloadRateLimit float64

	// ExpiryWarningDays is the default window of /certificates/expiring.
	ExpiryWarningDays int

	Logger *slog.Logger
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	engine       Engine
	certificates Certificates
	secrets      Secrets
	proxy        Proxy
	metrics      http.Handler
	limiter      *rate.Limiter
	warningDays  int
	logger       *slog.Logger
	mux          *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	h := &Handler{
		engine:       cfg.Engine,
		certificates: cfg.Certificates,
		secrets:      cfg.Secrets,
		proxy:        cfg.Proxy,
		metrics:      cfg.Metrics,
		warningDays:  cfg.ExpiryWarningDays,
		logger:       cfg.Logger.With("component", "http"),
		mux:          http.NewServeMux(),
	}
	if cfg.ReloadRateLimit > 0 {
		burst := int(cfg.ReloadRateLimit)
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(cfg.ReloadRateLimit), burst)
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /metrics", h.handleMetrics)

	h.mux.HandleFunc("GET /status", h.handleStatus)
	h.mux.HandleFunc("POST /reload", h.handleReload)
	h.mux.HandleFunc("GET /history", h.handleHistory)

	h.mux.HandleFunc("GET /certificates", h.handleListCertificates)
	h.mux.HandleFunc("GET /certificates/expiring", h.handleExpiringCertificates)

	h.mux.HandleFunc("GET /status/list_secrets", h.handleListSecrets)
	h.mux.HandleFunc("GET /status/secrets_by_tag", h.handleSecretsByTag)
	h.mux.HandleFunc("GET /status/proxy", h.handleProxyStatus)

	h.mux.HandleFunc("/", h.handleNotFound)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// handleServiceError converts component errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.GetErrorCode(err)
		h.writeError(w, r, errorCodeToHTTPStatus(code), code, err.Error(), nil)
		return
	}

	logger.L(r.Context()).Error("internal error", "path", r.URL.Path, "error", err)
	h.writeError(w, r, http.StatusInternalServerError, CodeInternal, "internal server error", nil)
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusNotFound, CodeNotFound, "no such endpoint: "+r.Method+" "+r.URL.Path, nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	case strings.Contains(code, "-4"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
