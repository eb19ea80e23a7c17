package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/certrotate-go/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler carries the components the API reports on.
	Handler handler.Config

	// Logger for request logging.
	Logger *slog.Logger

	// EnableAccessLog logs every completed request.
	EnableAccessLog bool
}

// NewRouter creates the API handler wrapped in the middleware chain.
// Order: Recover -> RequestID -> AccessLog -> Handler
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Handler.Logger == nil {
		cfg.Handler.Logger = logger
	}

	middlewares := []Middleware{Recover(logger), RequestID(logger)}
	if cfg.EnableAccessLog {
		middlewares = append(middlewares, AccessLog(logger))
	}

	return Chain(handler.New(cfg.Handler), middlewares...)
}
