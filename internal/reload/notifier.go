package reload

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/yndnr/certrotate-go/internal/core/domain"
)

// Transport is one way of telling the proxy to reload.
type Transport interface {
	Name() string
	Reload(ctx context.Context) error
}

// Recorder receives reload outcomes. Implemented by the metrics registry.
type Recorder interface {
	ObserveReload(transport string, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveReload(string, bool) {}

// Config configures a Notifier.
type Config struct {
	// ReloadURL enables the HTTP transport.
	ReloadURL string

	// StatsSocket enables the socket transport and status queries.
	StatsSocket string

	HTTPTimeout   time.Duration
	SocketTimeout time.Duration
	StatusTimeout time.Duration

	// TLSConfig is used for an https ReloadURL. Optional.
	TLSConfig *tls.Config

	Recorder Recorder
	Logger   *slog.Logger
}

// Notifier runs the reload fallback chain.
type Notifier struct {
	transports    []Transport
	socket        *SocketClient
	statusTimeout time.Duration
	recorder      Recorder
	logger        *slog.Logger
}

// New creates a notifier from cfg.
func New(cfg Config) *Notifier {
	var transports []Transport
	if cfg.ReloadURL != "" {
		transports = append(transports, NewHTTPTransport(cfg.ReloadURL, cfg.HTTPTimeout, cfg.TLSConfig))
	}

	var socket *SocketClient
	if cfg.StatsSocket != "" {
		socket = NewSocketClient(cfg.StatsSocket)
		transports = append(transports, NewSocketTransport(socket, cfg.SocketTimeout))
	}

	n := NewWithTransports(cfg.Recorder, cfg.Logger, transports...)
	n.socket = socket
	if cfg.StatusTimeout > 0 {
		n.statusTimeout = cfg.StatusTimeout
	}
	return n
}

// NewWithTransports creates a notifier with an explicit transport order.
func NewWithTransports(recorder Recorder, logger *slog.Logger, transports ...Transport) *Notifier {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		transports:    transports,
		statusTimeout: DefaultStatusTimeout,
		recorder:      recorder,
		logger:        logger.With("component", "reload"),
	}
}

// Transports returns the configured transport names in order.
func (n *Notifier) Transports() []string {
	names := make([]string, len(n.transports))
	for i, t := range n.transports {
		names[i] = t.Name()
	}
	return names
}

// Reload tries each transport in order and returns nil at the first
// success. Nothing configured is success.
func (n *Notifier) Reload(ctx context.Context) error {
	if len(n.transports) == 0 {
		n.logger.Warn("no reload method configured")
		return nil
	}

	var errs []error
	for _, t := range n.transports {
		err := t.Reload(ctx)
		n.recorder.ObserveReload(t.Name(), err == nil)
		if err == nil {
			n.logger.Info("proxy reload successful", "transport", t.Name())
			return nil
		}
		n.logger.Error("proxy reload failed", "transport", t.Name(), "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}

	n.logger.Error("all reload methods failed", "attempted", len(errs))
	return domain.ErrReloadFailed.WithCause(errors.Join(errs...))
}

// CheckStatus returns the proxy's "show info" fields, or nil when the
// socket is not configured or the query fails.
func (n *Notifier) CheckStatus(ctx context.Context) map[string]string {
	if n.socket == nil {
		return nil
	}
	resp, err := n.socket.Execute(ctx, CommandShowInfo, n.statusTimeout)
	if err != nil {
		n.logger.Error("proxy status query failed", "error", err)
		return nil
	}
	return ParseInfo(resp)
}

// CertificateEntry is one line of "show ssl cert" output.
type CertificateEntry struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// CertificateStatus is the parsed "show ssl cert" reply.
type CertificateStatus struct {
	Certificates []CertificateEntry `json:"certificates"`
}

// CheckCertificateStatus returns the proxy's loaded certificates, or nil
// when the socket is not configured or the query fails.
func (n *Notifier) CheckCertificateStatus(ctx context.Context) *CertificateStatus {
	if n.socket == nil {
		return nil
	}
	resp, err := n.socket.Execute(ctx, CommandShowSSLCert, n.statusTimeout)
	if err != nil {
		n.logger.Error("proxy certificate query failed", "error", err)
		return nil
	}
	return ParseCertificateList(resp)
}

// ParseInfo parses "key: value" lines. Lines without a colon are ignored.
func ParseInfo(resp string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(resp, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		info[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return info
}

// ParseCertificateList parses whitespace-separated "filename status"
// lines, skipping blanks and '#' comments.
func ParseCertificateList(resp string) *CertificateStatus {
	status := &CertificateStatus{Certificates: []CertificateEntry{}}
	for _, line := range strings.Split(resp, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		status.Certificates = append(status.Certificates, CertificateEntry{
			Filename: fields[0],
			Status:   fields[1],
		})
	}
	return status
}
