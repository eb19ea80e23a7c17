package reload

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultHTTPTimeout bounds one reload POST.
const DefaultHTTPTimeout = 30 * time.Second

// maxBodyLog caps how much of a reply body is kept for logging.
const maxBodyLog = 512

// HTTPTransport posts to a reload endpoint.
type HTTPTransport struct {
	url    string
	client *http.Client
}

// NewHTTPTransport creates an HTTP transport. tlsConfig may be nil.
func NewHTTPTransport(url string, timeout time.Duration, tlsConfig *tls.Config) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}
	return &HTTPTransport{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Name implements Transport.
func (t *HTTPTransport) Name() string { return "http" }

// Reload implements Transport.
func (t *HTTPTransport) Reload(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", t.url, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyLog))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post %s: status %d: %s", t.url, resp.StatusCode, body)
	}
	return nil
}
