package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/core/engine"
	"github.com/yndnr/certrotate-go/internal/reload"
	"github.com/yndnr/certrotate-go/internal/server/httpserver/handler"
)

func TestNew(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s := New(":8080", h, nil)
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.Addr() != ":8080" {
		t.Errorf("Addr = %q", s.Addr())
	}
	if s.httpServer.ReadHeaderTimeout != readHeaderTimeout {
		t.Errorf("ReadHeaderTimeout = %v", s.httpServer.ReadHeaderTimeout)
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := New(ln.Addr().String(), h, discardLogger())

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Serve returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for Serve to return")
	}
}

func TestListenAndServe_BadAddr(t *testing.T) {
	s := New("256.0.0.1:99999", http.NotFoundHandler(), discardLogger())
	if err := s.ListenAndServe(); err == nil {
		t.Fatal("expected listen error")
	}
}

type stubEngine struct{}

func (stubEngine) Running() bool                  { return true }
func (stubEngine) Status() engine.Status          { return engine.Status{IsRunning: true} }
func (stubEngine) History() []*domain.SyncOutcome { return nil }
func (stubEngine) TriggerSync(context.Context) (*domain.SyncOutcome, error) {
	return &domain.SyncOutcome{ID: "sync-x", Succeeded: true}, nil
}

type stubProxy struct{}

func (stubProxy) Transports() []string                          { return nil }
func (stubProxy) CheckStatus(context.Context) map[string]string { return nil }
func (stubProxy) CheckCertificateStatus(context.Context) *reload.CertificateStatus {
	return nil
}

func TestNewRouter(t *testing.T) {
	router := NewRouter(&RouterConfig{
		Handler: handler.Config{
			Engine: stubEngine{},
			Proxy:  stubProxy{},
		},
		Logger:          discardLogger(),
		EnableAccessLog: true,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requestID := rec.Header().Get(HeaderRequestID)
	if requestID == "" {
		t.Fatal("missing X-Request-ID")
	}

	var resp handler.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RequestID != requestID {
		t.Errorf("envelope request_id = %q, header = %q", resp.RequestID, requestID)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/proxy", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("proxy status = %d", rec.Code)
	}
}
