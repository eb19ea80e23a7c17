package tlsroots

import (
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/certrotate-go/internal/testutil"
)

func TestNewPool(t *testing.T) {
	if pool := NewPool(); pool == nil || pool.certPool == nil {
		t.Fatal("NewPool() returned an unusable pool")
	}
	if NewEmptyPool().Added() != 0 {
		t.Error("empty pool should report no added certificates")
	}
}

func TestAddCertPEM(t *testing.T) {
	a := testutil.NewCert(t, testutil.CertOptions{CommonName: "CA one"})
	b := testutil.NewCert(t, testutil.CertOptions{CommonName: "CA two"})

	pool := NewEmptyPool()
	bundle := append(append(append([]byte{}, a.CertPEM...), a.KeyPEM...), b.CertPEM...)
	if err := pool.AddCertPEM(bundle); err != nil {
		t.Fatalf("AddCertPEM() error = %v", err)
	}
	if pool.Added() != 2 {
		t.Errorf("Added() = %d, want 2 (key block skipped)", pool.Added())
	}
}

func TestAddCertPEM_NoCerts(t *testing.T) {
	pool := NewEmptyPool()
	key := testutil.NewCert(t, testutil.CertOptions{}).KeyPEM

	for _, data := range [][]byte{nil, []byte("junk"), key} {
		if err := pool.AddCertPEM(data); !errors.Is(err, ErrNoCertsFound) {
			t.Errorf("AddCertPEM(%q) error = %v, want ErrNoCertsFound", data, err)
		}
	}
}

func TestAddCertPEM_InvalidCert(t *testing.T) {
	pool := NewEmptyPool()
	bad := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("nope")})

	if err := pool.AddCertPEM(bad); err == nil {
		t.Error("AddCertPEM() should fail on a corrupt certificate block")
	}
}

func TestAddCertFile_NotFound(t *testing.T) {
	if err := NewEmptyPool().AddCertFile("/nonexistent/ca.pem"); err == nil {
		t.Error("AddCertFile() expected error for nonexistent file")
	}
}

func TestTLSConfig(t *testing.T) {
	pool := NewEmptyPool()
	config := pool.TLSConfig()
	if config.RootCAs != pool.certPool {
		t.Error("TLSConfig().RootCAs should be the pool")
	}
	if config.MinVersion != 0x0303 { // TLS 1.2
		t.Errorf("TLSConfig().MinVersion = %v, want TLS 1.2", config.MinVersion)
	}
}

func TestClientConfig_Empty(t *testing.T) {
	config, err := ClientConfig("")
	if err != nil || config != nil {
		t.Errorf("ClientConfig(\"\") = %v, %v, want nil, nil", config, err)
	}
}

func TestClientConfig_TrustsPrivateCA(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	caFile := filepath.Join(t.TempDir(), "proxy-ca.pem")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(caFile, caPEM, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	config, err := ClientConfig(caFile)
	if err != nil {
		t.Fatalf("ClientConfig() error = %v", err)
	}

	client := &http.Client{Transport: &http.Transport{TLSClientConfig: config}}
	resp, err := client.Post(srv.URL, "", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
