package certstore

import (
	"errors"
	"testing"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/testutil"
)

func TestParseCertificate(t *testing.T) {
	p := testutil.NewCert(t, testutil.CertOptions{CommonName: "example.com", Serial: 7})

	cert, err := ParseCertificate(append(p.KeyPEM, p.CertPEM...))
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}
	if cert.Subject.CommonName != "example.com" {
		t.Errorf("CommonName = %q, want example.com", cert.Subject.CommonName)
	}

	for _, data := range [][]byte{nil, []byte("junk"), p.KeyPEM} {
		if _, err := ParseCertificate(data); !errors.Is(err, domain.ErrUnparsableCertificate) {
			t.Errorf("ParseCertificate(%q) error = %v, want ErrUnparsableCertificate", data, err)
		}
	}
}

func TestBundle(t *testing.T) {
	tests := []struct {
		name  string
		cert  string
		chain string
		want  string
	}{
		{"cert only", "CERT\n\n", "", "CERT\n"},
		{"with chain", "CERT", "\nCHAIN\n", "CERT\nCHAIN\n"},
		{"blank chain", "CERT", "  ", "CERT\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Bundle(tt.cert, tt.chain)); got != tt.want {
				t.Errorf("Bundle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCertificateFile(t *testing.T) {
	tests := map[string]bool{
		"site.pem":          true,
		"site.crt":          true,
		"site.cert":         true,
		"site.key":          false,
		".site.pem.tmp-123": false,
		".pem":              false,
		"notes.txt":         false,
	}

	for name, want := range tests {
		if got := IsCertificateFile(name); got != want {
			t.Errorf("IsCertificateFile(%q) = %v, want %v", name, got, want)
		}
	}
}
