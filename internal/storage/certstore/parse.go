package certstore

import (
	"crypto/x509"
	"encoding/pem"
	"strings"

	"github.com/yndnr/certrotate-go/internal/core/domain"
)

// ParseCertificate decodes the first CERTIFICATE block in data.
// Any trailing chain blocks are ignored.
func ParseCertificate(data []byte) (*x509.Certificate, error) {
	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, domain.ErrUnparsableCertificate.WithCause(err)
		}
		return cert, nil
	}
	return nil, domain.ErrUnparsableCertificate.WithDetails("no CERTIFICATE block")
}

// newRecord builds the index entry for a parsed certificate.
func newRecord(id, certPath, keyPath string, raw []byte, cert *x509.Certificate) *domain.CertificateRecord {
	names := append([]string{cert.Subject.CommonName}, cert.DNSNames...)
	return &domain.CertificateRecord{
		Identifier:      id,
		DomainNames:     domain.DedupeNames(names...),
		SerialNumber:    cert.SerialNumber.String(),
		ExpiresAt:       cert.NotAfter.UTC(),
		CertificatePath: certPath,
		KeyPath:         keyPath,
		RawPEM:          raw,
	}
}

// Bundle returns the certificate file content Install writes for the
// given certificate and optional chain.
func Bundle(certificatePEM, chainPEM string) []byte {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(certificatePEM))
	b.WriteByte('\n')
	if chain := strings.TrimSpace(chainPEM); chain != "" {
		b.WriteString(chain)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// certExtensions are the file extensions recognized as certificates.
var certExtensions = []string{".pem", ".crt", ".cert"}

// IsCertificateFile reports whether name carries a certificate extension.
// Hidden files, including in-flight install temp files, never qualify.
func IsCertificateFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	for _, ext := range certExtensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}

func stem(name string) string {
	for _, ext := range certExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
