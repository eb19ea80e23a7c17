// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"
)

// CertOptions describes a self-signed test certificate.
type CertOptions struct {
	CommonName string
	DNSNames   []string
	Serial     int64
	NotAfter   time.Time
}

// Pair is a PEM-encoded certificate and its unencrypted private key.
type Pair struct {
	CertPEM []byte
	KeyPEM  []byte
	Key     *ecdsa.PrivateKey
}

// NewCert generates a self-signed ECDSA P-256 certificate.
// Zero options fall back to CN test.local, a random serial and 24h validity.
func NewCert(t testing.TB, opts CertOptions) Pair {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	if opts.CommonName == "" {
		opts.CommonName = "test.local"
	}
	serial := big.NewInt(opts.Serial)
	if opts.Serial == 0 {
		serial, _ = rand.Int(rand.Reader, big.NewInt(1000000))
		serial.Add(serial, big.NewInt(1))
	}
	notAfter := opts.NotAfter
	if notAfter.IsZero() {
		notAfter = time.Now().Add(24 * time.Hour)
	}
	notBefore := time.Now().Add(-time.Hour)
	if notAfter.Before(notBefore) {
		notBefore = notAfter.Add(-24 * time.Hour)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   opts.CommonName,
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              opts.DNSNames,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey() error = %v", err)
	}

	return Pair{
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}),
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
		Key:     key,
	}
}

// EncryptKey returns the pair's key as a legacy passphrase-encrypted PEM block.
func EncryptKey(t testing.TB, p Pair, passphrase string) []byte {
	t.Helper()

	keyDER, err := x509.MarshalECPrivateKey(p.Key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey() error = %v", err)
	}
	// Legacy RFC 1423 encryption, the format the remote store carries.
	block, err := x509.EncryptPEMBlock(rand.Reader, "EC PRIVATE KEY", keyDER, []byte(passphrase), x509.PEMCipherAES256) //nolint:staticcheck // legacy format under test
	if err != nil {
		t.Fatalf("EncryptPEMBlock() error = %v", err)
	}
	return pem.EncodeToMemory(block)
}
