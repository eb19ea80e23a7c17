package remote

import (
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/yndnr/certrotate-go/internal/core/domain"
)

// UnlockKey returns keyPEM with its private key decrypted by the first
// candidate that works. Both PKCS#8 ENCRYPTED PRIVATE KEY blocks and
// legacy RFC 1423 blocks are handled; keys that are not encrypted are
// returned as is. When every candidate fails it returns domain.ErrKeyLocked.
func UnlockKey(keyPEM string, candidates []string) (string, error) {
	block, _ := pem.Decode([]byte(keyPEM))
	if block == nil {
		return keyPEM, nil
	}

	var decrypt func(passphrase []byte) ([]byte, error)
	outType := block.Type
	switch {
	case block.Type == "ENCRYPTED PRIVATE KEY":
		decrypt = func(passphrase []byte) ([]byte, error) {
			return decryptPKCS8(block.Bytes, passphrase)
		}
		outType = "PRIVATE KEY"
	case x509.IsEncryptedPEMBlock(block): //nolint:staticcheck // legacy exports still use RFC 1423
		decrypt = func(passphrase []byte) ([]byte, error) {
			return x509.DecryptPEMBlock(block, passphrase) //nolint:staticcheck // see above
		}
	default:
		return keyPEM, nil
	}

	tried := 0
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		tried++
		der, err := decrypt([]byte(candidate))
		if err != nil {
			continue
		}
		// A wrong passphrase can still pass the padding check.
		if !isPrivateKeyDER(der) {
			continue
		}
		return string(pem.EncodeToMemory(&pem.Block{Type: outType, Bytes: der})), nil
	}

	if tried == 0 {
		return "", domain.ErrKeyLocked.WithCause(errors.New("no passphrase configured"))
	}
	return "", domain.ErrKeyLocked.WithCause(x509.IncorrectPasswordError)
}

func isPrivateKeyDER(der []byte) bool {
	if _, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return true
	}
	if _, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return true
	}
	if _, err := x509.ParseECPrivateKey(der); err == nil {
		return true
	}
	return false
}
