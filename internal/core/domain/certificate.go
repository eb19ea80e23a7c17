package domain

import (
	"math"
	"sort"
	"time"
)

// CertificateRecord is one certificate/key pair installed in the local store.
//
// A record exists only when both files are present and the certificate
// parsed; a pair that fails to parse is never partially present.
type CertificateRecord struct {
	// Identifier is the file stem, unique within the store.
	Identifier string `json:"identifier"`

	// DomainNames holds the subject CN and DNS SANs, deduplicated and sorted.
	DomainNames []string `json:"domain_names"`

	SerialNumber string    `json:"serial_number"`
	ExpiresAt    time.Time `json:"expires_at"`

	CertificatePath string `json:"certificate_path"`
	KeyPath         string `json:"key_path"`

	// RawPEM is the certificate file content (certificate plus chain).
	RawPEM []byte `json:"-"`
}

// DaysUntilExpiry returns the whole days left before expiry, rounded
// down. Any certificate past its not-after date yields a negative value.
func (r *CertificateRecord) DaysUntilExpiry(now time.Time) int {
	return int(math.Floor(r.ExpiresAt.Sub(now).Hours() / 24))
}

// IsExpired reports whether DaysUntilExpiry is negative.
func (r *CertificateRecord) IsExpired(now time.Time) bool {
	return r.DaysUntilExpiry(now) < 0
}

// HasDomain reports whether domain is one of the record's names.
func (r *CertificateRecord) HasDomain(domain string) bool {
	for _, d := range r.DomainNames {
		if d == domain {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record.
func (r *CertificateRecord) Clone() *CertificateRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.DomainNames = append([]string(nil), r.DomainNames...)
	c.RawPEM = append([]byte(nil), r.RawPEM...)
	return &c
}

// DedupeNames returns names without duplicates or empty entries, sorted.
func DedupeNames(names ...string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
