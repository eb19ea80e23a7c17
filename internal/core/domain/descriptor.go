package domain

import (
	"strings"
	"time"
)

// Descriptor is one monitored certificate candidate as held by the remote
// source. Descriptors are built fresh every cycle and never persisted.
type Descriptor struct {
	// Identifier is the key the certificate is tracked under locally.
	Identifier string `json:"identifier"`

	// Name is the remote entry's own name; ID its opaque id (e.g. ARN).
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`

	CertificatePEM      string `json:"-"`
	PrivateKeyPEM       string `json:"-"`
	CertificateChainPEM string `json:"-"`

	// VersionMarker is an opaque comparable value used for change
	// detection. Empty when the source provides none.
	VersionMarker string `json:"version_marker,omitempty"`

	// SerialMarker is set when VersionMarker is the certificate serial
	// number in decimal, comparable with CertificateRecord.SerialNumber.
	SerialMarker bool `json:"-"`

	// Tags is only consulted by tag-based discovery, never by diffing.
	Tags map[string]string `json:"tags,omitempty"`

	LastChanged time.Time `json:"last_changed,omitempty"`
}

// Validate checks that certificate and private key material are present.
func (d *Descriptor) Validate() error {
	var missing []string
	if strings.TrimSpace(d.CertificatePEM) == "" {
		missing = append(missing, "certificate")
	}
	if strings.TrimSpace(d.PrivateKeyPEM) == "" {
		missing = append(missing, "private_key")
	}
	if len(missing) > 0 {
		return ErrMalformedDescriptor.WithDetails(d.Identifier + ": missing " + strings.Join(missing, ", "))
	}
	return nil
}

// Summary is the cheap, metadata-only view of a remote entry returned by
// listing. It never carries key material.
type Summary struct {
	Name        string            `json:"name"`
	ID          string            `json:"id,omitempty"`
	Description string            `json:"description,omitempty"`
	LastChanged time.Time         `json:"last_changed,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// HasTag reports an exact key and value match.
func (s *Summary) HasTag(key, value string) bool {
	v, ok := s.Tags[key]
	return ok && v == value
}

// UnknownIdentifier is used when nothing usable can be derived.
const UnknownIdentifier = "unknown_cert"

// opaqueIDLength bounds identifiers derived from an opaque remote id.
const opaqueIDLength = 16

// DeriveIdentifier picks the local storage key for a remote entry.
// It prefers the explicit domain name, then the remote entry name, then
// a truncated tail of the opaque id.
func DeriveIdentifier(domainName, name, id string) string {
	if domainName = strings.TrimSpace(domainName); domainName != "" {
		r := strings.NewReplacer("*", "wildcard", ".", "_")
		return r.Replace(domainName)
	}
	if name = strings.TrimSpace(name); name != "" {
		r := strings.NewReplacer("/", "_", ":", "_")
		return r.Replace(name)
	}
	if id = strings.TrimSpace(id); id != "" {
		if idx := strings.LastIndexAny(id, "/:"); idx >= 0 {
			id = id[idx+1:]
		}
		if len(id) > opaqueIDLength {
			id = id[:opaqueIDLength]
		}
		if id != "" {
			return id
		}
	}
	return UnknownIdentifier
}
