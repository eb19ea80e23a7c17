package remote

import (
	"context"
	"time"

	"github.com/yndnr/certrotate-go/internal/core/domain"
)

// Backend is the store-specific client a Source drives.
type Backend interface {
	// List returns metadata for every candidate entry. Tags are only
	// populated when includeTags is set.
	List(ctx context.Context, includeTags bool) ([]domain.Summary, error)

	// Get fetches the full entry. It returns an error matching
	// domain.ErrRemoteNotFound for an unknown name.
	Get(ctx context.Context, name string) (*Entry, error)
}

// Entry is one fully fetched remote secret, before identifier
// derivation and key unlocking.
type Entry struct {
	Name string
	ID   string

	Certificate      string
	PrivateKey       string
	CertificateChain string

	// DomainName is the optional explicit domain the entry is for.
	DomainName  string
	Description string

	// Passphrase is the entry's own unlock value for an encrypted key.
	Passphrase string

	VersionMarker string

	// SerialMarker marks VersionMarker as the decimal certificate serial.
	SerialMarker bool

	LastChanged time.Time
	Tags          map[string]string
}

// Recorder receives per-request outcomes. Implemented by the metrics registry.
type Recorder interface {
	ObserveRemoteRequest(operation, status string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRemoteRequest(string, string) {}
