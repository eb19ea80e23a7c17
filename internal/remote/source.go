package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yndnr/certrotate-go/internal/core/domain"
)

// Discovery strategy names as reported in status and outcomes.
const (
	DiscoveryTag      = "tag-based"
	DiscoveryExplicit = "explicit"
	DiscoveryNone     = "none"
)

// Config configures a Source.
type Config struct {
	Backend Backend

	// SecretNames is the ordered explicit name list.
	SecretNames []string

	// TagKey and TagValue select entries for tag-based discovery.
	// Both must be set for it to be active.
	TagKey   string
	TagValue string

	// Passphrases are unlock candidates tried after an entry's own passphrase.
	Passphrases []string

	Recorder Recorder
	Logger   *slog.Logger
}

// Batch is the result of one fetch.
type Batch struct {
	// Descriptors is keyed by identifier.
	Descriptors map[string]*domain.Descriptor

	// Errors holds per-entry failures that did not abort the batch.
	Errors []error

	// Strategy is the discovery strategy that produced the batch.
	Strategy string
}

func newBatch(strategy string) *Batch {
	return &Batch{
		Descriptors: make(map[string]*domain.Descriptor),
		Strategy:    strategy,
	}
}

// Source is the remote certificate source.
type Source struct {
	backend     Backend
	names       []string
	tagKey      string
	tagValue    string
	passphrases []string
	recorder    Recorder
	logger      *slog.Logger
}

// NewSource creates a Source.
func NewSource(cfg Config) (*Source, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("remote: backend is required")
	}
	if (cfg.TagKey == "") != (cfg.TagValue == "") {
		return nil, fmt.Errorf("remote: tag key and tag value must be set together")
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Source{
		backend:     cfg.Backend,
		names:       append([]string(nil), cfg.SecretNames...),
		tagKey:      cfg.TagKey,
		tagValue:    cfg.TagValue,
		passphrases: append([]string(nil), cfg.Passphrases...),
		recorder:    cfg.Recorder,
		logger:      cfg.Logger.With("component", "remote"),
	}, nil
}

// Discovery returns the configured strategy.
func (s *Source) Discovery() string {
	switch {
	case s.tagKey != "":
		return DiscoveryTag
	case len(s.names) > 0:
		return DiscoveryExplicit
	default:
		return DiscoveryNone
	}
}

// MonitoredNames returns the explicit name list.
func (s *Source) MonitoredNames() []string {
	return append([]string(nil), s.names...)
}

// Tag returns the configured tag pair.
func (s *Source) Tag() (key, value string) {
	return s.tagKey, s.tagValue
}

// ListAll returns metadata for every remote entry.
func (s *Source) ListAll(ctx context.Context, includeTags bool) ([]domain.Summary, error) {
	summaries, err := s.backend.List(ctx, includeTags)
	if err != nil {
		s.recorder.ObserveRemoteRequest("list", "error")
		return nil, domain.ErrEnumeration.WithCause(err)
	}
	s.recorder.ObserveRemoteRequest("list", "success")
	return summaries, nil
}

// ListByTag returns metadata for entries carrying the exact tag pair,
// without fetching key material.
func (s *Source) ListByTag(ctx context.Context, key, value string) ([]domain.Summary, error) {
	all, err := s.ListAll(ctx, true)
	if err != nil {
		return nil, err
	}
	matches := make([]domain.Summary, 0)
	for i := range all {
		if all[i].HasTag(key, value) {
			matches = append(matches, all[i])
		}
	}
	return matches, nil
}

// Monitored fetches the configured monitored set.
func (s *Source) Monitored(ctx context.Context) (*Batch, error) {
	switch s.Discovery() {
	case DiscoveryTag:
		batch, err := s.FetchByTag(ctx, s.tagKey, s.tagValue)
		if err == nil {
			return batch, nil
		}
		if len(s.names) == 0 {
			return nil, err
		}
		s.logger.Warn("tag discovery failed, falling back to explicit names",
			"tag_key", s.tagKey, "names", len(s.names), "error", err)
		batch, fbErr := s.FetchByNames(ctx, s.names)
		if fbErr != nil {
			return nil, fbErr
		}
		batch.Errors = append([]error{err}, batch.Errors...)
		return batch, nil
	case DiscoveryExplicit:
		return s.FetchByNames(ctx, s.names)
	default:
		return newBatch(DiscoveryNone), nil
	}
}

// FetchByNames fetches each name in order.
// It only fails when ctx is done.
func (s *Source) FetchByNames(ctx context.Context, names []string) (*Batch, error) {
	batch := newBatch(DiscoveryExplicit)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.fetchInto(ctx, batch, name)
	}
	return batch, nil
}

// FetchByTag lists all entries, keeps exact tag matches and fetches them.
func (s *Source) FetchByTag(ctx context.Context, key, value string) (*Batch, error) {
	matches, err := s.ListByTag(ctx, key, value)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("tag discovery", "tag_key", key, "tag_value", value, "matches", len(matches))

	batch := newBatch(DiscoveryTag)
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := m.Name
		if name == "" {
			name = m.ID
		}
		s.fetchInto(ctx, batch, name)
	}
	return batch, nil
}

func (s *Source) fetchInto(ctx context.Context, batch *Batch, name string) {
	entry, err := s.backend.Get(ctx, name)
	switch {
	case errors.Is(err, domain.ErrRemoteNotFound):
		s.recorder.ObserveRemoteRequest("get", "not_found")
		s.logger.Warn("remote certificate not found", "name", name)
		return
	case errors.Is(err, domain.ErrNotExportable):
		s.recorder.ObserveRemoteRequest("get", "not_exportable")
		s.logger.Warn("remote certificate not exportable, skipping", "name", name, "error", err)
		return
	case err != nil:
		s.recorder.ObserveRemoteRequest("get", "error")
		s.logger.Error("fetch remote certificate failed", "name", name, "error", err)
		batch.Errors = append(batch.Errors, domain.ErrRemoteFailure.WithDetails(name).WithCause(err))
		return
	}
	s.recorder.ObserveRemoteRequest("get", "success")

	desc, err := s.describe(entry)
	if err != nil {
		s.logger.Error("unlock private key failed", "name", name, "identifier", desc.Identifier, "error", err)
		batch.Errors = append(batch.Errors, fmt.Errorf("%s: %w", desc.Identifier, err))
		return
	}
	if prev, dup := batch.Descriptors[desc.Identifier]; dup {
		s.logger.Warn("duplicate identifier, keeping last", "identifier", desc.Identifier,
			"previous", prev.Name, "name", desc.Name)
	}
	batch.Descriptors[desc.Identifier] = desc
}

// describe converts an entry into a descriptor, unlocking its key.
// The descriptor is returned even on error so callers can name it.
func (s *Source) describe(e *Entry) (*domain.Descriptor, error) {
	desc := &domain.Descriptor{
		Identifier:          domain.DeriveIdentifier(e.DomainName, e.Name, e.ID),
		Name:                e.Name,
		ID:                  e.ID,
		CertificatePEM:      e.Certificate,
		PrivateKeyPEM:       e.PrivateKey,
		CertificateChainPEM: e.CertificateChain,
		VersionMarker:       e.VersionMarker,
		SerialMarker:        e.SerialMarker,
		Tags:                e.Tags,
		LastChanged:         e.LastChanged,
	}
	if e.PrivateKey == "" {
		return desc, nil
	}

	candidates := make([]string, 0, len(s.passphrases)+1)
	candidates = append(candidates, e.Passphrase)
	candidates = append(candidates, s.passphrases...)
	key, err := UnlockKey(e.PrivateKey, candidates)
	if err != nil {
		return desc, err
	}
	desc.PrivateKeyPEM = key
	return desc, nil
}
