package certstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yndnr/certrotate-go/internal/core/domain"
)

// File permissions for installed pairs.
const (
	CertFileMode os.FileMode = 0644
	KeyFileMode  os.FileMode = 0600
	DirMode      os.FileMode = 0750
)

// State describes what the store knows about an identifier.
type State int

const (
	// StateMissing means no indexed pair exists.
	StateMissing State = iota
	// StateUnparsable means a pair exists on disk but the certificate failed to parse.
	StateUnparsable
	// StatePresent means the pair is indexed.
	StatePresent
)

func (s State) String() string {
	switch s {
	case StateUnparsable:
		return "unparsable"
	case StatePresent:
		return "present"
	default:
		return "missing"
	}
}

// Config configures the store.
type Config struct {
	// Dir is the certificate directory. Created if missing.
	Dir string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Store is the local certificate state store.
type Store struct {
	dir    string
	logger *slog.Logger

	mu      sync.RWMutex
	records map[string]*domain.CertificateRecord
	order   []string
	broken  map[string]struct{}
	// gen counts index replacements and installs.
	gen     uint64

	// Overridable for tests.
	stage     func(dir, pattern string, data []byte, perm os.FileMode) (string, error)
	rename    func(oldpath, newpath string) error
	now       func() time.Time
	afterRead func()
}

// New creates a store rooted at cfg.Dir. It does not scan.
func New(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("certstore: dir is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.Dir, DirMode); err != nil {
		return nil, fmt.Errorf("certstore: create dir: %w", err)
	}

	return &Store{
		dir:     cfg.Dir,
		logger:  cfg.Logger.With("component", "certstore"),
		records: make(map[string]*domain.CertificateRecord),
		broken:  make(map[string]struct{}),
		stage:   stageFile,
		rename:  os.Rename,
		now:     time.Now,
	}, nil
}

// Dir returns the certificate directory.
func (s *Store) Dir() string {
	return s.dir
}

// maxScanAttempts bounds how often Scan rereads the directory when an
// Install lands between its read and its commit.
const maxScanAttempts = 3

// Scan rebuilds the index from disk and returns a snapshot of it.
//
// Files that cannot be read or parsed are logged and skipped. A
// certificate without a same-stem key file is not indexed. A read that
// raced with an Install is discarded and redone, so Scan never replaces
// the index with a view older than the last Install.
func (s *Store) Scan() (map[string]*domain.CertificateRecord, error) {
	for attempt := 1; ; attempt++ {
		s.mu.RLock()
		gen := s.gen
		s.mu.RUnlock()

		records, broken, err := s.read()
		if err != nil {
			return nil, err
		}
		if s.afterRead != nil {
			s.afterRead()
		}

		order := make([]string, 0, len(records))
		for id := range records {
			order = append(order, id)
		}
		sort.Strings(order)

		s.mu.Lock()
		if s.gen != gen && attempt < maxScanAttempts {
			s.mu.Unlock()
			s.logger.Debug("index changed during scan, rescanning", "attempt", attempt)
			continue
		}
		s.records = records
		s.order = order
		s.broken = broken
		s.gen++
		s.mu.Unlock()

		s.logger.Debug("scan complete", "certificates", len(records), "unparsable", len(broken))
		return s.snapshot(), nil
	}
}

// read parses the directory without touching the index.
func (s *Store) read() (map[string]*domain.CertificateRecord, map[string]struct{}, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("certstore: read dir %s: %w", s.dir, err)
	}

	records := make(map[string]*domain.CertificateRecord)
	broken := make(map[string]struct{})

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsCertificateFile(name) {
			continue
		}
		id := stem(name)
		if _, seen := records[id]; seen && filepath.Ext(name) != ".pem" {
			// <id>.pem is what Install writes; it wins over other extensions.
			continue
		}

		certPath := filepath.Join(s.dir, name)
		keyPath := filepath.Join(s.dir, id+".key")
		if _, err := os.Stat(keyPath); err != nil {
			s.logger.Debug("certificate without key file", "path", certPath)
			continue
		}

		raw, err := os.ReadFile(certPath)
		if err != nil {
			// Possibly removed between ReadDir and ReadFile.
			s.logger.Warn("read certificate failed", "path", certPath, "error", err)
			continue
		}
		cert, err := ParseCertificate(raw)
		if err != nil {
			s.logger.Warn("skipping unparsable certificate", "path", certPath, "error", err)
			broken[id] = struct{}{}
			continue
		}
		delete(broken, id)
		records[id] = newRecord(id, certPath, keyPath, raw, cert)
	}
	return records, broken, nil
}

func (s *Store) snapshot() map[string]*domain.CertificateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*domain.CertificateRecord, len(s.records))
	for id, r := range s.records {
		out[id] = r.Clone()
	}
	return out
}

// State reports what the index holds for id as of the last Scan or Install.
func (s *Store) State(id string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.records[id]; ok {
		return StatePresent
	}
	if _, ok := s.broken[id]; ok {
		return StateUnparsable
	}
	return StateMissing
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (*domain.CertificateRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Records returns copies of all records in index order.
func (s *Store) Records() []*domain.CertificateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.CertificateRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out
}

// Count returns the number of indexed pairs.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Lookup returns the first record, in index order, naming domain.
func (s *Store) Lookup(name string) (*domain.CertificateRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		if r := s.records[id]; r.HasDomain(name) {
			return r.Clone(), true
		}
	}
	return nil, false
}

// ExpiringWithin returns records with at most days left, soonest first.
// Expired records are included.
func (s *Store) ExpiringWithin(days int) []*domain.CertificateRecord {
	now := s.now()

	s.mu.RLock()
	out := make([]*domain.CertificateRecord, 0)
	for _, id := range s.order {
		if r := s.records[id]; r.DaysUntilExpiry(now) <= days {
			out = append(out, r.Clone())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out
}

// Install writes the pair for id and returns the certificate path.
//
// On any error the prior pair for id, if there was one, is left in
// place and the index is not touched.
func (s *Store) Install(id, certificatePEM, privateKeyPEM, chainPEM string) (string, error) {
	if err := ValidateIdentifier(id); err != nil {
		return "", err
	}
	if strings.TrimSpace(certificatePEM) == "" || strings.TrimSpace(privateKeyPEM) == "" {
		return "", domain.ErrMalformedDescriptor.WithDetails(id)
	}

	bundle := Bundle(certificatePEM, chainPEM)
	cert, err := ParseCertificate(bundle)
	if err != nil {
		return "", domain.ErrUnparsableCertificate.WithDetails(id).WithCause(err)
	}

	certPath := filepath.Join(s.dir, id+".pem")
	keyPath := filepath.Join(s.dir, id+".key")

	previous, err := os.ReadFile(certPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", writeError(id, fmt.Errorf("read current certificate: %w", err))
	}

	certTmp, err := s.stage(s.dir, "."+id+".pem.tmp-*", bundle, CertFileMode)
	if err != nil {
		return "", writeError(id, fmt.Errorf("stage certificate: %w", err))
	}
	keyTmp, err := s.stage(s.dir, "."+id+".key.tmp-*", []byte(strings.TrimSpace(privateKeyPEM)+"\n"), KeyFileMode)
	if err != nil {
		os.Remove(certTmp)
		return "", writeError(id, fmt.Errorf("stage key: %w", err))
	}

	if err := s.rename(certTmp, certPath); err != nil {
		os.Remove(certTmp)
		os.Remove(keyTmp)
		return "", writeError(id, fmt.Errorf("place certificate: %w", err))
	}
	if err := s.rename(keyTmp, keyPath); err != nil {
		os.Remove(keyTmp)
		if rbErr := s.restore(id, certPath, previous); rbErr != nil {
			s.logger.Error("certificate rollback failed", "identifier", id, "error", rbErr)
		}
		return "", writeError(id, fmt.Errorf("place key: %w", err))
	}

	s.mu.Lock()
	if _, exists := s.records[id]; !exists {
		s.order = append(s.order, id)
		sort.Strings(s.order)
	}
	s.records[id] = newRecord(id, certPath, keyPath, bundle, cert)
	delete(s.broken, id)
	s.gen++
	s.mu.Unlock()

	s.logger.Info("certificate installed", "identifier", id, "path", certPath,
		"serial", cert.SerialNumber.String(), "expires_at", cert.NotAfter.UTC())
	return certPath, nil
}

// restore puts back the certificate that was in place before a failed install.
func (s *Store) restore(id, certPath string, previous []byte) error {
	if previous == nil {
		return os.Remove(certPath)
	}
	tmp, err := stageFile(s.dir, "."+id+".pem.rollback-*", previous, CertFileMode)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, certPath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func writeError(id string, err error) error {
	return domain.ErrWrite.WithDetails(id).WithCause(err)
}

// ValidateIdentifier rejects identifiers unusable as a file stem.
func ValidateIdentifier(id string) error {
	switch {
	case id == "", id == ".", id == "..":
		return domain.ErrInvalidIdentifier.WithDetails(fmt.Sprintf("%q", id))
	case strings.ContainsAny(id, `/\`+"\x00"):
		return domain.ErrInvalidIdentifier.WithDetails(fmt.Sprintf("%q contains a path separator", id))
	case strings.HasPrefix(id, "."):
		return domain.ErrInvalidIdentifier.WithDetails(fmt.Sprintf("%q is hidden", id))
	}
	return nil
}

// stageFile writes data to a new temp file in dir and syncs it.
func stageFile(dir, pattern string, data []byte, perm os.FileMode) (string, error) {
	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	path := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Chmod(perm); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
