package certwatch

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/storage/certstore"
)

// DefaultDebounce is the quiet period before pending changes are flushed.
const DefaultDebounce = 500 * time.Millisecond

// Change types reported to the Recorder.
const (
	ChangeCreated  = "created"
	ChangeModified = "modified"
)

// Scanner rebuilds the store index.
type Scanner interface {
	Scan() (map[string]*domain.CertificateRecord, error)
}

// Sink receives change notifications. Implemented by the engine.
type Sink interface {
	NotifyChange(path string, observedAt time.Time) error
}

// Recorder counts observed changes. Implemented by the metrics registry.
type Recorder interface {
	ObserveFileChange(changeType string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFileChange(string) {}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithDebounce sets the debounce period. Zero flushes every event.
func WithDebounce(d time.Duration) Option {
	return func(b *Bridge) {
		b.debounce = d
	}
}

// WithRecorder sets the change recorder.
func WithRecorder(r Recorder) Option {
	return func(b *Bridge) {
		b.recorder = r
	}
}

type pendingChange struct {
	changeType string
	observedAt time.Time
}

// Bridge forwards certificate file changes to a Sink.
type Bridge struct {
	dir      string
	scanner  Scanner
	sink     Sink
	logger   *slog.Logger
	recorder Recorder
	debounce time.Duration

	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
}

// New creates a bridge for dir. It does not start watching.
func New(dir string, scanner Scanner, sink Sink, opts ...Option) *Bridge {
	b := &Bridge{
		dir:      dir,
		scanner:  scanner,
		sink:     sink,
		logger:   slog.Default(),
		recorder: nopRecorder{},
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "certwatch")
	return b
}

// Start begins watching. It returns once the watch is established.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done != nil {
		return fmt.Errorf("certwatch: already started")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("certwatch: create watcher: %w", err)
	}
	if err := watcher.Add(b.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("certwatch: watch dir %s: %w", b.dir, err)
	}

	b.done = make(chan struct{})
	b.stopped = make(chan struct{})
	go b.run(watcher, b.done, b.stopped)

	b.logger.Info("certificate watcher started", "dir", b.dir, "debounce", b.debounce.String())
	return nil
}

// Stop stops watching and waits for the watcher goroutine to exit.
func (b *Bridge) Stop() {
	b.mu.Lock()
	done, stopped := b.done, b.stopped
	b.done = nil
	b.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-stopped
	b.logger.Info("certificate watcher stopped")
}

func (b *Bridge) run(watcher *fsnotify.Watcher, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	defer watcher.Close()

	pending := make(map[string]pendingChange)
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			changeType, relevant := classify(event)
			if !relevant {
				continue
			}
			b.logger.Debug("certificate file event", "file", event.Name, "op", event.Op.String())

			p, seen := pending[event.Name]
			if !seen {
				p.changeType = changeType
			}
			p.observedAt = time.Now()
			pending[event.Name] = p

			if b.debounce <= 0 {
				b.flush(pending)
				continue
			}
			timer.Reset(b.debounce)

		case <-timer.C:
			b.flush(pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			b.logger.Error("certificate watcher error", "error", err, "dir", b.dir)

		case <-done:
			timer.Stop()
			return
		}
	}
}

// classify keeps create and write events on certificate files.
func classify(event fsnotify.Event) (string, bool) {
	if !certstore.IsCertificateFile(filepath.Base(event.Name)) {
		return "", false
	}
	switch {
	case event.Has(fsnotify.Create):
		return ChangeCreated, true
	case event.Has(fsnotify.Write):
		return ChangeModified, true
	}
	return "", false
}

// flush rescans once and forwards every pending path.
func (b *Bridge) flush(pending map[string]pendingChange) {
	if len(pending) == 0 {
		return
	}

	// A half-written file simply fails to parse and is skipped by Scan.
	// Scan rereads if the engine installs meanwhile, so this never
	// replaces a fresher index.
	if _, err := b.scanner.Scan(); err != nil {
		b.logger.Error("rescan after file change failed", "error", err)
	}

	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		p := pending[path]
		delete(pending, path)
		b.recorder.ObserveFileChange(p.changeType)

		err := b.sink.NotifyChange(path, p.observedAt)
		switch {
		case errors.Is(err, domain.ErrNotRunning):
			b.logger.Warn("sync engine not running, dropping file change", "file", path)
		case err != nil:
			b.logger.Error("forward file change failed", "file", path, "error", err)
		default:
			b.logger.Info("certificate file changed", "file", path, "change", p.changeType)
		}
	}
}
