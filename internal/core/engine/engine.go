package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/remote"
	"github.com/yndnr/certrotate-go/internal/storage/certstore"
	"github.com/yndnr/certrotate-go/pkg/ring"
)

// Defaults.
const (
	DefaultInterval       = time.Hour
	DefaultErrorHistory   = 20
	DefaultOutcomeHistory = 10
)

// Store is the local certificate store the engine reconciles.
type Store interface {
	Scan() (map[string]*domain.CertificateRecord, error)
	State(id string) certstore.State
	Get(id string) (*domain.CertificateRecord, bool)
	Install(id, certificatePEM, privateKeyPEM, chainPEM string) (string, error)
	Records() []*domain.CertificateRecord
	Count() int
}

// Source provides the monitored remote descriptors.
type Source interface {
	Monitored(ctx context.Context) (*remote.Batch, error)
	Discovery() string
	MonitoredNames() []string
}

// Notifier tells the proxy to reload.
type Notifier interface {
	Reload(ctx context.Context) error
}

// Recorder receives cycle and inventory observations.
// Implemented by the metrics registry.
type Recorder interface {
	ObserveSync(outcome *domain.SyncOutcome)
	ObserveCertificates(records []*domain.CertificateRecord, now time.Time)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSync(*domain.SyncOutcome)                         {}
func (nopRecorder) ObserveCertificates([]*domain.CertificateRecord, time.Time) {}

// Config configures the engine.
type Config struct {
	Store    Store
	Source   Source
	Notifier Notifier

	// Interval between timer cycles.
	Interval time.Duration

	// SyncOnStart runs a cycle as soon as the loop starts.
	SyncOnStart bool

	// ErrorHistory bounds the recent-errors list and each outcome's errors.
	ErrorHistory int

	// OutcomeHistory bounds the outcome history.
	OutcomeHistory int

	Recorder Recorder
	Logger   *slog.Logger
}

// ErrorRecord is one entry of the recent-errors list.
type ErrorRecord struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// ReloadRecord describes the most recent reload attempt.
type ReloadRecord struct {
	At     time.Time `json:"at"`
	OK     bool      `json:"ok"`
	Reason string    `json:"reason"`
	Error  string    `json:"error,omitempty"`
}

type manualRequest struct {
	reply chan *domain.SyncOutcome
}

// Engine is the reconciliation engine.
type Engine struct {
	store    Store
	source   Source
	notifier Notifier
	recorder Recorder
	logger   *slog.Logger

	interval     time.Duration
	syncOnStart  bool
	errorHistory int

	running atomic.Bool
	syncing atomic.Bool

	manualCh chan manualRequest
	changeCh chan struct{}

	// Loop lifecycle, guarded by mu.
	mu       sync.RWMutex
	stopCh   chan struct{}
	doneCh   chan struct{}
	lastSync time.Time
	nextSync time.Time
	reload   *ReloadRecord

	// Pending file change, guarded by changeMu.
	changeMu      sync.Mutex
	pendingAt     time.Time
	pendingPaths  []string
	reloadStarted time.Time

	errors   *ring.Buffer[ErrorRecord]
	outcomes *ring.Buffer[*domain.SyncOutcome]

	// markers holds the version marker last seen per identifier.
	// Owned by the loop goroutine.
	markers map[string]string

	now func() time.Time
}

// New creates an engine. It does not start the loop.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil || cfg.Source == nil || cfg.Notifier == nil {
		return nil, fmt.Errorf("engine: store, source and notifier are required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ErrorHistory <= 0 {
		cfg.ErrorHistory = DefaultErrorHistory
	}
	if cfg.OutcomeHistory <= 0 {
		cfg.OutcomeHistory = DefaultOutcomeHistory
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Engine{
		store:        cfg.Store,
		source:       cfg.Source,
		notifier:     cfg.Notifier,
		recorder:     cfg.Recorder,
		logger:       cfg.Logger.With("component", "engine"),
		interval:     cfg.Interval,
		syncOnStart:  cfg.SyncOnStart,
		errorHistory: cfg.ErrorHistory,
		manualCh:     make(chan manualRequest),
		changeCh:     make(chan struct{}, 1),
		errors:       ring.New[ErrorRecord](cfg.ErrorHistory),
		outcomes:     ring.New[*domain.SyncOutcome](cfg.OutcomeHistory),
		markers:      make(map[string]string),
		now:          time.Now,
	}, nil
}

// Start launches the event loop. ctx is used for the IO of every cycle
// and reload; cancel it only when in-flight calls may be abandoned.
// Start fails while the loop of a timed-out Stop is still draining.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running.Load() {
		return fmt.Errorf("engine: already running")
	}
	if e.doneCh != nil {
		select {
		case <-e.doneCh:
		default:
			return fmt.Errorf("engine: previous loop has not exited")
		}
	}
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	e.nextSync = e.now().Add(e.interval)
	e.running.Store(true)

	go e.loop(ctx, e.stopCh, e.doneCh)

	e.logger.Info("sync engine started", "interval", e.interval.String(), "sync_on_start", e.syncOnStart)
	return nil
}

// Stop signals the loop and waits for it until ctx is done. An in-flight
// cycle is left to finish on its own if the wait times out.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running.CompareAndSwap(true, false) {
		e.mu.Unlock()
		return nil
	}
	close(e.stopCh)
	done := e.doneCh
	e.mu.Unlock()

	select {
	case <-done:
		e.logger.Info("sync engine stopped")
		return nil
	case <-ctx.Done():
		e.logger.Warn("sync engine stop timed out, in-flight cycle abandoned", "error", ctx.Err())
		return ctx.Err()
	}
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Syncing reports whether a cycle is in progress.
func (e *Engine) Syncing() bool {
	return e.syncing.Load()
}

// TriggerSync runs a manual cycle on the loop and returns its outcome.
// It returns domain.ErrSyncInProgress without waiting if a cycle is
// already running, and domain.ErrNotRunning if the loop is not active.
// If ctx ends first the cycle still completes.
func (e *Engine) TriggerSync(ctx context.Context) (*domain.SyncOutcome, error) {
	e.mu.RLock()
	stop := e.stopCh
	e.mu.RUnlock()

	if !e.running.Load() {
		return nil, domain.ErrNotRunning
	}
	if !e.syncing.CompareAndSwap(false, true) {
		e.logger.Warn("manual sync requested while a sync is in progress, dropping")
		return nil, domain.ErrSyncInProgress
	}

	req := manualRequest{reply: make(chan *domain.SyncOutcome, 1)}
	select {
	case e.manualCh <- req:
	case <-stop:
		e.syncing.Store(false)
		return nil, domain.ErrNotRunning
	case <-ctx.Done():
		e.syncing.Store(false)
		return nil, ctx.Err()
	}

	select {
	case outcome := <-req.reply:
		return outcome, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// NotifyChange reports an out-of-band change of path observed at
// observedAt. It does not block. It returns domain.ErrNotRunning when
// the loop is not active; the change is then dropped.
func (e *Engine) NotifyChange(path string, observedAt time.Time) error {
	if !e.running.Load() {
		return domain.ErrNotRunning
	}

	e.changeMu.Lock()
	if observedAt.After(e.pendingAt) {
		e.pendingAt = observedAt
	}
	e.pendingPaths = append(e.pendingPaths, path)
	e.changeMu.Unlock()

	select {
	case e.changeCh <- struct{}{}:
	default:
		// Already signalled; the pending change is folded in.
	}
	return nil
}

func (e *Engine) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	if e.syncOnStart {
		e.tryCycle(ctx, domain.TriggerStartup)
	}

	for {
		select {
		case <-stop:
			return

		case <-ticker.C:
			e.tryCycle(ctx, domain.TriggerTimer)
			// Coalesce ticks that piled up during the cycle.
			select {
			case <-ticker.C:
			default:
			}
			e.mu.Lock()
			e.nextSync = e.now().Add(e.interval)
			e.mu.Unlock()

		case req := <-e.manualCh:
			req.reply <- e.runCycle(ctx, domain.TriggerManual)

		case <-e.changeCh:
			e.handleChange(ctx)
		}
	}
}

// tryCycle runs a cycle unless one is in progress.
func (e *Engine) tryCycle(ctx context.Context, trigger domain.Trigger) *domain.SyncOutcome {
	if !e.syncing.CompareAndSwap(false, true) {
		e.logger.Warn("sync already in progress, skipping", "trigger", string(trigger))
		return nil
	}
	return e.runCycle(ctx, trigger)
}

// handleChange reloads the proxy for pending file changes.
func (e *Engine) handleChange(ctx context.Context) {
	e.changeMu.Lock()
	observedAt := e.pendingAt
	paths := e.pendingPaths
	covered := observedAt.Before(e.reloadStarted)
	e.pendingAt = time.Time{}
	e.pendingPaths = nil
	e.changeMu.Unlock()

	if len(paths) == 0 {
		return
	}
	if covered {
		e.logger.Debug("file change already covered by last reload", "paths", paths)
		return
	}

	e.logger.Info("certificate files changed, reloading proxy", "paths", paths)
	e.doReload(ctx, "file_change")
	e.recorder.ObserveCertificates(e.store.Records(), e.now())
}

// doReload calls the notifier and records the attempt.
func (e *Engine) doReload(ctx context.Context, reason string) error {
	started := e.now()
	e.changeMu.Lock()
	e.reloadStarted = started
	e.changeMu.Unlock()

	err := e.notifier.Reload(ctx)

	rec := &ReloadRecord{At: started.UTC(), OK: err == nil, Reason: reason}
	if err != nil {
		rec.Error = err.Error()
		e.pushError(fmt.Sprintf("reload: %v", err))
	}
	e.mu.Lock()
	e.reload = rec
	e.mu.Unlock()
	return err
}

func (e *Engine) pushError(msg string) {
	e.errors.Push(ErrorRecord{At: e.now().UTC(), Message: msg})
}
