package engine

import (
	"time"

	"github.com/yndnr/certrotate-go/internal/core/domain"
)

// Status is the engine's externally visible state.
type Status struct {
	IsRunning         bool          `json:"is_running"`
	SyncInProgress    bool          `json:"sync_in_progress"`
	LastSyncTime      *time.Time    `json:"last_sync_time"`
	NextSync          *time.Time    `json:"next_sync"`
	CheckInterval     string        `json:"check_interval"`
	CertificatesCount int           `json:"certificates_count"`
	Discovery         string        `json:"discovery"`
	MonitoredNames    []string      `json:"monitored_names"`
	RecentErrors      []ErrorRecord `json:"recent_errors"`
	LastReload        *ReloadRecord `json:"last_reload,omitempty"`
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	st := Status{
		IsRunning:         e.running.Load(),
		SyncInProgress:    e.syncing.Load(),
		CheckInterval:     e.interval.String(),
		CertificatesCount: e.store.Count(),
		Discovery:         e.source.Discovery(),
		MonitoredNames:    e.source.MonitoredNames(),
		RecentErrors:      e.errors.Items(),
	}
	if st.MonitoredNames == nil {
		st.MonitoredNames = []string{}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.lastSync.IsZero() {
		t := e.lastSync
		st.LastSyncTime = &t
	}
	if st.IsRunning && !e.nextSync.IsZero() {
		t := e.nextSync.UTC()
		st.NextSync = &t
	}
	if e.reload != nil {
		r := *e.reload
		st.LastReload = &r
	}
	return st
}

// History returns recorded outcomes, newest first.
func (e *Engine) History() []*domain.SyncOutcome {
	items := e.outcomes.Items()
	out := make([]*domain.SyncOutcome, len(items))
	for i, o := range items {
		out[len(items)-1-i] = o
	}
	return out
}

// LastOutcome returns the most recent outcome.
func (e *Engine) LastOutcome() (*domain.SyncOutcome, bool) {
	return e.outcomes.Last()
}

// RecentErrors returns the recent-errors list, oldest first.
func (e *Engine) RecentErrors() []ErrorRecord {
	return e.errors.Items()
}
