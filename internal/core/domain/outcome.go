package domain

import (
	"crypto/rand"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Trigger names what started a sync cycle.
type Trigger string

const (
	TriggerTimer   Trigger = "timer"
	TriggerManual  Trigger = "manual"
	TriggerStartup Trigger = "startup"
)

// SyncOutcome is the result of one reconciliation cycle.
type SyncOutcome struct {
	ID      string  `json:"id"`
	Trigger Trigger `json:"trigger"`

	// Discovery is the strategy that produced the descriptor set.
	Discovery string `json:"discovery"`

	ChangedIdentifiers []string `json:"changed_identifiers"`
	Errors             []string `json:"errors"`

	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	Succeeded       bool      `json:"succeeded"`

	// Reloaded is true when a reload was attempted and succeeded.
	Reloaded bool `json:"reloaded"`
}

// NewSyncOutcome creates an outcome with a fresh ULID.
func NewSyncOutcome(trigger Trigger, startedAt time.Time) *SyncOutcome {
	id, err := ulid.New(ulid.Timestamp(startedAt), ulid.Monotonic(rand.Reader, 0))
	outcome := &SyncOutcome{
		Trigger:   trigger,
		StartedAt: startedAt.UTC(),
	}
	if err == nil {
		outcome.ID = "sync-" + strings.ToLower(id.String())
	}
	return outcome
}

// SetChanged stores the changed identifier set in sorted order.
func (o *SyncOutcome) SetChanged(changed map[string]struct{}) {
	ids := make([]string, 0, len(changed))
	for id := range changed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	o.ChangedIdentifiers = ids
}

// Changed reports whether identifier was installed during the cycle.
func (o *SyncOutcome) Changed(identifier string) bool {
	i := sort.SearchStrings(o.ChangedIdentifiers, identifier)
	return i < len(o.ChangedIdentifiers) && o.ChangedIdentifiers[i] == identifier
}
