package engine

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/storage/certstore"
)

// runCycle performs one cycle. The caller must hold the syncing flag;
// it is released on every exit path.
func (e *Engine) runCycle(ctx context.Context, trigger domain.Trigger) (outcome *domain.SyncOutcome) {
	started := e.now()
	outcome = domain.NewSyncOutcome(trigger, started)

	defer e.syncing.Store(false)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("sync cycle panicked", "id", outcome.ID, "panic", r)
			outcome.Succeeded = false
			e.fail(outcome, fmt.Sprintf("unexpected failure: %v", r))
		}
		e.finish(outcome, started)
	}()

	e.logger.Info("sync cycle started", "id", outcome.ID, "trigger", string(trigger))
	e.cycle(ctx, outcome)
	return outcome
}

func (e *Engine) cycle(ctx context.Context, outcome *domain.SyncOutcome) {
	batch, err := e.source.Monitored(ctx)
	if err != nil {
		outcome.Discovery = e.source.Discovery()
		e.fail(outcome, fmt.Sprintf("enumeration: %v", err))
		return
	}
	outcome.Discovery = batch.Strategy
	for _, err := range batch.Errors {
		e.fail(outcome, err.Error())
	}

	ids := make([]string, 0, len(batch.Descriptors))
	for id := range batch.Descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	changed := make(map[string]struct{})
	for _, id := range ids {
		desc := batch.Descriptors[id]
		if err := desc.Validate(); err != nil {
			e.fail(outcome, err.Error())
			continue
		}

		need, reason := e.needsUpdate(desc)
		if !need {
			e.remember(desc)
			e.logger.Debug("certificate up to date", "identifier", id)
			continue
		}
		e.logger.Info("certificate update needed", "identifier", id, "reason", reason)

		if _, err := e.store.Install(id, desc.CertificatePEM, desc.PrivateKeyPEM, desc.CertificateChainPEM); err != nil {
			e.fail(outcome, err.Error())
			continue
		}
		e.remember(desc)
		changed[id] = struct{}{}
	}
	outcome.SetChanged(changed)

	if _, err := e.store.Scan(); err != nil {
		e.fail(outcome, fmt.Sprintf("rescan: %v", err))
	}
	e.recorder.ObserveCertificates(e.store.Records(), e.now())

	if len(changed) > 0 {
		if err := e.doReload(ctx, "sync"); err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("reload: %v", err))
		} else {
			outcome.Reloaded = true
		}
	}

	outcome.Succeeded = true
}

// needsUpdate applies the update rule in order: no local record,
// unparsable local record, changed version marker, changed content.
// With no remembered marker, only a serial marker is compared, against
// the local serial number; any other marker defers to content.
func (e *Engine) needsUpdate(desc *domain.Descriptor) (bool, string) {
	switch e.store.State(desc.Identifier) {
	case certstore.StateMissing:
		return true, "not installed"
	case certstore.StateUnparsable:
		return true, "local certificate unparsable"
	}

	local, ok := e.store.Get(desc.Identifier)
	if !ok {
		return true, "not installed"
	}

	if desc.VersionMarker != "" {
		previous, seen := e.markers[desc.Identifier]
		if !seen && desc.SerialMarker {
			previous, seen = local.SerialNumber, true
		}
		if seen && desc.VersionMarker != previous {
			return true, "version marker changed"
		}
	}

	remote := bytes.TrimSpace(certstore.Bundle(desc.CertificatePEM, desc.CertificateChainPEM))
	if !bytes.Equal(remote, bytes.TrimSpace(local.RawPEM)) {
		return true, "content changed"
	}
	return false, ""
}

func (e *Engine) remember(desc *domain.Descriptor) {
	if desc.VersionMarker != "" {
		e.markers[desc.Identifier] = desc.VersionMarker
	}
}

// fail records a non-fatal error on the outcome and the recent-errors list.
func (e *Engine) fail(outcome *domain.SyncOutcome, msg string) {
	e.logger.Error("sync error", "id", outcome.ID, "error", msg)
	outcome.Errors = append(outcome.Errors, msg)
	e.pushError(msg)
}

func (e *Engine) finish(outcome *domain.SyncOutcome, started time.Time) {
	end := e.now()
	outcome.DurationSeconds = end.Sub(started).Seconds()
	if n := len(outcome.Errors); n > e.errorHistory {
		outcome.Errors = append([]string(nil), outcome.Errors[n-e.errorHistory:]...)
	}
	if outcome.Errors == nil {
		outcome.Errors = []string{}
	}
	if outcome.ChangedIdentifiers == nil {
		outcome.ChangedIdentifiers = []string{}
	}

	e.outcomes.Push(outcome)
	e.mu.Lock()
	e.lastSync = end.UTC()
	e.mu.Unlock()
	e.recorder.ObserveSync(outcome)

	e.logger.Info("sync cycle finished",
		"id", outcome.ID,
		"succeeded", outcome.Succeeded,
		"changed", len(outcome.ChangedIdentifiers),
		"errors", len(outcome.Errors),
		"reloaded", outcome.Reloaded,
		"duration_seconds", outcome.DurationSeconds)
}
