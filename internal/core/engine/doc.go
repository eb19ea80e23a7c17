// Package engine drives certificate reconciliation.
//
// All engine logic runs on one event-loop goroutine started by Start.
// The loop selects over:
//
//   - the interval ticker (timer cycles, coalesced: a tick that arrives
//     while a cycle runs is absorbed)
//   - manual requests from TriggerSync
//   - file change notifications from NotifyChange
//   - the stop signal
//
// At most one cycle runs at a time. The syncing flag is taken with a
// compare-and-swap before a cycle starts and released in a defer, so a
// request that finds it set is dropped with ErrSyncInProgress instead
// of queued.
//
// NotifyChange is safe to call from any goroutine. It never executes
// engine logic itself; it records the change and wakes the loop, which
// then issues the reload. Changes observed before the start of the most
// recent reload are already covered by it and are skipped.
//
// A cycle:
//
//  1. fetch the monitored descriptors (enumeration failure fails the cycle)
//  2. decide per identifier whether an update is needed
//  3. install what changed; per-identifier failures are recorded only
//  4. rescan the store
//  5. reload the proxy if anything changed; a reload failure is recorded
//     but does not fail the cycle
//  6. record the SyncOutcome and status
package engine
