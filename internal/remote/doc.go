// Package remote fetches the certificates to monitor from a remote
// secret store.
//
// A Backend does the store-specific IO: cheap metadata listing and a
// full fetch by name. Source layers the discovery strategies on top:
//
//   - explicit: fetch a configured, ordered list of names
//   - tag-based: list everything, keep exact key/value tag matches,
//     then fetch only the matches
//
// Monitored prefers tag-based discovery when a tag pair is configured
// and falls back to the explicit names for that call only if listing
// fails. A missing entry is skipped; any other per-entry failure is
// collected in the Batch without aborting it. Only a listing failure
// is returned as an error.
//
// Encrypted private keys are unlocked by trying an ordered list of
// candidate passphrases.
package remote
