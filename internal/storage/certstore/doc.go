// Package certstore owns the local certificate directory.
//
// The directory holds one pair per identifier:
//
//	<identifier>.pem   certificate, optionally followed by its chain (0644)
//	<identifier>.key   private key (0600)
//
// Store keeps an in-memory index rebuilt by Scan. A pair is indexed only
// when both files exist and the certificate parses; everything else is
// reported as missing or unparsable through State.
//
// Install stages both files as temp files in the same directory and
// renames them into place, certificate first. If the key cannot be put
// in place the previous certificate is restored, so a failed install
// never leaves a mixed pair on disk.
//
// Thread Safety:
//
// All methods are safe for concurrent use; the index is guarded by a
// RWMutex and Scan swaps in a fully built index.
package certstore
