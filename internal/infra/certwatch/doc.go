// Package certwatch bridges filesystem events in the certificate
// directory to the sync engine.
//
// A Bridge runs an fsnotify watcher on its own goroutine. Create and
// write events for certificate files (.pem, .crt, .cert) are collected
// until the directory has been quiet for the debounce period; then the
// store is rescanned once and every changed path is handed to the
// engine through its non-blocking NotifyChange. The bridge never runs
// engine logic itself. If the engine is not running the change is
// dropped with a warning.
//
// Stop signals the goroutine and waits for it to exit.
package certwatch
