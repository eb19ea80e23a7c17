// Package metric provides Prometheus metrics for certrotate.
//
// Registry owns a dedicated prometheus.Registry and implements the
// recorder interfaces of the engine, the remote source, the reload
// notifier and the file-change bridge. Handler exposes it at /metrics.
package metric
