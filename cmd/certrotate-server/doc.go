// Package main provides the entry point for certrotate-server.
//
// certrotate-server keeps a proxy's certificate directory in step with
// a remote secret store:
//
//   - periodic and on-demand sync from AWS Secrets Manager
//   - atomic install of changed certificate/key pairs
//   - proxy reload over HTTP with a stats-socket fallback
//   - reload on out-of-band changes to the certificate directory
//   - HTTP API for status, inventory and Prometheus metrics
//
// Usage:
//
//	certrotate-server [flags]
//	certrotate-server --config /etc/certrotate/config.yaml
//
// Every setting can also be given as a CERTROTATE_* environment
// variable, e.g. CERTROTATE_SYNC__CHECK_INTERVAL=15m.
package main
