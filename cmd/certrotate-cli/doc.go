// Package main provides the entry point for certrotate-cli.
//
// The CLI talks to a running certrotate-server over its HTTP API:
//
//   - status, history: engine state and recent sync outcomes
//   - sync: run one cycle now and wait for the outcome
//   - certs: installed certificates and upcoming expiries
//   - secrets: remote secret inventory (metadata only)
//   - proxy: proxy runtime status
//
// Usage:
//
//	certrotate-cli [global flags] command [flags]
//	certrotate-cli -s localhost:8000 certs expiring --days 14
//	certrotate-cli -o json status
package main
