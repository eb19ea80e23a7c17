// Package handler provides the HTTP request handlers for certrotate.
//
//   - health.go: liveness, readiness and metrics exposition
//   - sync.go: engine status, manual sync and sync history
//   - certificates.go: local certificate inventory and expiry
//   - secrets.go: remote secret store inventory (metadata only)
//   - proxy.go: proxy runtime status
//
// Every JSON reply uses the Response envelope; domain error codes map
// to HTTP status codes in errorCodeToHTTPStatus.
package handler
