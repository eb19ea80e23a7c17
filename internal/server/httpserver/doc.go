// Package httpserver provides the HTTP server for certrotate.
//
// This package serves the management API using stdlib net/http:
//
//   - Sync endpoints: /status, /reload, /history
//   - Inventory endpoints: /certificates, /certificates/expiring
//   - Remote and proxy status: /status/list_secrets, /status/secrets_by_tag, /status/proxy
//   - Health endpoints: /health, /ready, /metrics
//
// Every request passes through the middleware chain Recover, RequestID
// and AccessLog before it reaches the handler package.
package httpserver
