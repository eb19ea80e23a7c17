// Package logger provides structured logging for certrotate.
//
// It wraps log/slog:
//
//   - logger.go: handler construction and runtime level control
//   - context.go: request-scoped loggers carrying a request ID
//   - redact.go: masking of key material and credentials
//
// Components receive a *slog.Logger and add a "component" attribute.
package logger
