// Package reload tells the reverse proxy that the certificate directory
// changed.
//
// Notifier tries its transports in a fixed order and stops at the first
// success:
//
//  1. HTTP: POST with an empty body to the configured reload URL;
//     success only on 200.
//  2. Socket: connect to the proxy's stats socket, send "show ssl cert"
//     and read the reply. The stats protocol has no reload command, so
//     a clean exchange is taken as success.
//
// With no transport configured Reload succeeds without any IO. When
// every configured transport fails it returns domain.ErrReloadFailed.
//
// The same socket serves the read-only status queries CheckStatus
// ("show info") and CheckCertificateStatus ("show ssl cert"); a failed
// query yields nil rather than an error.
package reload
