// Package connection provides the HTTP client certrotate-cli uses to
// reach the certrotate API.
//
// Responses arrive in the server's envelope; ParseResponse unwraps the
// data member on success and turns error envelopes into *APIError.
package connection
