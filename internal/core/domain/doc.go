// Package domain defines the core domain models for certrotate.
//
// Domain models are pure value objects without any IO dependencies
// or framework coupling. This package contains:
//
//   - CertificateRecord: a certificate/key pair installed in the local store
//   - Descriptor: a monitored certificate as held by the remote source
//   - SyncOutcome: the result of one reconciliation cycle
//   - Identifier derivation shared by the remote source and the store
//   - Errors: coded domain errors used across components
package domain
