package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes follow the CR-<AREA>-<NNNN> scheme; the numeric part mirrors
// the HTTP status family the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "CR-REMOTE-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Remote source errors (REMOTE)
var (
	// ErrRemoteNotFound indicates the named remote entry does not exist.
	// Non-fatal: the entry is omitted from the batch.
	ErrRemoteNotFound = NewDomainError("CR-REMOTE-4040", "remote certificate not found")

	// ErrNotExportable indicates the remote certificate exists but cannot
	// be exported in its current state. Non-fatal: the entry is skipped.
	ErrNotExportable = NewDomainError("CR-REMOTE-4220", "remote certificate not exportable")

	// ErrRemoteFailure indicates a remote call for one entry failed.
	ErrRemoteFailure = NewDomainError("CR-REMOTE-5000", "remote request failed")

	// ErrEnumeration indicates the remote candidates could not be listed.
	// Fatal to the current sync cycle.
	ErrEnumeration = NewDomainError("CR-REMOTE-5030", "remote enumeration failed")
)

// Descriptor errors (DESC)
var (
	// ErrMalformedDescriptor indicates missing certificate or key material.
	ErrMalformedDescriptor = NewDomainError("CR-DESC-4000", "malformed remote descriptor")

	// ErrKeyLocked indicates no unlock candidate decrypted the private key.
	ErrKeyLocked = NewDomainError("CR-DESC-4001", "private key could not be unlocked")
)

// Store errors (STORE)
var (
	// ErrInvalidIdentifier indicates an identifier unusable as a file stem.
	ErrInvalidIdentifier = NewDomainError("CR-STORE-4000", "invalid certificate identifier")

	// ErrUnparsableCertificate indicates PEM data that holds no usable certificate.
	ErrUnparsableCertificate = NewDomainError("CR-STORE-4220", "certificate could not be parsed")

	// ErrWrite indicates the certificate/key pair could not be written.
	ErrWrite = NewDomainError("CR-STORE-5000", "certificate write failed")
)

// Reload errors (RELOAD)
var (
	// ErrReloadFailed indicates every configured reload transport failed.
	ErrReloadFailed = NewDomainError("CR-RELOAD-5020", "all reload transports failed")
)

// Sync errors (SYNC)
var (
	// ErrSyncInProgress indicates a cycle is already running; the request was dropped.
	ErrSyncInProgress = NewDomainError("CR-SYNC-4090", "certificate sync already in progress")

	// ErrNotRunning indicates the engine has not been started or was stopped.
	ErrNotRunning = NewDomainError("CR-SYNC-5030", "sync engine is not running")
)
