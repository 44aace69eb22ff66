package api

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrStoreNotFound marks a 404 on a single-store read. A store that
	// vanished between polls (reached DELETED and was unlisted) surfaces as
	// this, and callers treat it as an empty result, not a failure.
	ErrStoreNotFound = errors.New("store not found")
)

// APIError wraps a request the server accepted transport-wise but rejected,
// e.g. a duplicate subdomain or an invalid name on create.
type APIError struct {
	Op         string // Operation: "list", "get", "create", "delete", "audit"
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provisioning api %s error (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provisioning api %s error: %s", e.Op, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// TransportError wraps connectivity and timeout failures. These are
// recoverable: the next poll tick retries, and read paths keep serving the
// last cached value instead of surfacing them.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provisioning api %s transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStoreNotFound)
}

// IsTransport returns true if the error is a transport-level failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
