package birdtag

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrRecordNotFound indicates no media record matched the lookup.
	ErrRecordNotFound = errors.New("media record not found")

	// ErrBlobStoreNotFound indicates a blob store name is not registered.
	ErrBlobStoreNotFound = errors.New("blob store not found")

	// ErrProcessingTimeout indicates polling for a sample's detection
	// result exceeded its bound. Retryable by the client.
	ErrProcessingTimeout = errors.New("processing timed out")
)

// ValidationError reports malformed caller input. It is an ordinary return
// value, never retried, and maps to a 4xx at the HTTP boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// RecordError wraps a failure of a record-level operation.
type RecordError struct {
	FileID string
	Op     string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record operation %s failed for %s: %v", e.Op, e.FileID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// StoreError wraps a blob or item store failure. These surface as 5xx and
// are not retried within a request.
type StoreError struct {
	Store string
	Key   string
	Op    string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed for key %s on %s: %v", e.Op, e.Key, e.Store, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
