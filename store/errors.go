package store

import (
	"context"
	"errors"
	"fmt"
)

// StoreError represents an error from a local or remote store operation.
// It provides structured error information including HTTP status codes,
// operation context, and the underlying error.
type StoreError struct {
	Op         string // e.g., "ListWorkouts", "UpsertSnapshot"
	StatusCode int    // HTTP status code (0 if not an HTTP error)
	Message    string // Human-readable error message
	RecordID   string // Optional: affected record id
	Err        error  // Optional: underlying error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error for error wrapping
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error is a 404 Not Found
func (e *StoreError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized returns true if the error is a 401 Unauthorized or 403 Forbidden
func (e *StoreError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsServerError returns true if the error is a 5xx server error
func (e *StoreError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsTimeout returns true for request timeouts, either reported by the remote
// (408) or raised locally through context deadlines.
func (e *StoreError) IsTimeout() bool {
	return e.StatusCode == 408 || errors.Is(e.Err, context.DeadlineExceeded)
}

// NewStoreError creates a new StoreError
func NewStoreError(op string, statusCode int, message string) *StoreError {
	return &StoreError{
		Op:         op,
		StatusCode: statusCode,
		Message:    message,
	}
}

// WithRecordID adds the affected record id to the error for context
func (e *StoreError) WithRecordID(id string) *StoreError {
	e.RecordID = id
	return e
}

// WithError wraps an underlying error
func (e *StoreError) WithError(err error) *StoreError {
	e.Err = err
	return e
}
