// Package jobs drives sync outside the interactive path: connectivity
// gating, bounded retry with exponential backoff, and attempt accounting.
package jobs

import (
	"context"
	"errors"
	"net"

	"fitsync/store"
)

// Class buckets a failure for the retry driver
type Class int

const (
	// Transient failures are retried up to the attempt cap
	Transient Class = iota
	// Permanent failures fail the job immediately, no retry
	Permanent
)

// String returns the class label for logging
func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Classify maps any underlying failure into Transient or Permanent. This is
// the single branching point for retry decisions; callers never inspect
// concrete error types themselves. Callers classify only after observing a
// failure; a nil err classifies as Transient, so a caller that misuses the
// contract still terminates at the retry cap.
//
// Timeouts, network errors, server errors and storage hiccups are
// transient. Client-side errors the remote will keep rejecting (bad auth,
// malformed request) are permanent, except 408 and 429 which the server
// asks us to retry.
func Classify(err error) Class {
	if err == nil {
		return Transient
	}

	var se *store.StoreError
	if errors.As(err, &se) {
		if se.IsTimeout() {
			return Transient
		}
		if se.StatusCode == 429 {
			return Transient
		}
		if se.StatusCode >= 400 && se.StatusCode < 500 {
			return Permanent
		}
		return Transient
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient
	}

	// Unknown causes get the benefit of the retry cap.
	return Transient
}
