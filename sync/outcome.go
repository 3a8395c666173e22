// Package sync implements the reconciliation engine between the local
// SQLite store and the remote document store.
package sync

import (
	"fmt"
	"time"
)

// OutcomeKind enumerates the three possible results of a strategy invocation
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeSkipped
	OutcomeError
)

// Outcome is the tri-state result of one strategy invocation. It is created
// fresh per sync attempt and never persisted. Skipped is a no-op, not an
// error.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Err     error
}

// Success returns a successful outcome
func Success() Outcome {
	return Outcome{Kind: OutcomeSuccess}
}

// Skipped returns a no-op outcome with a reason
func Skipped(reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Message: reason}
}

// Failed returns an error outcome carrying the underlying cause
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeError, Message: err.Error(), Err: err}
}

// String returns a human-readable representation of the outcome
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		if o.Message != "" {
			return "skipped: " + o.Message
		}
		return "skipped"
	case OutcomeError:
		return "error: " + o.Message
	default:
		return fmt.Sprintf("unknown outcome kind %d", o.Kind)
	}
}

// rank orders outcome kinds by severity for aggregation
func rank(k OutcomeKind) int {
	switch k {
	case OutcomeSuccess:
		return 0
	case OutcomeSkipped:
		return 1
	case OutcomeError:
		return 2
	default:
		return 3
	}
}

// Worst returns the more severe of two outcomes. Error takes precedence
// over Skipped, which takes precedence over Success.
func Worst(a, b Outcome) Outcome {
	if rank(b.Kind) > rank(a.Kind) {
		return b
	}
	return a
}

// State aggregates the per-strategy outcomes of one manager run
type State struct {
	StartedAt time.Time
	Duration  time.Duration
	Outcomes  map[string]Outcome // keyed by strategy data type
}

// Overall returns the worst outcome across every strategy attempted.
// An empty run is a success.
func (s *State) Overall() Outcome {
	overall := Success()
	for _, o := range s.Outcomes {
		overall = Worst(overall, o)
	}
	return overall
}

// Summary returns a one-line description of the run for logging
func (s *State) Summary() string {
	return fmt.Sprintf("%d strategies, overall %s, took %s", len(s.Outcomes), s.Overall(), s.Duration.Round(time.Millisecond))
}
