package jobs

import (
	"context"
	"fmt"
	"time"

	"fitsync/internal/utils"

	"github.com/cenkalti/backoff/v4"
)

const (
	// MaxRetries is the fixed retry cap: a permanently failing job is
	// attempted 1 + MaxRetries times before reporting terminal failure
	MaxRetries = 3

	// BaseDelay is the initial backoff interval between attempts
	BaseDelay = 30 * time.Second

	// AttemptTimeout is the hard wall-clock cap per attempt; a timed-out
	// attempt counts exactly like a reported error
	AttemptTimeout = 2 * time.Minute
)

// Job is one schedulable unit of background work. Tag carries the domain
// tag and, where applicable, an entity-specific suffix enabling external
// cancellation by identifier.
type Job interface {
	Name() string
	Tag() string
	Run(ctx context.Context) error
}

// Runner executes jobs under the shared retry contract: transient failures
// retry with exponential backoff up to the cap, permanent failures and
// cap exhaustion surface as terminal errors. Fields are set once at
// construction time; tests shorten the delays.
type Runner struct {
	MaxRetries     uint64
	BaseDelay      time.Duration
	AttemptTimeout time.Duration

	// Connectivity gates each attempt; nil means always online
	Connectivity func(ctx context.Context) bool
}

// NewRunner creates a runner with the standard retry contract
func NewRunner() *Runner {
	return &Runner{
		MaxRetries:     MaxRetries,
		BaseDelay:      BaseDelay,
		AttemptTimeout: AttemptTimeout,
	}
}

// Run executes the job, retrying transient failures until the cap. Only the
// terminal state is returned; intermediate retries are logged. Cancellation
// abandons the current attempt as a whole; a later run resumes from the
// same checkpoint relying on merge idempotence.
func (r *Runner) Run(ctx context.Context, job Job) error {
	attempt := 0

	op := func() error {
		attempt++

		if r.Connectivity != nil && !r.Connectivity(ctx) {
			utils.Debugf("[Jobs] %s attempt %d: network unavailable", job.Tag(), attempt)
			return fmt.Errorf("network unavailable")
		}

		actx := ctx
		if r.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, r.AttemptTimeout)
			defer cancel()
		}

		err := job.Run(actx)
		if err == nil {
			return nil
		}

		class := Classify(err)
		utils.Warnf("[Jobs] %s attempt %d failed (%s): %v", job.Tag(), attempt, class, err)
		if class == Permanent {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.BaseDelay
	bo.MaxElapsedTime = 0 // the retry cap governs, not elapsed time

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, r.MaxRetries), ctx))
	if err != nil {
		utils.Errorf("[Jobs] %s failed permanently after %d attempts: %v", job.Tag(), attempt, err)
		return fmt.Errorf("job %s failed after %d attempts: %w", job.Name(), attempt, err)
	}

	utils.Debugf("[Jobs] %s succeeded on attempt %d", job.Tag(), attempt)
	return nil
}
