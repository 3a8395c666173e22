package jobs

import (
	"context"
	"fmt"

	"fitsync/store"
	syncengine "fitsync/sync"
)

// SyncAllJob runs the full strategy set through the sync manager.
// Manager outcome mapping: Success and Skipped are both job success
// (skipped is explicitly not a failure); Error becomes a retryable error.
type SyncAllJob struct {
	Manager *syncengine.Manager
	UserID  string
}

func (j *SyncAllJob) Name() string { return "sync-all" }

func (j *SyncAllJob) Tag() string { return "sync" }

func (j *SyncAllJob) Run(ctx context.Context) error {
	state, err := j.Manager.SyncAll(ctx, j.UserID)
	if err != nil {
		return err
	}
	return outcomeError(state)
}

// UserSyncJob runs only the per-user strategies. With no identity available
// the job is a successful no-op; it never attempts per-user sync for the
// sentinel.
type UserSyncJob struct {
	Manager *syncengine.Manager
	UserID  string
}

func (j *UserSyncJob) Name() string { return "sync-user" }

func (j *UserSyncJob) Tag() string { return "sync:user:" + j.UserID }

func (j *UserSyncJob) Run(ctx context.Context) error {
	if j.UserID == "" || j.UserID == store.SentinelOwner {
		return nil // no authenticated identity: nothing to do
	}
	state, err := j.Manager.SyncUserData(ctx, j.UserID)
	if err != nil {
		return err
	}
	return outcomeError(state)
}

// outcomeError maps an aggregated sync state to the job result
func outcomeError(state *syncengine.State) error {
	overall := state.Overall()
	switch overall.Kind {
	case syncengine.OutcomeSuccess, syncengine.OutcomeSkipped:
		return nil
	case syncengine.OutcomeError:
		if overall.Err != nil {
			return overall.Err
		}
		return fmt.Errorf("sync failed: %s", overall.Message)
	default:
		return fmt.Errorf("unexpected outcome kind %d", overall.Kind)
	}
}
