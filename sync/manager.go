package sync

import (
	"context"
	"fmt"
	"time"

	"fitsync/internal/utils"
	"fitsync/store"
	"fitsync/store/sqlite"
)

// IdentityProvider supplies the stable per-installation identifier used in
// the remote sync metadata record.
type IdentityProvider interface {
	ID() (string, error)
}

// Manager orchestrates the full set of sync strategies. It owns no records
// itself; each strategy owns its own record types. Strategies run
// sequentially so an earlier strategy's merged state (the exercise catalog)
// can be relied on by a later one (workout sets referencing exercises).
type Manager struct {
	local      *sqlite.DB
	remote     store.RemoteStore
	identity   IdentityProvider
	deviceName string
	strategies []Strategy
}

// NewManager creates a manager with the default strategy set, in dependency
// order: shared catalog first, then user data.
func NewManager(local *sqlite.DB, remote store.RemoteStore, identity IdentityProvider, deviceName string) *Manager {
	return &Manager{
		local:      local,
		remote:     remote,
		identity:   identity,
		deviceName: deviceName,
		strategies: []Strategy{
			NewExerciseCatalogStrategy(local, remote),
			NewWorkoutStrategy(local, remote),
			NewSnapshotStrategy(local, remote),
		},
	}
}

// NewManagerWithStrategies creates a manager over an explicit strategy list
func NewManagerWithStrategies(local *sqlite.DB, remote store.RemoteStore, identity IdentityProvider, deviceName string, strategies []Strategy) *Manager {
	return &Manager{
		local:      local,
		remote:     remote,
		identity:   identity,
		deviceName: deviceName,
		strategies: strategies,
	}
}

// SyncAll runs every registered strategy's download-then-upload sequence.
// userID is the acting user; with no authenticated user (empty or the
// sentinel) per-user strategies report Skipped instead of running. One
// strategy's failure does not block the others.
func (m *Manager) SyncAll(ctx context.Context, userID string) (*State, error) {
	return m.run(ctx, userID, false)
}

// SyncUserData runs only the per-user strategies for the given user
func (m *Manager) SyncUserData(ctx context.Context, userID string) (*State, error) {
	if !authenticated(userID) {
		return nil, fmt.Errorf("cannot sync user data without an authenticated user")
	}
	return m.run(ctx, userID, true)
}

// FullSync clears every checkpoint and then syncs everything from scratch
func (m *Manager) FullSync(ctx context.Context, userID string) (*State, error) {
	if err := m.local.ClearCheckpoints(); err != nil {
		return nil, fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return m.SyncAll(ctx, userID)
}

func (m *Manager) run(ctx context.Context, userID string, userOnly bool) (*State, error) {
	state := &State{
		StartedAt: time.Now(),
		Outcomes:  make(map[string]Outcome),
	}

	userSynced := false
	for _, s := range m.strategies {
		if userOnly && !s.UserScoped() {
			continue
		}
		if s.UserScoped() && !authenticated(userID) {
			state.Outcomes[s.DataType()] = Skipped("no authenticated user")
			continue
		}

		outcome := m.runStrategy(ctx, s, userID)
		state.Outcomes[s.DataType()] = outcome
		if s.UserScoped() && outcome.Kind == OutcomeSuccess {
			userSynced = true
		}
	}

	if userSynced {
		m.recordSyncMetadata(ctx, userID)
	}

	state.Duration = time.Since(state.StartedAt)
	utils.Infof("[Sync] %s", state.Summary())
	return state, nil
}

// runStrategy executes one strategy's download-then-upload sequence and
// advances its checkpoints on success
func (m *Manager) runStrategy(ctx context.Context, s Strategy, userID string) Outcome {
	owner := ""
	if s.UserScoped() {
		owner = userID
	}

	downloadSince, uploadSince, err := m.local.Checkpoint(s.DataType(), owner)
	if err != nil {
		return Failed(err)
	}

	// The watermark is taken before the pass so records changing mid-pass
	// are re-examined next time. Merge is idempotent, so overlap is safe.
	passStart := time.Now()

	if err := s.DownloadAndMerge(ctx, userID, downloadSince); err != nil {
		utils.Warnf("[Sync] %s download failed: %v", s.DataType(), err)
		return Failed(err)
	}
	if err := m.local.SetDownloadCheckpoint(s.DataType(), owner, passStart); err != nil {
		return Failed(err)
	}

	if err := s.UploadChanges(ctx, userID, uploadSince); err != nil {
		utils.Warnf("[Sync] %s upload failed: %v", s.DataType(), err)
		return Failed(err)
	}
	if err := m.local.SetUploadCheckpoint(s.DataType(), owner, passStart); err != nil {
		return Failed(err)
	}

	return Success()
}

// recordSyncMetadata writes the per-(user, installation) record noting that
// this installation synchronized. Failure is logged, not surfaced: the
// record scopes reporting, it does not gate correctness.
func (m *Manager) recordSyncMetadata(ctx context.Context, userID string) {
	if m.identity == nil {
		return
	}
	installID, err := m.identity.ID()
	if err != nil {
		utils.Warnf("[Sync] could not resolve installation id: %v", err)
		return
	}
	err = m.remote.PutSyncMetadata(ctx, userID, store.SyncMetadata{
		InstallationID: installID,
		DeviceName:     m.deviceName,
	})
	if err != nil {
		utils.Warnf("[Sync] could not record sync metadata: %v", err)
	}
}

// authenticated reports whether userID names a real signed-in user
func authenticated(userID string) bool {
	return userID != "" && userID != store.SentinelOwner
}
