package sync

import (
	"context"
	"fmt"
	"time"

	"fitsync/internal/utils"
	"fitsync/store"
	"fitsync/store/sqlite"
)

// SnapshotStrategy syncs user-owned body-progress snapshots. Snapshots have
// no child collection, so the merge is scalar-only last-write-wins.
type SnapshotStrategy struct {
	local  *sqlite.DB
	remote store.RemoteStore
}

// NewSnapshotStrategy creates the progress snapshot strategy
func NewSnapshotStrategy(local *sqlite.DB, remote store.RemoteStore) *SnapshotStrategy {
	return &SnapshotStrategy{local: local, remote: remote}
}

func (s *SnapshotStrategy) DataType() string { return "snapshots" }

func (s *SnapshotStrategy) UserScoped() bool { return true }

// DownloadAndMerge fetches the user's remote snapshots changed since the
// checkpoint and merges each under last-write-wins
func (s *SnapshotStrategy) DownloadAndMerge(ctx context.Context, userID string, since time.Time) error {
	docs, err := s.remote.ListSnapshots(ctx, userID, since)
	if err != nil {
		return fmt.Errorf("failed to list remote snapshots: %w", err)
	}

	for _, doc := range docs {
		if err := s.mergeSnapshot(userID, doc); err != nil {
			return fmt.Errorf("failed to merge snapshot %s: %w", doc.RemoteID, err)
		}
	}

	utils.Debugf("[Sync] snapshots: %d remote documents processed for %s", len(docs), userID)
	return nil
}

func (s *SnapshotStrategy) mergeSnapshot(userID string, doc store.SnapshotDoc) error {
	local, err := s.local.FindSnapshotByRemoteID(doc.RemoteID)
	if err != nil {
		return err
	}
	if local == nil {
		local, err = s.local.FindSnapshotByID(doc.ClientID)
		if err != nil {
			return err
		}
	}

	var localUpdated time.Time
	if local != nil {
		localUpdated = local.UpdatedAt
	}
	d := Resolve(localUpdated, doc.LastModified, local != nil)

	if d.InsertNew {
		id := doc.ClientID
		if id == "" {
			id = store.NewRecordID()
		}
		return s.local.InsertSnapshot(store.ProgressSnapshot{
			ID:           id,
			RemoteID:     doc.RemoteID,
			OwnerID:      userID,
			MeasuredAt:   doc.MeasuredAt,
			BodyWeightKG: doc.BodyWeightKG,
			BodyFatPct:   doc.BodyFatPct,
			UpdatedAt:    doc.LastModified,
		})
	}

	if !d.UpdateScalars {
		return nil // local is newer or equal; nothing to replace
	}

	return s.local.UpdateSnapshot(store.ProgressSnapshot{
		ID:           local.ID,
		RemoteID:     doc.RemoteID,
		OwnerID:      local.OwnerID,
		MeasuredAt:   doc.MeasuredAt,
		BodyWeightKG: doc.BodyWeightKG,
		BodyFatPct:   doc.BodyFatPct,
		UpdatedAt:    doc.LastModified,
	})
}

// UploadChanges pushes the user's snapshots modified since the checkpoint
func (s *SnapshotStrategy) UploadChanges(ctx context.Context, userID string, since time.Time) error {
	snaps, err := s.local.ListSnapshotsModifiedSince(userID, since)
	if err != nil {
		return fmt.Errorf("failed to list modified snapshots: %w", err)
	}

	for _, snap := range snaps {
		remoteID, err := s.remote.UpsertSnapshot(ctx, userID, store.SnapshotDoc{
			RemoteID:     snap.RemoteID,
			ClientID:     snap.ID,
			OwnerID:      snap.OwnerID,
			MeasuredAt:   snap.MeasuredAt,
			BodyWeightKG: snap.BodyWeightKG,
			BodyFatPct:   snap.BodyFatPct,
		})
		if err != nil {
			return fmt.Errorf("failed to upload snapshot %s: %w", snap.ID, err)
		}

		if snap.RemoteID == "" && remoteID != "" {
			if err := s.local.SetSnapshotRemoteID(snap.ID, remoteID); err != nil {
				return err
			}
		}
	}

	utils.Debugf("[Sync] snapshots: %d uploaded for %s", len(snaps), userID)
	return nil
}
