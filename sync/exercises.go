package sync

import (
	"context"
	"fmt"
	"time"

	"fitsync/internal/utils"
	"fitsync/store"
	"fitsync/store/sqlite"
)

// ExerciseCatalogStrategy syncs the shared exercise reference catalog.
// Devices never mutate the catalog, so upload is a no-op.
type ExerciseCatalogStrategy struct {
	local  *sqlite.DB
	remote store.RemoteStore
}

// NewExerciseCatalogStrategy creates the shared-catalog strategy
func NewExerciseCatalogStrategy(local *sqlite.DB, remote store.RemoteStore) *ExerciseCatalogStrategy {
	return &ExerciseCatalogStrategy{local: local, remote: remote}
}

func (s *ExerciseCatalogStrategy) DataType() string { return "exercises" }

func (s *ExerciseCatalogStrategy) UserScoped() bool { return false }

// DownloadAndMerge merges remote catalog entries into the local store,
// keyed by the stable id derived from each entry's name.
func (s *ExerciseCatalogStrategy) DownloadAndMerge(ctx context.Context, _ string, since time.Time) error {
	docs, err := s.remote.ListExercises(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to list remote exercises: %w", err)
	}

	merged := 0
	for _, doc := range docs {
		id := DeriveStableID(doc.Name)

		existing, err := s.local.GetExercise(id)
		if err != nil {
			return err
		}

		var localUpdated time.Time
		if existing != nil {
			localUpdated = existing.UpdatedAt
		}

		d := Resolve(localUpdated, doc.LastModified, existing != nil)
		if !d.InsertNew && !d.UpdateScalars {
			continue
		}

		err = s.local.SaveExercise(store.Exercise{
			ID:          id,
			Name:        doc.Name,
			MuscleGroup: doc.MuscleGroup,
			Equipment:   doc.Equipment,
			UpdatedAt:   doc.LastModified,
		})
		if err != nil {
			return err
		}
		merged++
	}

	utils.Debugf("[Sync] exercises: %d remote, %d merged", len(docs), merged)
	return nil
}

// UploadChanges is a no-op: the catalog is read-only from devices
func (s *ExerciseCatalogStrategy) UploadChanges(ctx context.Context, userID string, since time.Time) error {
	return nil
}
