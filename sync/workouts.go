package sync

import (
	"context"
	"fmt"
	"time"

	"fitsync/internal/utils"
	"fitsync/store"
	"fitsync/store/sqlite"
)

// WorkoutStrategy syncs user-owned workouts and their set lists. Sets are a
// dependent child collection reconciled with replace semantics: delete all
// local children for the parent, re-insert the remote set wholesale.
type WorkoutStrategy struct {
	local  *sqlite.DB
	remote store.RemoteStore
}

// NewWorkoutStrategy creates the workout strategy
func NewWorkoutStrategy(local *sqlite.DB, remote store.RemoteStore) *WorkoutStrategy {
	return &WorkoutStrategy{local: local, remote: remote}
}

func (s *WorkoutStrategy) DataType() string { return "workouts" }

func (s *WorkoutStrategy) UserScoped() bool { return true }

// DownloadAndMerge fetches the user's remote workouts changed since the
// checkpoint and merges each under last-write-wins. Each record merges
// inside one local transaction, so re-running from the same checkpoint
// cannot duplicate rows or strand child sets.
func (s *WorkoutStrategy) DownloadAndMerge(ctx context.Context, userID string, since time.Time) error {
	docs, err := s.remote.ListWorkouts(ctx, userID, since)
	if err != nil {
		return fmt.Errorf("failed to list remote workouts: %w", err)
	}

	for _, doc := range docs {
		if err := s.mergeWorkout(userID, doc); err != nil {
			return fmt.Errorf("failed to merge workout %s: %w", doc.RemoteID, err)
		}
	}

	utils.Debugf("[Sync] workouts: %d remote documents processed for %s", len(docs), userID)
	return nil
}

// mergeWorkout applies conflict resolution for one remote document
func (s *WorkoutStrategy) mergeWorkout(userID string, doc store.WorkoutDoc) error {
	// Match by remote id first, then by the client id this device uploaded
	// with before it learned the remote mapping.
	local, err := s.local.FindWorkoutByRemoteID(doc.RemoteID)
	if err != nil {
		return err
	}
	if local == nil {
		local, err = s.local.FindWorkoutByID(doc.ClientID)
		if err != nil {
			return err
		}
	}

	var localUpdated time.Time
	if local != nil {
		localUpdated = local.UpdatedAt
	}
	d := Resolve(localUpdated, doc.LastModified, local != nil)

	sets := setsFromDoc(doc, userID)

	if d.InsertNew {
		id := doc.ClientID
		if id == "" {
			id = store.NewRecordID()
		}
		return s.local.InsertWorkout(store.Workout{
			ID:          id,
			RemoteID:    doc.RemoteID,
			OwnerID:     userID,
			Title:       doc.Title,
			StartedAt:   doc.StartedAt,
			DurationMin: doc.DurationMin,
			Notes:       doc.Notes,
			UpdatedAt:   doc.LastModified,
			Sets:        setsWithParent(sets, id),
		})
	}

	if d.UpdateScalars {
		return s.local.UpdateWorkout(store.Workout{
			ID:          local.ID,
			RemoteID:    doc.RemoteID,
			OwnerID:     local.OwnerID,
			Title:       doc.Title,
			StartedAt:   doc.StartedAt,
			DurationMin: doc.DurationMin,
			Notes:       doc.Notes,
			UpdatedAt:   doc.LastModified,
			Sets:        setsWithParent(sets, local.ID),
		})
	}

	// Local parent wins, but the child rows still follow the remote payload
	// (Decision.ReplaceChildren).
	return s.local.ReplaceWorkoutSets(local.ID, local.OwnerID, setsWithParent(sets, local.ID))
}

// UploadChanges pushes the user's workouts modified since the checkpoint
func (s *WorkoutStrategy) UploadChanges(ctx context.Context, userID string, since time.Time) error {
	workouts, err := s.local.ListWorkoutsModifiedSince(userID, since)
	if err != nil {
		return fmt.Errorf("failed to list modified workouts: %w", err)
	}

	for _, w := range workouts {
		doc := store.WorkoutDoc{
			RemoteID:    w.RemoteID,
			ClientID:    w.ID,
			OwnerID:     w.OwnerID,
			Title:       w.Title,
			StartedAt:   w.StartedAt,
			DurationMin: w.DurationMin,
			Notes:       w.Notes,
		}
		for _, set := range w.Sets {
			name, err := s.exerciseName(set.ExerciseID)
			if err != nil {
				return err
			}
			doc.Sets = append(doc.Sets, store.SetDoc{
				SetIndex:     set.SetIndex,
				ExerciseName: name,
				Reps:         set.Reps,
				WeightKG:     set.WeightKG,
			})
		}

		remoteID, err := s.remote.UpsertWorkout(ctx, userID, doc)
		if err != nil {
			return fmt.Errorf("failed to upload workout %s: %w", w.ID, err)
		}

		if w.RemoteID == "" && remoteID != "" {
			if err := s.local.SetWorkoutRemoteID(w.ID, remoteID); err != nil {
				return err
			}
		}
	}

	utils.Debugf("[Sync] workouts: %d uploaded for %s", len(workouts), userID)
	return nil
}

// exerciseName resolves a derived exercise id back to its natural name for
// the wire format. Unknown ids upload with an empty name rather than failing
// the whole pass.
func (s *WorkoutStrategy) exerciseName(id int64) (string, error) {
	ex, err := s.local.GetExercise(id)
	if err != nil {
		return "", err
	}
	if ex == nil {
		utils.Warnf("[Sync] set references unknown exercise id %d", id)
		return "", nil
	}
	return ex.Name, nil
}

func setsFromDoc(doc store.WorkoutDoc, ownerID string) []store.WorkoutSet {
	sets := make([]store.WorkoutSet, 0, len(doc.Sets))
	for _, sd := range doc.Sets {
		sets = append(sets, store.WorkoutSet{
			OwnerID:    ownerID,
			SetIndex:   sd.SetIndex,
			ExerciseID: DeriveStableID(sd.ExerciseName),
			Reps:       sd.Reps,
			WeightKG:   sd.WeightKG,
		})
	}
	return sets
}

func setsWithParent(sets []store.WorkoutSet, workoutID string) []store.WorkoutSet {
	for i := range sets {
		sets[i].WorkoutID = workoutID
	}
	return sets
}
