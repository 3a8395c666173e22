package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitsync/store"
)

// Record queries used by the sync strategies and the migration service.
// Timestamps are stored as unix seconds. Per-record merges run inside one
// transaction so a killed attempt never leaves a parent without its sets.

// nullString converts an empty string to NULL for storage
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// timeToNullUnix converts a time to nullable unix seconds
func timeToNullUnix(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}

// unixToTime converts nullable unix seconds back to a time
func unixToTime(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.Unix(v.Int64, 0)
}

// --- Exercises ---

// GetExercise returns the exercise with the given derived id, or nil if none exists
func (db *DB) GetExercise(id int64) (*store.Exercise, error) {
	var ex store.Exercise
	var muscle, equipment sql.NullString
	var updatedAt int64

	err := db.QueryRow(`
		SELECT id, name, muscle_group, equipment, updated_at
		FROM exercises WHERE id = ?
	`, id).Scan(&ex.ID, &ex.Name, &muscle, &equipment, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exercise %d: %w", id, err)
	}

	ex.MuscleGroup = muscle.String
	ex.Equipment = equipment.String
	ex.UpdatedAt = time.Unix(updatedAt, 0)
	return &ex, nil
}

// SaveExercise inserts or overwrites an exercise row keyed by its derived id
func (db *DB) SaveExercise(ex store.Exercise) error {
	_, err := db.Exec(`
		INSERT INTO exercises (id, name, muscle_group, equipment, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			muscle_group = excluded.muscle_group,
			equipment = excluded.equipment,
			updated_at = excluded.updated_at
	`, ex.ID, ex.Name, nullString(ex.MuscleGroup), nullString(ex.Equipment), ex.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save exercise %q: %w", ex.Name, err)
	}
	return nil
}

// ListExercises returns the full local exercise catalog
func (db *DB) ListExercises() ([]store.Exercise, error) {
	rows, err := db.Query(`
		SELECT id, name, muscle_group, equipment, updated_at
		FROM exercises ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	var out []store.Exercise
	for rows.Next() {
		var ex store.Exercise
		var muscle, equipment sql.NullString
		var updatedAt int64
		if err := rows.Scan(&ex.ID, &ex.Name, &muscle, &equipment, &updatedAt); err != nil {
			return nil, err
		}
		ex.MuscleGroup = muscle.String
		ex.Equipment = equipment.String
		ex.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, ex)
	}
	return out, rows.Err()
}

// --- Workouts ---

func scanWorkout(row *sql.Row) (*store.Workout, error) {
	var w store.Workout
	var remoteID, notes sql.NullString
	var startedAt sql.NullInt64
	var updatedAt int64

	err := row.Scan(&w.ID, &remoteID, &w.OwnerID, &w.Title, &startedAt, &w.DurationMin, &notes, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	w.RemoteID = remoteID.String
	w.Notes = notes.String
	w.StartedAt = unixToTime(startedAt)
	w.UpdatedAt = time.Unix(updatedAt, 0)
	return &w, nil
}

const workoutColumns = "id, remote_id, owner_id, title, started_at, duration_min, notes, updated_at"

// FindWorkoutByRemoteID returns the workout mapped to a remote document id,
// without its sets, or nil if no mapping exists
func (db *DB) FindWorkoutByRemoteID(remoteID string) (*store.Workout, error) {
	if remoteID == "" {
		return nil, nil
	}
	w, err := scanWorkout(db.QueryRow(
		"SELECT "+workoutColumns+" FROM workouts WHERE remote_id = ?", remoteID))
	if err != nil {
		return nil, fmt.Errorf("failed to find workout by remote id %s: %w", remoteID, err)
	}
	return w, nil
}

// FindWorkoutByID returns the workout with the given local id, without its
// sets, or nil if none exists
func (db *DB) FindWorkoutByID(id string) (*store.Workout, error) {
	if id == "" {
		return nil, nil
	}
	w, err := scanWorkout(db.QueryRow(
		"SELECT "+workoutColumns+" FROM workouts WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("failed to find workout %s: %w", id, err)
	}
	return w, nil
}

// GetWorkoutSets returns the child rows for a workout in set order
func (db *DB) GetWorkoutSets(workoutID string) ([]store.WorkoutSet, error) {
	rows, err := db.Query(`
		SELECT workout_id, owner_id, set_index, exercise_id, reps, weight_kg
		FROM workout_sets WHERE workout_id = ? ORDER BY set_index
	`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sets for workout %s: %w", workoutID, err)
	}
	defer rows.Close()

	var sets []store.WorkoutSet
	for rows.Next() {
		var s store.WorkoutSet
		if err := rows.Scan(&s.WorkoutID, &s.OwnerID, &s.SetIndex, &s.ExerciseID, &s.Reps, &s.WeightKG); err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

// InsertWorkout inserts a workout and its sets in one transaction
func (db *DB) InsertWorkout(w store.Workout) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO workouts (id, remote_id, owner_id, title, started_at, duration_min, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.ID,
		nullString(w.RemoteID),
		w.OwnerID,
		w.Title,
		timeToNullUnix(w.StartedAt),
		w.DurationMin,
		nullString(w.Notes),
		w.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert workout %s: %w", w.ID, err)
	}

	if err := insertSetsTx(tx, w.ID, w.OwnerID, w.Sets); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateWorkout overwrites a workout's scalar fields and replaces its sets
// in one transaction
func (db *DB) UpdateWorkout(w store.Workout) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		UPDATE workouts
		SET remote_id = ?, title = ?, started_at = ?, duration_min = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`,
		nullString(w.RemoteID),
		w.Title,
		timeToNullUnix(w.StartedAt),
		w.DurationMin,
		nullString(w.Notes),
		w.UpdatedAt.Unix(),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workout %s: %w", w.ID, err)
	}

	if err := replaceSetsTx(tx, w.ID, w.OwnerID, w.Sets); err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceWorkoutSets replaces a workout's child rows without touching the
// parent's scalar fields
func (db *DB) ReplaceWorkoutSets(workoutID, ownerID string, sets []store.WorkoutSet) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceSetsTx(tx, workoutID, ownerID, sets); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceSetsTx(tx *sql.Tx, workoutID, ownerID string, sets []store.WorkoutSet) error {
	if _, err := tx.Exec("DELETE FROM workout_sets WHERE workout_id = ?", workoutID); err != nil {
		return fmt.Errorf("failed to clear sets for workout %s: %w", workoutID, err)
	}
	return insertSetsTx(tx, workoutID, ownerID, sets)
}

func insertSetsTx(tx *sql.Tx, workoutID, ownerID string, sets []store.WorkoutSet) error {
	for _, s := range sets {
		_, err := tx.Exec(`
			INSERT INTO workout_sets (workout_id, owner_id, set_index, exercise_id, reps, weight_kg)
			VALUES (?, ?, ?, ?, ?, ?)
		`, workoutID, ownerID, s.SetIndex, s.ExerciseID, s.Reps, s.WeightKG)
		if err != nil {
			return fmt.Errorf("failed to insert set %d for workout %s: %w", s.SetIndex, workoutID, err)
		}
	}
	return nil
}

// ListWorkoutsModifiedSince returns a user's workouts changed after the
// checkpoint, with their sets loaded, ready for upload
func (db *DB) ListWorkoutsModifiedSince(ownerID string, since time.Time) ([]store.Workout, error) {
	rows, err := db.Query(
		"SELECT "+workoutColumns+" FROM workouts WHERE owner_id = ? AND updated_at > ? ORDER BY updated_at",
		ownerID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list modified workouts: %w", err)
	}
	defer rows.Close()

	var out []store.Workout
	for rows.Next() {
		var w store.Workout
		var remoteID, notes sql.NullString
		var startedAt sql.NullInt64
		var updatedAt int64
		if err := rows.Scan(&w.ID, &remoteID, &w.OwnerID, &w.Title, &startedAt, &w.DurationMin, &notes, &updatedAt); err != nil {
			return nil, err
		}
		w.RemoteID = remoteID.String
		w.Notes = notes.String
		w.StartedAt = unixToTime(startedAt)
		w.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		sets, err := db.GetWorkoutSets(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Sets = sets
	}
	return out, nil
}

// SetWorkoutRemoteID records the remote document id assigned on first upload
func (db *DB) SetWorkoutRemoteID(id, remoteID string) error {
	_, err := db.Exec("UPDATE workouts SET remote_id = ? WHERE id = ?", remoteID, id)
	if err != nil {
		return fmt.Errorf("failed to set remote id for workout %s: %w", id, err)
	}
	return nil
}

// --- Progress snapshots ---

func scanSnapshot(row *sql.Row) (*store.ProgressSnapshot, error) {
	var s store.ProgressSnapshot
	var remoteID sql.NullString
	var weight, fat sql.NullFloat64
	var measuredAt, updatedAt int64

	err := row.Scan(&s.ID, &remoteID, &s.OwnerID, &measuredAt, &weight, &fat, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.RemoteID = remoteID.String
	s.BodyWeightKG = weight.Float64
	s.BodyFatPct = fat.Float64
	s.MeasuredAt = time.Unix(measuredAt, 0)
	s.UpdatedAt = time.Unix(updatedAt, 0)
	return &s, nil
}

const snapshotColumns = "id, remote_id, owner_id, measured_at, body_weight_kg, body_fat_pct, updated_at"

// FindSnapshotByRemoteID returns the snapshot mapped to a remote document id,
// or nil if no mapping exists
func (db *DB) FindSnapshotByRemoteID(remoteID string) (*store.ProgressSnapshot, error) {
	if remoteID == "" {
		return nil, nil
	}
	s, err := scanSnapshot(db.QueryRow(
		"SELECT "+snapshotColumns+" FROM progress_snapshots WHERE remote_id = ?", remoteID))
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot by remote id %s: %w", remoteID, err)
	}
	return s, nil
}

// FindSnapshotByID returns the snapshot with the given local id, or nil
func (db *DB) FindSnapshotByID(id string) (*store.ProgressSnapshot, error) {
	if id == "" {
		return nil, nil
	}
	s, err := scanSnapshot(db.QueryRow(
		"SELECT "+snapshotColumns+" FROM progress_snapshots WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot %s: %w", id, err)
	}
	return s, nil
}

// InsertSnapshot inserts a progress snapshot
func (db *DB) InsertSnapshot(s store.ProgressSnapshot) error {
	_, err := db.Exec(`
		INSERT INTO progress_snapshots (id, remote_id, owner_id, measured_at, body_weight_kg, body_fat_pct, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, nullString(s.RemoteID), s.OwnerID, s.MeasuredAt.Unix(), s.BodyWeightKG, s.BodyFatPct, s.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot %s: %w", s.ID, err)
	}
	return nil
}

// UpdateSnapshot overwrites a snapshot's scalar fields
func (db *DB) UpdateSnapshot(s store.ProgressSnapshot) error {
	_, err := db.Exec(`
		UPDATE progress_snapshots
		SET remote_id = ?, measured_at = ?, body_weight_kg = ?, body_fat_pct = ?, updated_at = ?
		WHERE id = ?
	`, nullString(s.RemoteID), s.MeasuredAt.Unix(), s.BodyWeightKG, s.BodyFatPct, s.UpdatedAt.Unix(), s.ID)
	if err != nil {
		return fmt.Errorf("failed to update snapshot %s: %w", s.ID, err)
	}
	return nil
}

// ListSnapshotsModifiedSince returns a user's snapshots changed after the checkpoint
func (db *DB) ListSnapshotsModifiedSince(ownerID string, since time.Time) ([]store.ProgressSnapshot, error) {
	rows, err := db.Query(
		"SELECT "+snapshotColumns+" FROM progress_snapshots WHERE owner_id = ? AND updated_at > ? ORDER BY updated_at",
		ownerID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list modified snapshots: %w", err)
	}
	defer rows.Close()

	var out []store.ProgressSnapshot
	for rows.Next() {
		var s store.ProgressSnapshot
		var remoteID sql.NullString
		var weight, fat sql.NullFloat64
		var measuredAt, updatedAt int64
		if err := rows.Scan(&s.ID, &remoteID, &s.OwnerID, &measuredAt, &weight, &fat, &updatedAt); err != nil {
			return nil, err
		}
		s.RemoteID = remoteID.String
		s.BodyWeightKG = weight.Float64
		s.BodyFatPct = fat.Float64
		s.MeasuredAt = time.Unix(measuredAt, 0)
		s.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetSnapshotRemoteID records the remote document id assigned on first upload
func (db *DB) SetSnapshotRemoteID(id, remoteID string) error {
	_, err := db.Exec("UPDATE progress_snapshots SET remote_id = ? WHERE id = ?", remoteID, id)
	if err != nil {
		return fmt.Errorf("failed to set remote id for snapshot %s: %w", id, err)
	}
	return nil
}

// --- Checkpoints ---

// Checkpoint returns the download and upload watermarks for a strategy.
// Zero times mean no checkpoint exists yet (full sync).
func (db *DB) Checkpoint(dataType, ownerID string) (download, upload time.Time, err error) {
	var d, u sql.NullInt64
	err = db.QueryRow(`
		SELECT downloaded_at, uploaded_at FROM sync_checkpoints
		WHERE data_type = ? AND owner_id = ?
	`, dataType, ownerID).Scan(&d, &u)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to read checkpoint for %s: %w", dataType, err)
	}
	return unixToTime(d), unixToTime(u), nil
}

// SetDownloadCheckpoint advances the download watermark for a strategy
func (db *DB) SetDownloadCheckpoint(dataType, ownerID string, t time.Time) error {
	_, err := db.Exec(`
		INSERT INTO sync_checkpoints (data_type, owner_id, downloaded_at)
		VALUES (?, ?, ?)
		ON CONFLICT(data_type, owner_id) DO UPDATE SET downloaded_at = excluded.downloaded_at
	`, dataType, ownerID, t.Unix())
	if err != nil {
		return fmt.Errorf("failed to set download checkpoint for %s: %w", dataType, err)
	}
	return nil
}

// SetUploadCheckpoint advances the upload watermark for a strategy
func (db *DB) SetUploadCheckpoint(dataType, ownerID string, t time.Time) error {
	_, err := db.Exec(`
		INSERT INTO sync_checkpoints (data_type, owner_id, uploaded_at)
		VALUES (?, ?, ?)
		ON CONFLICT(data_type, owner_id) DO UPDATE SET uploaded_at = excluded.uploaded_at
	`, dataType, ownerID, t.Unix())
	if err != nil {
		return fmt.Errorf("failed to set upload checkpoint for %s: %w", dataType, err)
	}
	return nil
}

// ClearCheckpoints drops every checkpoint, forcing the next sync to run full
func (db *DB) ClearCheckpoints() error {
	_, err := db.Exec("DELETE FROM sync_checkpoints")
	if err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}

// --- Ownership ---

// CountOwnedBy returns the number of workouts owned by the given id. The
// workouts table is the primary table for "does any local data exist".
func (db *DB) CountOwnedBy(ownerID string) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM workouts WHERE owner_id = ?", ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count workouts for owner %s: %w", ownerID, err)
	}
	return count, nil
}
