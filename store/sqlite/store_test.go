package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"fitsync/store"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenInitializesSchema(t *testing.T) {
	db := newTestDB(t)

	version, err := db.GetSchemaVersion()
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion)
	}
}

func TestExerciseRoundTrip(t *testing.T) {
	db := newTestDB(t)

	ex := store.Exercise{
		ID:          42,
		Name:        "Bench Press",
		MuscleGroup: "chest",
		Equipment:   "barbell",
		UpdatedAt:   time.Unix(1700000000, 0),
	}
	if err := db.SaveExercise(ex); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := db.GetExercise(42)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("exercise not found after save")
	}
	if got.Name != ex.Name || got.MuscleGroup != ex.MuscleGroup || !got.UpdatedAt.Equal(ex.UpdatedAt) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestGetExerciseMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetExercise(999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for a missing exercise, got %+v", got)
	}
}

func TestSaveExerciseOverwrites(t *testing.T) {
	db := newTestDB(t)

	base := store.Exercise{ID: 1, Name: "Squat", UpdatedAt: time.Unix(1700000000, 0)}
	if err := db.SaveExercise(base); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	base.MuscleGroup = "legs"
	base.UpdatedAt = time.Unix(1700000100, 0)
	if err := db.SaveExercise(base); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, _ := db.GetExercise(1)
	if got.MuscleGroup != "legs" || got.UpdatedAt.Unix() != 1700000100 {
		t.Errorf("overwrite not applied: %+v", got)
	}
}

func TestInsertWorkoutWithSets(t *testing.T) {
	db := newTestDB(t)

	w := store.Workout{
		ID:          "w1",
		OwnerID:     "user1",
		Title:       "Push Day",
		StartedAt:   time.Unix(1700000000, 0),
		DurationMin: 60,
		Notes:       "felt strong",
		UpdatedAt:   time.Unix(1700000000, 0),
		Sets: []store.WorkoutSet{
			{WorkoutID: "w1", OwnerID: "user1", SetIndex: 0, ExerciseID: 42, Reps: 5, WeightKG: 100},
			{WorkoutID: "w1", OwnerID: "user1", SetIndex: 1, ExerciseID: 42, Reps: 5, WeightKG: 102.5},
		},
	}
	if err := db.InsertWorkout(w); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := db.FindWorkoutByID("w1")
	if err != nil || got == nil {
		t.Fatalf("workout not found: %v", err)
	}
	if got.Title != "Push Day" || got.Notes != "felt strong" || got.DurationMin != 60 {
		t.Errorf("workout mismatch: %+v", got)
	}

	sets, err := db.GetWorkoutSets("w1")
	if err != nil {
		t.Fatalf("failed to load sets: %v", err)
	}
	if len(sets) != 2 || sets[1].WeightKG != 102.5 {
		t.Errorf("sets mismatch: %+v", sets)
	}
}

func TestUpdateWorkoutReplacesSets(t *testing.T) {
	db := newTestDB(t)

	w := store.Workout{
		ID: "w1", OwnerID: "user1", Title: "Push Day", UpdatedAt: time.Unix(1700000000, 0),
		Sets: []store.WorkoutSet{
			{WorkoutID: "w1", OwnerID: "user1", SetIndex: 0, ExerciseID: 1, Reps: 5},
			{WorkoutID: "w1", OwnerID: "user1", SetIndex: 1, ExerciseID: 1, Reps: 5},
			{WorkoutID: "w1", OwnerID: "user1", SetIndex: 2, ExerciseID: 1, Reps: 5},
		},
	}
	if err := db.InsertWorkout(w); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	w.Title = "Pull Day"
	w.UpdatedAt = time.Unix(1700000100, 0)
	w.Sets = []store.WorkoutSet{
		{WorkoutID: "w1", OwnerID: "user1", SetIndex: 0, ExerciseID: 2, Reps: 8},
	}
	if err := db.UpdateWorkout(w); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := db.FindWorkoutByID("w1")
	if got.Title != "Pull Day" {
		t.Errorf("title = %q", got.Title)
	}

	sets, _ := db.GetWorkoutSets("w1")
	if len(sets) != 1 || sets[0].ExerciseID != 2 {
		t.Errorf("sets not replaced: %+v", sets)
	}
}

func TestFindWorkoutByRemoteIDEmptyIsNil(t *testing.T) {
	db := newTestDB(t)

	// Rows without a remote mapping must not match an empty lookup.
	if err := db.InsertWorkout(store.Workout{ID: "w1", OwnerID: "user1", Title: "T", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := db.FindWorkoutByRemoteID("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("empty remote id matched a row: %+v", got)
	}
}

func TestListWorkoutsModifiedSince(t *testing.T) {
	db := newTestDB(t)

	old := store.Workout{ID: "w1", OwnerID: "user1", Title: "Old", UpdatedAt: time.Unix(1700000000, 0)}
	recent := store.Workout{ID: "w2", OwnerID: "user1", Title: "Recent", UpdatedAt: time.Unix(1700005000, 0)}
	other := store.Workout{ID: "w3", OwnerID: "user2", Title: "Other", UpdatedAt: time.Unix(1700005000, 0)}
	for _, w := range []store.Workout{old, recent, other} {
		if err := db.InsertWorkout(w); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	got, err := db.ListWorkoutsModifiedSince("user1", time.Unix(1700001000, 0))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "w2" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestDeleteWorkoutCascadesToSets(t *testing.T) {
	db := newTestDB(t)

	w := store.Workout{
		ID: "w1", OwnerID: "user1", Title: "T", UpdatedAt: time.Now(),
		Sets: []store.WorkoutSet{{WorkoutID: "w1", OwnerID: "user1", SetIndex: 0, ExerciseID: 1}},
	}
	if err := db.InsertWorkout(w); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if _, err := db.Exec("DELETE FROM workouts WHERE id = ?", "w1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	sets, err := db.GetWorkoutSets("w1")
	if err != nil {
		t.Fatalf("failed to load sets: %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("child rows survived parent deletion: %+v", sets)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := newTestDB(t)

	s := store.ProgressSnapshot{
		ID:           "s1",
		OwnerID:      "user1",
		MeasuredAt:   time.Unix(1700000000, 0),
		BodyWeightKG: 81.2,
		BodyFatPct:   17.5,
		UpdatedAt:    time.Unix(1700000000, 0),
	}
	if err := db.InsertSnapshot(s); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := db.FindSnapshotByID("s1")
	if err != nil || got == nil {
		t.Fatalf("snapshot not found: %v", err)
	}
	if got.BodyWeightKG != 81.2 || got.BodyFatPct != 17.5 {
		t.Errorf("snapshot mismatch: %+v", got)
	}

	if err := db.SetSnapshotRemoteID("s1", "rs-1"); err != nil {
		t.Fatalf("set remote id failed: %v", err)
	}
	got, _ = db.FindSnapshotByRemoteID("rs-1")
	if got == nil || got.ID != "s1" {
		t.Errorf("remote id lookup failed: %+v", got)
	}
}

func TestCheckpointLifecycle(t *testing.T) {
	db := newTestDB(t)

	// Missing checkpoint reads as zero, meaning full sync.
	download, upload, err := db.Checkpoint("workouts", "user1")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !download.IsZero() || !upload.IsZero() {
		t.Errorf("fresh checkpoint not zero: %v / %v", download, upload)
	}

	at := time.Unix(1700000000, 0)
	if err := db.SetDownloadCheckpoint("workouts", "user1", at); err != nil {
		t.Fatalf("set download failed: %v", err)
	}
	if err := db.SetUploadCheckpoint("workouts", "user1", at.Add(time.Minute)); err != nil {
		t.Fatalf("set upload failed: %v", err)
	}

	download, upload, err = db.Checkpoint("workouts", "user1")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !download.Equal(at) || !upload.Equal(at.Add(time.Minute)) {
		t.Errorf("checkpoint mismatch: %v / %v", download, upload)
	}

	// Checkpoints are scoped per (data type, owner).
	download, _, _ = db.Checkpoint("workouts", "user2")
	if !download.IsZero() {
		t.Error("checkpoint leaked across owners")
	}

	if err := db.ClearCheckpoints(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	download, upload, _ = db.Checkpoint("workouts", "user1")
	if !download.IsZero() || !upload.IsZero() {
		t.Error("checkpoints survived a clear")
	}
}

func TestCountOwnedBy(t *testing.T) {
	db := newTestDB(t)

	for _, w := range []store.Workout{
		{ID: "w1", OwnerID: store.SentinelOwner, Title: "A", UpdatedAt: time.Now()},
		{ID: "w2", OwnerID: store.SentinelOwner, Title: "B", UpdatedAt: time.Now()},
		{ID: "w3", OwnerID: "user1", Title: "C", UpdatedAt: time.Now()},
	} {
		if err := db.InsertWorkout(w); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	count, err := db.CountOwnedBy(store.SentinelOwner)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("sentinel count = %d, want 2", count)
	}
}

func TestStats(t *testing.T) {
	db := newTestDB(t)

	if err := db.SaveExercise(store.Exercise{ID: 1, Name: "Squat", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := db.InsertWorkout(store.Workout{ID: "w1", OwnerID: store.SentinelOwner, Title: "T", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.ExerciseCount != 1 || stats.WorkoutCount != 1 || stats.SentinelOwned != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
