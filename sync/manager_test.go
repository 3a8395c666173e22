package sync

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fitsync/store"
	"fitsync/store/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fixedIdentity string

func (f fixedIdentity) ID() (string, error) { return string(f), nil }

func newTestManager(t *testing.T, mock *store.MockRemote) (*Manager, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	m := NewManager(db, mock, fixedIdentity("install-1"), "test-device")
	return m, db
}

func TestSyncAllPullsNewRecords(t *testing.T) {
	now := time.Now()
	mock := store.NewMockRemote()
	mock.Exercises = []store.ExerciseDoc{
		{RemoteID: "e1", Name: "Bench Press", MuscleGroup: "chest", Equipment: "barbell", LastModified: now},
	}
	mock.Workouts["user1"] = []store.WorkoutDoc{
		{
			RemoteID: "rw-1", OwnerID: "user1", Title: "Push Day", LastModified: now,
			Sets: []store.SetDoc{{SetIndex: 0, ExerciseName: "Bench Press", Reps: 5, WeightKG: 100}},
		},
	}
	mock.Snapshots["user1"] = []store.SnapshotDoc{
		{RemoteID: "rs-1", OwnerID: "user1", MeasuredAt: now, BodyWeightKG: 80.5, LastModified: now},
	}

	m, db := newTestManager(t, mock)

	state, err := m.SyncAll(context.Background(), "user1")
	if err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}
	if got := state.Overall(); got.Kind != OutcomeSuccess {
		t.Fatalf("Overall() = %s, want success", got)
	}

	ex, err := db.GetExercise(DeriveStableID("Bench Press"))
	if err != nil || ex == nil {
		t.Fatalf("catalog exercise not merged: %v", err)
	}
	if ex.MuscleGroup != "chest" {
		t.Errorf("exercise muscle group = %q", ex.MuscleGroup)
	}

	w, err := db.FindWorkoutByRemoteID("rw-1")
	if err != nil || w == nil {
		t.Fatalf("workout not merged: %v", err)
	}
	if w.OwnerID != "user1" || w.Title != "Push Day" {
		t.Errorf("unexpected workout %+v", w)
	}
	sets, err := db.GetWorkoutSets(w.ID)
	if err != nil {
		t.Fatalf("failed to load sets: %v", err)
	}
	if len(sets) != 1 || sets[0].ExerciseID != DeriveStableID("Bench Press") {
		t.Errorf("unexpected sets %+v", sets)
	}

	s, err := db.FindSnapshotByRemoteID("rs-1")
	if err != nil || s == nil {
		t.Fatalf("snapshot not merged: %v", err)
	}
	if s.BodyWeightKG != 80.5 {
		t.Errorf("snapshot weight = %v", s.BodyWeightKG)
	}
}

func TestSyncAllIsIdempotent(t *testing.T) {
	now := time.Now()
	mock := store.NewMockRemote()
	mock.Workouts["user1"] = []store.WorkoutDoc{
		{
			RemoteID: "rw-1", OwnerID: "user1", Title: "Push Day", LastModified: now,
			Sets: []store.SetDoc{{SetIndex: 0, ExerciseName: "Bench Press", Reps: 5, WeightKG: 100}},
		},
	}

	m, db := newTestManager(t, mock)
	ctx := context.Background()

	if _, err := m.SyncAll(ctx, "user1"); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if _, err := m.SyncAll(ctx, "user1"); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	count, err := db.CountOwnedBy("user1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 workout after double sync, got %d", count)
	}

	w, _ := db.FindWorkoutByRemoteID("rw-1")
	sets, err := db.GetWorkoutSets(w.ID)
	if err != nil {
		t.Fatalf("failed to load sets: %v", err)
	}
	if len(sets) != 1 {
		t.Errorf("expected 1 set after double sync, got %d", len(sets))
	}
}

func TestMergeKeepsLocalWhenNewer(t *testing.T) {
	now := time.Now()
	mock := store.NewMockRemote()
	mock.Workouts["user1"] = []store.WorkoutDoc{
		{RemoteID: "rw-1", OwnerID: "user1", Title: "Remote Title", LastModified: now.Add(-time.Hour)},
	}

	m, db := newTestManager(t, mock)
	err := db.InsertWorkout(store.Workout{
		ID: "w1", RemoteID: "rw-1", OwnerID: "user1", Title: "Local Title", UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to insert workout: %v", err)
	}

	if _, err := m.SyncAll(context.Background(), "user1"); err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	w, _ := db.FindWorkoutByRemoteID("rw-1")
	if w.Title != "Local Title" {
		t.Errorf("local newer row was overwritten, title = %q", w.Title)
	}
}

func TestMergeUpdatesWhenRemoteNewer(t *testing.T) {
	now := time.Now()
	mock := store.NewMockRemote()
	mock.Workouts["user1"] = []store.WorkoutDoc{
		{RemoteID: "rw-1", OwnerID: "user1", Title: "Remote Title", LastModified: now},
	}

	m, db := newTestManager(t, mock)
	err := db.InsertWorkout(store.Workout{
		ID: "w1", RemoteID: "rw-1", OwnerID: "user1", Title: "Local Title", UpdatedAt: now.Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("failed to insert workout: %v", err)
	}

	if _, err := m.SyncAll(context.Background(), "user1"); err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	w, _ := db.FindWorkoutByRemoteID("rw-1")
	if w.Title != "Remote Title" {
		t.Errorf("remote newer row did not win, title = %q", w.Title)
	}
}

func TestMergeReplacesChildrenWhenLocalParentWins(t *testing.T) {
	now := time.Now()
	mock := store.NewMockRemote()
	mock.Workouts["user1"] = []store.WorkoutDoc{
		{
			RemoteID: "rw-1", OwnerID: "user1", Title: "Remote Title", LastModified: now.Add(-time.Hour),
			Sets: []store.SetDoc{{SetIndex: 0, ExerciseName: "Squat", Reps: 8, WeightKG: 80}},
		},
	}

	m, db := newTestManager(t, mock)
	err := db.InsertWorkout(store.Workout{
		ID: "w1", RemoteID: "rw-1", OwnerID: "user1", Title: "Local Title", UpdatedAt: now,
		Sets: []store.WorkoutSet{
			{WorkoutID: "w1", OwnerID: "user1", SetIndex: 0, ExerciseID: DeriveStableID("Bench Press"), Reps: 5},
			{WorkoutID: "w1", OwnerID: "user1", SetIndex: 1, ExerciseID: DeriveStableID("Bench Press"), Reps: 5},
		},
	})
	if err != nil {
		t.Fatalf("failed to insert workout: %v", err)
	}

	if _, err := m.SyncAll(context.Background(), "user1"); err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	w, _ := db.FindWorkoutByRemoteID("rw-1")
	if w.Title != "Local Title" {
		t.Errorf("parent should have kept local scalars, title = %q", w.Title)
	}

	// The set list follows the remote payload even though the parent did not.
	sets, err := db.GetWorkoutSets("w1")
	if err != nil {
		t.Fatalf("failed to load sets: %v", err)
	}
	if len(sets) != 1 || sets[0].ExerciseID != DeriveStableID("Squat") || sets[0].Reps != 8 {
		t.Errorf("children were not replaced from remote: %+v", sets)
	}
}

func TestUploadAssignsRemoteID(t *testing.T) {
	mock := store.NewMockRemote()
	m, db := newTestManager(t, mock)

	err := db.InsertWorkout(store.Workout{
		ID: "w2", OwnerID: "user1", Title: "Morning Run", UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to insert workout: %v", err)
	}

	if _, err := m.SyncAll(context.Background(), "user1"); err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	if mock.UpsertWorkoutCalls != 1 {
		t.Errorf("expected 1 upload, got %d", mock.UpsertWorkoutCalls)
	}

	w, _ := db.FindWorkoutByID("w2")
	if w.RemoteID == "" {
		t.Error("remote id was not recorded after first upload")
	}

	docs := mock.Workouts["user1"]
	if len(docs) != 1 || docs[0].ClientID != "w2" {
		t.Errorf("uploaded document missing client id echo: %+v", docs)
	}
}

func TestSentinelOwnedDataNeverUploads(t *testing.T) {
	mock := store.NewMockRemote()
	m, db := newTestManager(t, mock)

	err := db.InsertWorkout(store.Workout{
		ID: "w3", OwnerID: store.SentinelOwner, Title: "Offline Session", UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to insert workout: %v", err)
	}

	if _, err := m.SyncAll(context.Background(), store.SentinelOwner); err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	if mock.UpsertWorkoutCalls != 0 {
		t.Errorf("sentinel-owned data was uploaded %d times", mock.UpsertWorkoutCalls)
	}
}

func TestSyncAllSkipsUserStrategiesWithoutUser(t *testing.T) {
	now := time.Now()
	mock := store.NewMockRemote()
	mock.Exercises = []store.ExerciseDoc{
		{RemoteID: "e1", Name: "Squat", LastModified: now},
	}

	m, db := newTestManager(t, mock)

	state, err := m.SyncAll(context.Background(), "")
	if err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	if got := state.Outcomes["exercises"]; got.Kind != OutcomeSuccess {
		t.Errorf("exercises outcome = %s, want success", got)
	}
	if got := state.Outcomes["workouts"]; got.Kind != OutcomeSkipped {
		t.Errorf("workouts outcome = %s, want skipped", got)
	}
	if got := state.Outcomes["snapshots"]; got.Kind != OutcomeSkipped {
		t.Errorf("snapshots outcome = %s, want skipped", got)
	}
	if got := state.Overall(); got.Kind != OutcomeSkipped {
		t.Errorf("Overall() = %s, want skipped", got)
	}

	// The shared catalog still synced.
	if ex, _ := db.GetExercise(DeriveStableID("Squat")); ex == nil {
		t.Error("shared catalog did not sync for an unauthenticated run")
	}

	if mock.MetadataCalls != 0 {
		t.Errorf("sync metadata written without a user, %d calls", mock.MetadataCalls)
	}
}

func TestSyncAllAggregatesWorstOutcome(t *testing.T) {
	mock := store.NewMockRemote()
	mock.ListWorkoutsErr = store.NewStoreError("ListWorkouts", 500, "backend down")

	m, _ := newTestManager(t, mock)

	state, err := m.SyncAll(context.Background(), "user1")
	if err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	if got := state.Outcomes["workouts"]; got.Kind != OutcomeError {
		t.Errorf("workouts outcome = %s, want error", got)
	}
	if got := state.Outcomes["exercises"]; got.Kind != OutcomeSuccess {
		t.Errorf("exercises outcome = %s, want success", got)
	}
	// One failing strategy does not stop the others.
	if got := state.Outcomes["snapshots"]; got.Kind != OutcomeSuccess {
		t.Errorf("snapshots outcome = %s, want success", got)
	}
	if got := state.Overall(); got.Kind != OutcomeError {
		t.Errorf("Overall() = %s, want error", got)
	}
}

func TestFailedDownloadLeavesCheckpointUntouched(t *testing.T) {
	mock := store.NewMockRemote()
	mock.ListWorkoutsErr = store.NewStoreError("ListWorkouts", 500, "backend down")

	m, db := newTestManager(t, mock)

	if _, err := m.SyncAll(context.Background(), "user1"); err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	download, upload, err := db.Checkpoint("workouts", "user1")
	if err != nil {
		t.Fatalf("checkpoint read failed: %v", err)
	}
	if !download.IsZero() || !upload.IsZero() {
		t.Errorf("failed strategy advanced its checkpoints: %v / %v", download, upload)
	}
}

func TestSuccessfulSyncAdvancesCheckpoints(t *testing.T) {
	mock := store.NewMockRemote()
	m, db := newTestManager(t, mock)

	if _, err := m.SyncAll(context.Background(), "user1"); err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	download, upload, err := db.Checkpoint("exercises", "")
	if err != nil {
		t.Fatalf("checkpoint read failed: %v", err)
	}
	if download.IsZero() || upload.IsZero() {
		t.Error("shared strategy checkpoints did not advance")
	}

	download, upload, err = db.Checkpoint("workouts", "user1")
	if err != nil {
		t.Fatalf("checkpoint read failed: %v", err)
	}
	if download.IsZero() || upload.IsZero() {
		t.Error("user strategy checkpoints did not advance")
	}
}

func TestSyncUserDataRequiresAuthenticatedUser(t *testing.T) {
	m, _ := newTestManager(t, store.NewMockRemote())

	if _, err := m.SyncUserData(context.Background(), ""); err == nil {
		t.Error("expected error for empty user")
	}
	if _, err := m.SyncUserData(context.Background(), store.SentinelOwner); err == nil {
		t.Error("expected error for the sentinel owner")
	}
}

func TestSyncUserDataSkipsSharedStrategies(t *testing.T) {
	mock := store.NewMockRemote()
	mock.Exercises = []store.ExerciseDoc{
		{RemoteID: "e1", Name: "Squat", LastModified: time.Now()},
	}

	m, db := newTestManager(t, mock)

	state, err := m.SyncUserData(context.Background(), "user1")
	if err != nil {
		t.Fatalf("SyncUserData failed: %v", err)
	}

	if _, present := state.Outcomes["exercises"]; present {
		t.Error("shared strategy ran during a user-only sync")
	}
	if ex, _ := db.GetExercise(DeriveStableID("Squat")); ex != nil {
		t.Error("catalog downloaded during a user-only sync")
	}
}

func TestFullSyncIgnoresCheckpoints(t *testing.T) {
	now := time.Now()
	mock := store.NewMockRemote()
	mock.Exercises = []store.ExerciseDoc{
		{RemoteID: "e1", Name: "Squat", LastModified: now.Add(-time.Hour)},
	}

	m, db := newTestManager(t, mock)

	// A future checkpoint would hide the catalog entry from incremental sync.
	if err := db.SetDownloadCheckpoint("exercises", "", now.Add(time.Hour)); err != nil {
		t.Fatalf("failed to set checkpoint: %v", err)
	}

	if _, err := m.SyncAll(context.Background(), "user1"); err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}
	if ex, _ := db.GetExercise(DeriveStableID("Squat")); ex != nil {
		t.Fatal("incremental sync unexpectedly saw the old record")
	}

	if _, err := m.FullSync(context.Background(), "user1"); err != nil {
		t.Fatalf("FullSync failed: %v", err)
	}
	if ex, _ := db.GetExercise(DeriveStableID("Squat")); ex == nil {
		t.Error("full sync did not re-download the catalog")
	}
}

func TestSyncRecordsMetadataAfterUserSync(t *testing.T) {
	mock := store.NewMockRemote()
	m, _ := newTestManager(t, mock)

	if _, err := m.SyncAll(context.Background(), "user1"); err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	if mock.MetadataCalls != 1 {
		t.Fatalf("expected 1 metadata write, got %d", mock.MetadataCalls)
	}
	meta := mock.Metadata["user1"]
	if meta.InstallationID != "install-1" {
		t.Errorf("metadata installation id = %q", meta.InstallationID)
	}
	if meta.DeviceName != "test-device" {
		t.Errorf("metadata device name = %q", meta.DeviceName)
	}
}
