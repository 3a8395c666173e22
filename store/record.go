package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SentinelOwner is the reserved owner id for records created before the user
// has authenticated. Exactly one sentinel value exists per installation; the
// migration service reassigns sentinel-owned rows to the real user id on
// first sign-in.
const SentinelOwner = "local"

// NewRecordID generates a new local primary key for user-created records.
// Local ids are never sent to the remote store as document ids; the remote
// assigns its own.
func NewRecordID() string {
	return uuid.NewString()
}

// Exercise is a shared reference record. Its primary key is derived
// deterministically from the normalized exercise name, so every device maps
// the same catalog entry to the same local row.
type Exercise struct {
	ID          int64
	Name        string
	MuscleGroup string
	Equipment   string
	UpdatedAt   time.Time
}

// Workout is a user-owned parent record. Sets are its dependent child
// collection and are reconciled with replace semantics during sync.
type Workout struct {
	ID          string // local primary key
	RemoteID    string // remote document id, empty until first upload
	OwnerID     string
	Title       string
	StartedAt   time.Time
	DurationMin int
	Notes       string
	UpdatedAt   time.Time
	Sets        []WorkoutSet
}

// WorkoutSet is a child row of a Workout. It carries the owner column so
// bulk ownership operations cover it without joining through the parent.
type WorkoutSet struct {
	WorkoutID  string
	OwnerID    string
	SetIndex   int
	ExerciseID int64
	Reps       int
	WeightKG   float64
}

// ProgressSnapshot is a user-owned body measurement record.
type ProgressSnapshot struct {
	ID           string
	RemoteID     string
	OwnerID      string
	MeasuredAt   time.Time
	BodyWeightKG float64
	BodyFatPct   float64
	UpdatedAt    time.Time
}

// ExerciseDoc is the remote document for a catalog exercise. Name is the
// natural key used for stable-ID derivation; LastModified is set by the
// remote store, never by the client.
type ExerciseDoc struct {
	RemoteID     string
	Name         string
	MuscleGroup  string
	Equipment    string
	LastModified time.Time
}

// WorkoutDoc is the remote document for a workout. ClientID echoes the local
// primary key the uploading device supplied, which lets that device match
// the document back to its own row before a remote id mapping exists.
type WorkoutDoc struct {
	RemoteID     string
	ClientID     string
	OwnerID      string
	Title        string
	StartedAt    time.Time
	DurationMin  int
	Notes        string
	LastModified time.Time
	Sets         []SetDoc
}

// SetDoc is the embedded child payload of a WorkoutDoc. Exercises are
// referenced by natural name, not by any id, so the receiving device derives
// the exercise id itself.
type SetDoc struct {
	SetIndex     int
	ExerciseName string
	Reps         int
	WeightKG     float64
}

// SnapshotDoc is the remote document for a progress snapshot.
type SnapshotDoc struct {
	RemoteID     string
	ClientID     string
	OwnerID      string
	MeasuredAt   time.Time
	BodyWeightKG float64
	BodyFatPct   float64
	LastModified time.Time
}

// SyncMetadata describes which installation most recently synchronized for a
// user. The remote sets LastSyncAt itself; it scopes reporting, it does not
// gate correctness.
type SyncMetadata struct {
	InstallationID string
	DeviceName     string
	LastSyncAt     time.Time
}

// RemoteStore is the contract the sync engine holds against the remote
// document store. A zero updatedSince means full sync. All calls may block
// on the network and honor context cancellation.
type RemoteStore interface {
	ListExercises(ctx context.Context, updatedSince time.Time) ([]ExerciseDoc, error)
	ListWorkouts(ctx context.Context, userID string, updatedSince time.Time) ([]WorkoutDoc, error)
	UpsertWorkout(ctx context.Context, userID string, doc WorkoutDoc) (string, error)
	ListSnapshots(ctx context.Context, userID string, updatedSince time.Time) ([]SnapshotDoc, error)
	UpsertSnapshot(ctx context.Context, userID string, doc SnapshotDoc) (string, error)
	PutSyncMetadata(ctx context.Context, userID string, meta SyncMetadata) error
	Ping(ctx context.Context) error
}
