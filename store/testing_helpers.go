package store

// This file contains the shared mock remote store used across sync, jobs and
// CLI tests.

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockRemote implements RemoteStore for testing. Fields are exported so
// tests can seed documents and inspect what was uploaded.
type MockRemote struct {
	mu sync.Mutex

	Exercises []ExerciseDoc
	Workouts  map[string][]WorkoutDoc  // userID -> docs
	Snapshots map[string][]SnapshotDoc // userID -> docs
	Metadata  map[string]SyncMetadata  // userID -> last written metadata

	// Injectable failures
	ListExercisesErr error
	ListWorkoutsErr  error
	UpsertWorkoutErr error
	ListSnapshotsErr error
	UpsertSnapErr    error
	PingErr          error

	// Call accounting
	UpsertWorkoutCalls int
	UpsertSnapCalls    int
	MetadataCalls      int

	nextID int
}

// NewMockRemote creates a new mock remote store instance
func NewMockRemote() *MockRemote {
	return &MockRemote{
		Workouts:  make(map[string][]WorkoutDoc),
		Snapshots: make(map[string][]SnapshotDoc),
		Metadata:  make(map[string]SyncMetadata),
	}
}

func (m *MockRemote) ListExercises(ctx context.Context, updatedSince time.Time) ([]ExerciseDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListExercisesErr != nil {
		return nil, m.ListExercisesErr
	}
	var out []ExerciseDoc
	for _, d := range m.Exercises {
		if updatedSince.IsZero() || d.LastModified.After(updatedSince) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockRemote) ListWorkouts(ctx context.Context, userID string, updatedSince time.Time) ([]WorkoutDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListWorkoutsErr != nil {
		return nil, m.ListWorkoutsErr
	}
	var out []WorkoutDoc
	for _, d := range m.Workouts[userID] {
		if updatedSince.IsZero() || d.LastModified.After(updatedSince) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockRemote) UpsertWorkout(ctx context.Context, userID string, doc WorkoutDoc) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertWorkoutCalls++
	if m.UpsertWorkoutErr != nil {
		return "", m.UpsertWorkoutErr
	}

	// The server assigns the document id and the last-modified timestamp.
	docs := m.Workouts[userID]
	for i, existing := range docs {
		if matches(existing.RemoteID, existing.ClientID, doc.RemoteID, doc.ClientID) {
			doc.RemoteID = existing.RemoteID
			doc.LastModified = time.Now()
			docs[i] = doc
			m.Workouts[userID] = docs
			return doc.RemoteID, nil
		}
	}

	m.nextID++
	doc.RemoteID = fmt.Sprintf("rw-%d", m.nextID)
	doc.LastModified = time.Now()
	m.Workouts[userID] = append(docs, doc)
	return doc.RemoteID, nil
}

func (m *MockRemote) ListSnapshots(ctx context.Context, userID string, updatedSince time.Time) ([]SnapshotDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListSnapshotsErr != nil {
		return nil, m.ListSnapshotsErr
	}
	var out []SnapshotDoc
	for _, d := range m.Snapshots[userID] {
		if updatedSince.IsZero() || d.LastModified.After(updatedSince) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockRemote) UpsertSnapshot(ctx context.Context, userID string, doc SnapshotDoc) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertSnapCalls++
	if m.UpsertSnapErr != nil {
		return "", m.UpsertSnapErr
	}

	docs := m.Snapshots[userID]
	for i, existing := range docs {
		if matches(existing.RemoteID, existing.ClientID, doc.RemoteID, doc.ClientID) {
			doc.RemoteID = existing.RemoteID
			doc.LastModified = time.Now()
			docs[i] = doc
			m.Snapshots[userID] = docs
			return doc.RemoteID, nil
		}
	}

	m.nextID++
	doc.RemoteID = fmt.Sprintf("rs-%d", m.nextID)
	doc.LastModified = time.Now()
	m.Snapshots[userID] = append(docs, doc)
	return doc.RemoteID, nil
}

func (m *MockRemote) PutSyncMetadata(ctx context.Context, userID string, meta SyncMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MetadataCalls++
	meta.LastSyncAt = time.Now()
	m.Metadata[userID] = meta
	return nil
}

func (m *MockRemote) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PingErr
}

// matches reports whether an upsert addresses an existing document, either
// by remote id or by the uploading device's client id.
func matches(existingRemote, existingClient, remoteID, clientID string) bool {
	if remoteID != "" && remoteID == existingRemote {
		return true
	}
	return clientID != "" && clientID == existingClient
}
