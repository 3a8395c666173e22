package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"fitsync/store"
	"fitsync/store/sqlite"
	syncengine "fitsync/sync"
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

func TestLoadEmbeddedCatalog(t *testing.T) {
	entries, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("embedded catalog is empty")
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if e.Name == "" {
			t.Error("catalog entry with empty name")
		}
		if seen[e.Name] {
			t.Errorf("duplicate catalog entry %q", e.Name)
		}
		seen[e.Name] = true
	}
}

func TestSeedInsertsWithDerivedIDs(t *testing.T) {
	db := newTestDB(t)

	added, err := Seed(db)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	entries, _ := Load()
	if added != len(entries) {
		t.Errorf("added %d, want %d", added, len(entries))
	}

	// A seeded row lives at the id the merge path would compute for it.
	ex, err := db.GetExercise(syncengine.DeriveStableID(entries[0].Name))
	if err != nil || ex == nil {
		t.Fatalf("seeded exercise not found by derived id: %v", err)
	}
	if ex.Name != entries[0].Name {
		t.Errorf("name = %q, want %q", ex.Name, entries[0].Name)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	if _, err := Seed(db); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	added, err := Seed(db)
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if added != 0 {
		t.Errorf("second seed added %d entries, want 0", added)
	}
}

func TestSeedKeepsSyncedEntries(t *testing.T) {
	db := newTestDB(t)

	entries, _ := Load()
	id := syncengine.DeriveStableID(entries[0].Name)

	// Simulate a catalog row already downloaded from the remote store.
	if err := db.SaveExercise(syncedExercise(id, entries[0].Name)); err != nil {
		t.Fatalf("failed to save exercise: %v", err)
	}

	if _, err := Seed(db); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	ex, _ := db.GetExercise(id)
	if ex.MuscleGroup != "synced-value" {
		t.Errorf("seed overwrote a synced row: %+v", ex)
	}
}

func syncedExercise(id int64, name string) store.Exercise {
	return store.Exercise{
		ID:          id,
		Name:        name,
		MuscleGroup: "synced-value",
		UpdatedAt:   time.Now(),
	}
}
