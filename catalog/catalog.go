// Package catalog ships a built-in exercise catalog so a fresh install can
// record workouts before the first successful sync. Seeded entries carry
// the same derived IDs the merge path computes, so a later download of the
// shared catalog updates them in place instead of duplicating.
package catalog

import (
	"fmt"
	"time"

	"fitsync/store"
	"fitsync/store/sqlite"
	syncengine "fitsync/sync"

	"gopkg.in/yaml.v3"

	_ "embed"
)

//go:embed exercises.yaml
var catalogYAML []byte

// SeedExercise is one catalog entry from the embedded YAML
type SeedExercise struct {
	Name        string `yaml:"name"`
	MuscleGroup string `yaml:"muscle_group"`
	Equipment   string `yaml:"equipment"`
}

type catalogFile struct {
	Exercises []SeedExercise `yaml:"exercises"`
}

// Load parses the embedded catalog
func Load() ([]SeedExercise, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse embedded catalog: %w", err)
	}
	return file.Exercises, nil
}

// Seed inserts catalog entries the database does not already have and
// returns how many were added. Existing entries are left untouched so a
// synced catalog row is never overwritten by the embedded seed.
func Seed(db *sqlite.DB) (int, error) {
	entries, err := Load()
	if err != nil {
		return 0, err
	}

	added := 0
	for _, entry := range entries {
		id := syncengine.DeriveStableID(entry.Name)

		existing, err := db.GetExercise(id)
		if err != nil {
			return added, fmt.Errorf("failed to check exercise %q: %w", entry.Name, err)
		}
		if existing != nil {
			continue
		}

		ex := store.Exercise{
			ID:          id,
			Name:        entry.Name,
			MuscleGroup: entry.MuscleGroup,
			Equipment:   entry.Equipment,
			UpdatedAt:   time.Unix(0, 0), // any synced copy is newer
		}
		if err := db.SaveExercise(ex); err != nil {
			return added, fmt.Errorf("failed to seed exercise %q: %w", entry.Name, err)
		}
		added++
	}

	return added, nil
}
