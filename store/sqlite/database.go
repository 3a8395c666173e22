package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fitsync/store"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB wraps sql.DB with helper methods for schema management and the record
// queries the sync engine needs
type DB struct {
	*sql.DB
	path string
}

// Open initializes the SQLite database with proper schema.
// It creates the database at the XDG-compliant location and sets up all tables.
func Open(customPath string) (*DB, error) {
	dbPath, err := getDatabasePath(customPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}

	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	database := &DB{
		DB:   db,
		path: dbPath,
	}

	if err := database.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// getDatabasePath returns the path to the SQLite database file
// Priority: customPath > $XDG_DATA_HOME/fitsync/fitsync.db > ~/.local/share/fitsync/fitsync.db
func getDatabasePath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}

	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "fitsync", "fitsync.db"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", "fitsync", "fitsync.db"), nil
}

// initializeSchema creates all tables, indexes, and sets pragmas
func (db *DB) initializeSchema() error {
	for _, pragma := range PragmaStatements() {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %q: %w", pragma, err)
		}
	}

	for _, schema := range AllTableSchemas() {
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, index := range AllIndexes() {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := db.recordSchemaVersion(); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// recordSchemaVersion records the current schema version in the database
func (db *DB) recordSchemaVersion() error {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", SchemaVersion).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check schema version: %w", err)
	}

	if count > 0 {
		return nil // Version already recorded
	}

	_, err = db.Exec(
		"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
		SchemaVersion,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert schema version: %w", err)
	}

	return nil
}

// GetSchemaVersion returns the current schema version from the database
func (db *DB) GetSchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Path returns the filesystem path to the database file
func (db *DB) Path() string {
	return db.path
}

// Vacuum runs VACUUM to optimize the database
func (db *DB) Vacuum() error {
	_, err := db.Exec("VACUUM")
	return err
}

// Stats returns basic database statistics
func (db *DB) Stats() (DatabaseStats, error) {
	stats := DatabaseStats{}

	err := db.QueryRow("SELECT COUNT(*) FROM exercises").Scan(&stats.ExerciseCount)
	if err != nil {
		return stats, fmt.Errorf("failed to count exercises: %w", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM workouts").Scan(&stats.WorkoutCount)
	if err != nil {
		return stats, fmt.Errorf("failed to count workouts: %w", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM progress_snapshots").Scan(&stats.SnapshotCount)
	if err != nil {
		return stats, fmt.Errorf("failed to count snapshots: %w", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM workouts WHERE owner_id = ?", store.SentinelOwner).Scan(&stats.SentinelOwned)
	if err != nil {
		return stats, fmt.Errorf("failed to count sentinel-owned workouts: %w", err)
	}

	fileInfo, err := os.Stat(db.path)
	if err != nil {
		return stats, fmt.Errorf("failed to stat database file: %w", err)
	}
	stats.DatabaseSize = fileInfo.Size()

	return stats, nil
}

// DatabaseStats holds statistics about the database
type DatabaseStats struct {
	ExerciseCount int
	WorkoutCount  int
	SnapshotCount int
	SentinelOwned int
	DatabaseSize  int64 // in bytes
}

// String returns a human-readable representation of database statistics
func (s DatabaseStats) String() string {
	sizeMB := float64(s.DatabaseSize) / (1024 * 1024)
	return fmt.Sprintf(
		"Exercises: %d | Workouts: %d | Snapshots: %d | Pre-auth: %d | Size: %.2f MB",
		s.ExerciseCount, s.WorkoutCount, s.SnapshotCount, s.SentinelOwned, sizeMB,
	)
}
