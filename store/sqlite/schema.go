package sqlite

// Schema version for migration management
const SchemaVersion = 1

// SQL statements for database schema creation

// ExercisesTableSQL creates the shared exercise catalog table. The integer
// primary key is the stable derived id computed from the normalized exercise
// name, never a server-assigned value, so rows merge consistently across
// devices.
const ExercisesTableSQL = `
CREATE TABLE IF NOT EXISTS exercises (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    muscle_group TEXT,
    equipment TEXT,
    updated_at INTEGER NOT NULL
);
`

// WorkoutsTableSQL creates the workouts table. remote_id maps the local row
// to its remote document and is never assumed equal to the local id.
const WorkoutsTableSQL = `
CREATE TABLE IF NOT EXISTS workouts (
    id TEXT PRIMARY KEY,
    remote_id TEXT,
    owner_id TEXT NOT NULL,
    title TEXT NOT NULL,
    started_at INTEGER,
    duration_min INTEGER DEFAULT 0,
    notes TEXT,
    updated_at INTEGER NOT NULL
);
`

// WorkoutSetsTableSQL creates the child table for per-workout sets. It
// carries owner_id so bulk ownership statements cover it directly.
const WorkoutSetsTableSQL = `
CREATE TABLE IF NOT EXISTS workout_sets (
    workout_id TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    set_index INTEGER NOT NULL,
    exercise_id INTEGER NOT NULL,
    reps INTEGER DEFAULT 0,
    weight_kg REAL DEFAULT 0,

    PRIMARY KEY (workout_id, set_index),
    FOREIGN KEY(workout_id) REFERENCES workouts(id) ON DELETE CASCADE
);
`

// ProgressSnapshotsTableSQL creates the body-progress snapshot table
const ProgressSnapshotsTableSQL = `
CREATE TABLE IF NOT EXISTS progress_snapshots (
    id TEXT PRIMARY KEY,
    remote_id TEXT,
    owner_id TEXT NOT NULL,
    measured_at INTEGER NOT NULL,
    body_weight_kg REAL,
    body_fat_pct REAL,
    updated_at INTEGER NOT NULL
);
`

// SyncCheckpointsTableSQL creates the per-strategy checkpoint table. A
// missing row means "full sync" for that (data type, owner) pair.
const SyncCheckpointsTableSQL = `
CREATE TABLE IF NOT EXISTS sync_checkpoints (
    data_type TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    downloaded_at INTEGER,
    uploaded_at INTEGER,

    PRIMARY KEY (data_type, owner_id)
);
`

// SchemaVersionTableSQL creates the schema version table for migration tracking
const SchemaVersionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// Index creation statements for performance optimization

// WorkoutsIndexesSQL creates indexes on workouts for sync and ownership scans
const WorkoutsIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_workouts_owner_id ON workouts(owner_id);
CREATE INDEX IF NOT EXISTS idx_workouts_remote_id ON workouts(remote_id);
CREATE INDEX IF NOT EXISTS idx_workouts_updated_at ON workouts(updated_at);
`

// WorkoutSetsIndexesSQL creates indexes on workout_sets
const WorkoutSetsIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_workout_sets_workout_id ON workout_sets(workout_id);
CREATE INDEX IF NOT EXISTS idx_workout_sets_owner_id ON workout_sets(owner_id);
`

// ProgressSnapshotsIndexesSQL creates indexes on progress_snapshots
const ProgressSnapshotsIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_progress_snapshots_owner_id ON progress_snapshots(owner_id);
CREATE INDEX IF NOT EXISTS idx_progress_snapshots_remote_id ON progress_snapshots(remote_id);
`

// AllTableSchemas returns all table creation statements in order
func AllTableSchemas() []string {
	return []string{
		SchemaVersionTableSQL,
		ExercisesTableSQL,
		WorkoutsTableSQL,
		WorkoutSetsTableSQL,
		ProgressSnapshotsTableSQL,
		SyncCheckpointsTableSQL,
	}
}

// AllIndexes returns all index creation statements
func AllIndexes() []string {
	return []string{
		WorkoutsIndexesSQL,
		WorkoutSetsIndexesSQL,
		ProgressSnapshotsIndexesSQL,
	}
}

// PragmaStatements returns pragma statements to execute on database connection
func PragmaStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous = NORMAL", // Balance between safety and performance
	}
}

// OwnedTables returns every table that carries an ownership column, in
// child-before-parent order so the same list serves bulk deletes.
func OwnedTables() []string {
	return []string{
		"workout_sets",
		"workouts",
		"progress_snapshots",
	}
}
