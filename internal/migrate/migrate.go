// Package migrate reassigns sentinel-owned local data to an authenticated
// user. It runs once, immediately after a local-only user signs in, and is
// not part of the steady-state sync loop.
package migrate

import (
	"fmt"

	"fitsync/internal/utils"
	"fitsync/store"
	"fitsync/store/sqlite"
)

// Migrator performs bulk ownership reassignment and cleanup across every
// table that carries an ownership column. It holds exclusive write access to
// the ownership field for the duration of its one transaction; the store's
// transaction atomicity is the only mutual exclusion it needs.
type Migrator struct {
	db *sqlite.DB
}

// New creates a migrator over the local store
func New(db *sqlite.DB) *Migrator {
	return &Migrator{db: db}
}

// HasLocalData reports whether any sentinel-owned rows exist in the primary
// table. Fails closed: a storage error reads as "no local data" rather than
// propagating.
func (m *Migrator) HasLocalData() bool {
	count, err := m.db.CountOwnedBy(store.SentinelOwner)
	if err != nil {
		utils.Warnf("[Migrate] local data check failed: %v", err)
		return false
	}
	return count > 0
}

// MigrateLocalDataToUser reassigns every sentinel-owned row to targetUserID
// inside one transaction, one bulk update per owned table. Returns true only
// if the whole transaction commits; any failure rolls everything back, so
// partial reassignment is never observable. Migrating the sentinel onto
// itself is rejected without touching storage.
func (m *Migrator) MigrateLocalDataToUser(targetUserID string) bool {
	if targetUserID == "" || targetUserID == store.SentinelOwner {
		utils.Warnf("[Migrate] refusing to migrate local data to %q", targetUserID)
		return false
	}

	tx, err := m.db.Begin()
	if err != nil {
		utils.Errorf("[Migrate] failed to begin transaction: %v", err)
		return false
	}
	defer func() { _ = tx.Rollback() }()

	total := int64(0)
	for _, table := range sqlite.OwnedTables() {
		res, err := tx.Exec(
			fmt.Sprintf("UPDATE %s SET owner_id = ? WHERE owner_id = ?", table),
			targetUserID, store.SentinelOwner,
		)
		if err != nil {
			utils.Errorf("[Migrate] reassign failed for %s: %v", table, err)
			return false
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	if err := tx.Commit(); err != nil {
		utils.Errorf("[Migrate] commit failed: %v", err)
		return false
	}

	utils.Infof("[Migrate] reassigned %d rows to %s", total, targetUserID)
	return true
}

// CleanupLocalData deletes every remaining sentinel-owned row across the
// same table set, inside one transaction. Used after a successful migration
// to reclaim orphaned originals, or to discard local data the user chose
// not to keep.
func (m *Migrator) CleanupLocalData() bool {
	tx, err := m.db.Begin()
	if err != nil {
		utils.Errorf("[Migrate] failed to begin transaction: %v", err)
		return false
	}
	defer func() { _ = tx.Rollback() }()

	total := int64(0)
	for _, table := range sqlite.OwnedTables() {
		res, err := tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE owner_id = ?", table),
			store.SentinelOwner,
		)
		if err != nil {
			utils.Errorf("[Migrate] cleanup failed for %s: %v", table, err)
			return false
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	if err := tx.Commit(); err != nil {
		utils.Errorf("[Migrate] commit failed: %v", err)
		return false
	}

	utils.Infof("[Migrate] removed %d sentinel-owned rows", total)
	return true
}
