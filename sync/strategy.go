package sync

import (
	"context"
	"time"
)

// Strategy is a self-contained download/upload unit for one data domain.
// Implementations must be safely re-runnable from the same checkpoint:
// re-downloading and re-merging the same remote record must not duplicate
// rows or corrupt dependent child rows. Failures are reported through the
// error return; a strategy must not panic across this boundary.
type Strategy interface {
	// DownloadAndMerge fetches remote records changed since the checkpoint
	// and merges each into the local store under last-write-wins. A zero
	// since means full sync. userID is ignored by shared-data strategies.
	DownloadAndMerge(ctx context.Context, userID string, since time.Time) error

	// UploadChanges pushes local mutations for the user since the
	// checkpoint to the remote store. Shared-data strategies implement this
	// as a no-op that still succeeds.
	UploadChanges(ctx context.Context, userID string, since time.Time) error

	// DataType returns a stable label used for logging, metrics and
	// checkpoint keys.
	DataType() string

	// UserScoped reports whether this strategy syncs per-user data.
	UserScoped() bool
}
