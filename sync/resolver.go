package sync

import (
	"hash/fnv"
	"strings"
	"time"
)

// Conflict resolution and stable-ID derivation.
//
// Shared reference data has no central id authority: two devices can each
// download the same catalog entry first and must still land it in the same
// local row. The natural key (the normalized name) is hashed into the local
// primary key, so equality is keyed off the derived id rather than any
// server-assigned identifier.

// NormalizeNaturalKey canonicalizes a natural key before hashing: lowercase,
// trimmed, inner whitespace collapsed to single spaces.
func NormalizeNaturalKey(key string) string {
	return strings.Join(strings.Fields(strings.ToLower(key)), " ")
}

// DeriveStableID computes the deterministic local primary key for a shared
// reference record from its natural key. FNV-1a, truncated into the
// non-negative int64 range. The same key yields the same id on every device,
// independent of download order.
func DeriveStableID(naturalKey string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(NormalizeNaturalKey(naturalKey)))
	return int64(h.Sum64() & 0x7FFFFFFFFFFFFFFF)
}

// Decision is the resolver's verdict for one remote record matched against
// the local store.
type Decision struct {
	// InsertNew is set when no local row exists; the remote version becomes
	// a new local row.
	InsertNew bool

	// UpdateScalars is set when the remote version wins last-write-wins:
	// remote strictly newer than local.
	UpdateScalars bool

	// ReplaceChildren is always set when a remote payload exists: dependent
	// child rows follow the remote payload even when the local parent is
	// kept. A locally newer parent can therefore end up holding remote-only
	// children; see DESIGN.md on this parent/child asymmetry.
	ReplaceChildren bool
}

// Resolve applies last-write-wins between a local row and a remote document.
// localUpdatedAt is ignored when exists is false. Timestamps compare at
// second precision since that is what the local store persists.
func Resolve(localUpdatedAt, remoteModified time.Time, exists bool) Decision {
	if !exists {
		return Decision{InsertNew: true, UpdateScalars: true, ReplaceChildren: true}
	}
	return Decision{
		UpdateScalars:   remoteModified.Truncate(time.Second).After(localUpdatedAt.Truncate(time.Second)),
		ReplaceChildren: true,
	}
}
