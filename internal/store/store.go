package store

import (
	"context"
	"errors"

	"family-ledger-sync-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	// ErrQuotaExceeded is returned by a LocalStore when the serialized
	// snapshot no longer fits the storage quota. The orchestrator reacts by
	// trimming history and retrying once.
	ErrQuotaExceeded = errors.New("local storage quota exceeded")

	// ErrRemoteUnavailable wraps transport-level failures of the remote
	// store. The orchestrator fails open on it: local data is never blocked
	// from being the fallback of record.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)

// IDRemapping maps client-generated temporary entity IDs to the permanent IDs
// the remote store assigned during a write.
type IDRemapping map[string]string

// RemoteStore is the server-side copy of the family state.
type RemoteStore interface {
	// LoadState fetches the remote snapshot for an owner. A nil state with a
	// nil error means no remote snapshot exists yet (first sync).
	LoadState(ctx context.Context, ownerID string) (*models.State, error)

	// SaveState writes the snapshot and returns the ID remapping for any
	// client-generated temporary IDs the server replaced.
	SaveState(ctx context.Context, ownerID string, state *models.State) (IDRemapping, error)
}

// LocalStore is the device-local persistent copy of the family state.
type LocalStore interface {
	// LoadState returns the persisted snapshot, or nil when none exists.
	// Implementations fall back to the one-generation backup when the
	// primary snapshot is unreadable.
	LoadState(ctx context.Context) (*models.State, error)

	// SaveState persists the snapshot, rotating the previous one into the
	// backup slot. Returns ErrQuotaExceeded when the payload is too large.
	SaveState(ctx context.Context, state *models.State) error

	Close()
}

// MergeNotifier receives the advisory side-channel event raised when a
// concurrent edit was resolved by an automatic merge. Implementations must
// not block; the event carries nothing the merge logic depends on.
type MergeNotifier interface {
	MergePerformed(ownerID string)
}

// MergeNotifierFunc adapts a plain function to the MergeNotifier interface.
type MergeNotifierFunc func(ownerID string)

func (f MergeNotifierFunc) MergePerformed(ownerID string) { f(ownerID) }
