// Package snapshot is the local on-device persistence layer: a key-value
// store holding the serialized bill collection and group list so the
// tracker stays usable offline and across restarts.
package snapshot

import "context"

// Fixed keys for the persisted collections and sync bookkeeping.
const (
	KeyBills    = "bills"
	KeyGroups   = "groups"
	KeyLastSync = "last_sync"
)

// Store is the local snapshot port consumed by the orchestrator.
type Store interface {
	// Get returns the serialized value under key, or ok=false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set writes the serialized value under key, replacing any previous one.
	Set(ctx context.Context, key, value string) error
}
