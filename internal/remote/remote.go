// Package remote defines the port for the hosted bills table and is
// implemented by the Google Sheets and in-memory adapters.
package remote

import (
	"context"

	"contas/internal/core"
)

// Store is the remote datastore consumed by the orchestrator. All
// operations act on the single "bills" table.
type Store interface {
	// SelectAll reads the full remote bill set.
	SelectAll(ctx context.Context) ([]core.Bill, error)
	// Insert appends rows without looking for existing ids.
	Insert(ctx context.Context, bills []core.Bill) error
	// Upsert updates rows by id, appending those not present.
	Upsert(ctx context.Context, bills []core.Bill) error
	// DeleteByID removes one row by id; unknown ids are not an error.
	DeleteByID(ctx context.Context, id string) error
	// DeleteByIDs removes every row whose id is in the set.
	DeleteByIDs(ctx context.Context, ids []string) error
}
