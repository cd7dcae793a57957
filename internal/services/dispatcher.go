package services

import (
	"context"

	"contas/internal/core"
	"contas/internal/remote"
)

// RemoteDispatcher carries incremental mutations to the remote store.
// The direct implementation calls the store; the AMQP publisher hands
// the work to a worker process instead.
type RemoteDispatcher interface {
	UpsertBills(ctx context.Context, bills []core.Bill) error
	DeleteBills(ctx context.Context, ids []string) error
}

type storeDispatcher struct {
	store remote.Store
}

// NewStoreDispatcher dispatches mutations straight to the remote store.
func NewStoreDispatcher(store remote.Store) RemoteDispatcher {
	return storeDispatcher{store: store}
}

func (d storeDispatcher) UpsertBills(ctx context.Context, bills []core.Bill) error {
	return d.store.Upsert(ctx, bills)
}

func (d storeDispatcher) DeleteBills(ctx context.Context, ids []string) error {
	return d.store.DeleteByIDs(ctx, ids)
}
