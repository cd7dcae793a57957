// Package worker resolves bill change messages against the shared local
// snapshot and flushes them to the remote store.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/remote"
	"contas/internal/snapshot"
)

type SyncWorker struct {
	snap   snapshot.Store
	remote remote.Store
}

func NewSyncWorker(snap snapshot.Store, store remote.Store) *SyncWorker {
	return &SyncWorker{snap: snap, remote: store}
}

// HandleChange processes one bill change message. Upsert ids missing
// from the snapshot are skipped: the row was deleted locally after the
// message was published and a delete message is already behind it.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.BillChangeMessage) error {
	switch msg.Operation {
	case amqp.OpDelete:
		if err := w.remote.DeleteByIDs(ctx, msg.IDs); err != nil {
			return fmt.Errorf("delete %d bills from remote: %w", len(msg.IDs), err)
		}
		slog.InfoContext(ctx, "Deleted bills from remote store", "ids", len(msg.IDs))
		return nil

	case amqp.OpUpsert:
		bills, err := w.resolveBills(ctx, msg.IDs)
		if err != nil {
			return err
		}
		if len(bills) == 0 {
			slog.WarnContext(ctx, "No snapshot rows for upsert message", "ids", len(msg.IDs))
			return nil
		}
		if err := w.remote.Upsert(ctx, bills); err != nil {
			return fmt.Errorf("upsert %d bills to remote: %w", len(bills), err)
		}
		slog.InfoContext(ctx, "Upserted bills to remote store", "bills", len(bills))
		return nil

	default:
		return fmt.Errorf("unknown operation: %s", msg.Operation)
	}
}

// Resync pushes the entire snapshot bill set to the remote store. The
// worker runs it on a timer so rows missed by lost or failed messages
// converge without manual intervention.
func (w *SyncWorker) Resync(ctx context.Context) error {
	all, err := w.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return nil
	}
	if err := w.remote.Upsert(ctx, all); err != nil {
		return fmt.Errorf("resync %d bills to remote: %w", len(all), err)
	}
	slog.InfoContext(ctx, "Periodic resync complete", "bills", len(all))
	return nil
}

func (w *SyncWorker) loadSnapshot(ctx context.Context) ([]core.Bill, error) {
	raw, ok, err := w.snap.Get(ctx, snapshot.KeyBills)
	if err != nil {
		return nil, fmt.Errorf("load bills snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var all []core.Bill
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("decode bills snapshot: %w", err)
	}
	return all, nil
}

func (w *SyncWorker) resolveBills(ctx context.Context, ids []string) ([]core.Bill, error) {
	all, err := w.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []core.Bill
	for _, b := range all {
		if _, ok := want[b.ID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
