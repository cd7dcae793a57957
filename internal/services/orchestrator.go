// Package services contains the reconciliation/sync orchestrator: the
// sole owner and writer of the in-memory bill collection, responsible
// for local-first loading, remote reconciliation and optimistic
// mutations with asynchronous sync-back.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"contas/internal/core"
	"contas/internal/remote"
	"contas/internal/series"
	"contas/internal/snapshot"
)

// Orchestrator lifecycle states.
const (
	StateUninitialized State = "uninitialized"
	StateLocalLoaded   State = "local_loaded"
	StateReconciling   State = "reconciling"
	StateSynced        State = "synced"
	StateSyncError     State = "sync_error"
)

type (
	State string

	// SyncStatus is the user-visible sync indicator.
	SyncStatus struct {
		State     State
		InFlight  int
		LastSync  time.Time
		LastError string
	}

	// Options configures an Orchestrator. Remote and Snapshot are
	// required; everything else has defaults.
	Options struct {
		Remote     remote.Store
		Dispatcher RemoteDispatcher
		Snapshot   snapshot.Store
		Calendar   series.Calendar
		ExtraGroup string
		NewID      func() string
		Now        func() time.Time
	}

	Orchestrator struct {
		remote     remote.Store
		dispatch   RemoteDispatcher
		snap       snapshot.Store
		planner    series.Planner
		extraGroup string
		now        func() time.Time

		mu       sync.Mutex
		state    State
		hadLocal bool
		inFlight int
		lastSync time.Time
		lastErr  string
		bills    []core.Bill
		groups   []string

		wg sync.WaitGroup
	}
)

func New(opts Options) (*Orchestrator, error) {
	if opts.Remote == nil {
		return nil, fmt.Errorf("remote store is required")
	}
	if opts.Snapshot == nil {
		return nil, fmt.Errorf("snapshot store is required")
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewStoreDispatcher(opts.Remote)
	}
	if len(opts.Calendar) == 0 {
		opts.Calendar = series.YearCalendar(time.Now().Year())
	}
	if opts.ExtraGroup == "" {
		opts.ExtraGroup = DefaultExtraGroup
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		remote:     opts.Remote,
		dispatch:   opts.Dispatcher,
		snap:       opts.Snapshot,
		planner:    series.Planner{Calendar: opts.Calendar, NewID: opts.NewID},
		extraGroup: opts.ExtraGroup,
		now:        opts.Now,
		state:      StateUninitialized,
	}, nil
}

// Start loads the local snapshot (or the built-in seed set) and kicks
// off remote reconciliation in the background. The caller gets a usable
// working set as soon as Start returns.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateUninitialized {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already started")
	}

	bills, groups, hadLocal, err := o.loadLocal(ctx)
	if err != nil {
		o.mu.Unlock()
		return err
	}
	if !hadLocal {
		bills = SeedBills(o.planner)
		groups = SeedGroups()
	}
	o.bills = bills
	o.groups = groups
	o.hadLocal = hadLocal
	o.lastSync = o.loadLastSync(ctx)
	o.state = StateLocalLoaded
	o.mu.Unlock()

	slog.InfoContext(ctx, "Local state loaded",
		"bills", len(bills), "groups", len(groups), "from_snapshot", hadLocal)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.reconcile(context.WithoutCancel(ctx))
	}()
	return nil
}

// reconcile applies the startup seeding rules: a non-empty remote wins
// over local; an empty remote receives the local (or seed) set.
func (o *Orchestrator) reconcile(ctx context.Context) {
	o.mu.Lock()
	o.state = StateReconciling
	local := append([]core.Bill(nil), o.bills...)
	hadLocal := o.hadLocal
	o.mu.Unlock()

	rows, err := o.remote.SelectAll(ctx)
	if err != nil {
		o.recordError(ctx, "fetch remote bills", err)
		return
	}

	if len(rows) > 0 {
		o.mu.Lock()
		o.bills = rows
		o.groups = unionGroups(o.groups, rows)
		o.saveLocalLocked(ctx)
		o.markSyncedLocked(ctx)
		o.mu.Unlock()
		slog.InfoContext(ctx, "Adopted remote bill set", "bills", len(rows))
		return
	}

	// Remote empty: push what we have (snapshot contents, or the seed set
	// adopted when no snapshot existed).
	if err := o.remote.Insert(ctx, local); err != nil {
		o.recordError(ctx, "push local bills to empty remote", err)
		return
	}
	o.mu.Lock()
	o.saveLocalLocked(ctx)
	o.markSyncedLocked(ctx)
	o.mu.Unlock()
	slog.InfoContext(ctx, "Seeded empty remote store",
		"bills", len(local), "from_snapshot", hadLocal)
}

// Flush waits for in-flight remote dispatches. Used at shutdown.
func (o *Orchestrator) Flush() {
	o.wg.Wait()
}

// Status returns the current sync indicator.
func (o *Orchestrator) Status() SyncStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return SyncStatus{
		State:     o.state,
		InFlight:  o.inFlight,
		LastSync:  o.lastSync,
		LastError: o.lastErr,
	}
}

// BillsForMonth returns the bills of a month under a status filter.
func (o *Orchestrator) BillsForMonth(month core.MonthRef, filter core.StatusFilter) []core.Bill {
	o.mu.Lock()
	defer o.mu.Unlock()
	return core.FilterBills(o.bills, month, filter)
}

// Stats sums the month excluding the extra group.
func (o *Orchestrator) Stats(month core.MonthRef) core.MonthlyStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return core.ComputeMonthlyStats(o.bills, month, o.extraGroup)
}

// GroupedForMonth partitions the filtered month view by group.
func (o *Orchestrator) GroupedForMonth(month core.MonthRef, filter core.StatusFilter) []core.GroupTotal {
	o.mu.Lock()
	defer o.mu.Unlock()
	return core.GroupBills(core.FilterBills(o.bills, month, filter))
}

// Groups returns the known group names in order.
func (o *Orchestrator) Groups() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.groups...)
}

// Bill looks up one bill by id.
func (o *Orchestrator) Bill(id string) (core.Bill, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, b := range o.bills {
		if b.ID == id {
			return b, true
		}
	}
	return core.Bill{}, false
}

// CreateBill plans and applies a create intent, then syncs the inserted
// rows to the remote store asynchronously.
func (o *Orchestrator) CreateBill(ctx context.Context, in series.Input, ref core.MonthRef) ([]core.Bill, error) {
	o.mu.Lock()
	cs, err := o.planner.PlanCreate(in, ref, o.bills)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.bills = append(o.bills, cs.Inserts...)
	o.ensureGroupLocked(in.Group)
	o.saveLocalLocked(ctx)
	o.mu.Unlock()

	o.dispatchUpsert(ctx, cs.Bills())
	return cs.Inserts, nil
}

// EditBill cascades a base-field edit across the future siblings of the
// bill and, when the fixed flag was turned on, fills in missing months.
func (o *Orchestrator) EditBill(ctx context.Context, id string, in series.Input) (series.ChangeSet, error) {
	o.mu.Lock()
	original, ok := o.findLocked(id)
	if !ok {
		o.mu.Unlock()
		return series.ChangeSet{}, fmt.Errorf("bill %s not found", id)
	}
	cs, err := o.planner.PlanEdit(in, original, o.bills)
	if err != nil {
		o.mu.Unlock()
		return series.ChangeSet{}, err
	}
	for _, u := range cs.Updates {
		o.replaceLocked(u)
	}
	o.bills = append(o.bills, cs.Inserts...)
	o.ensureGroupLocked(in.Group)
	o.saveLocalLocked(ctx)
	o.mu.Unlock()

	o.dispatchUpsert(ctx, cs.Bills())
	return cs, nil
}

// ToggleStatus flips a bill between pending and paid.
func (o *Orchestrator) ToggleStatus(ctx context.Context, id string) (core.Bill, error) {
	o.mu.Lock()
	bill, ok := o.findLocked(id)
	if !ok {
		o.mu.Unlock()
		return core.Bill{}, fmt.Errorf("bill %s not found", id)
	}
	bill.Status = bill.Status.Toggle()
	o.replaceLocked(bill)
	o.saveLocalLocked(ctx)
	o.mu.Unlock()

	o.dispatchUpsert(ctx, []core.Bill{bill})
	return bill, nil
}

// DeleteBill removes one row. Other rows of the series stay; a series
// detaches rather than retracts.
func (o *Orchestrator) DeleteBill(ctx context.Context, id string) error {
	o.mu.Lock()
	if _, ok := o.findLocked(id); !ok {
		o.mu.Unlock()
		return fmt.Errorf("bill %s not found", id)
	}
	o.removeLocked(map[string]struct{}{id: {}})
	o.saveLocalLocked(ctx)
	o.mu.Unlock()

	o.dispatchDelete(ctx, []string{id})
	return nil
}

// AddGroup registers a new group name.
func (o *Orchestrator) AddGroup(ctx context.Context, name string) error {
	if name == "" {
		return core.ErrEmptyGroup
	}
	o.mu.Lock()
	o.ensureGroupLocked(name)
	o.saveLocalLocked(ctx)
	o.mu.Unlock()
	return nil
}

// RenameGroup rewrites the group field on every matching bill in place.
// This is a bulk field rewrite, not a series cascade: statuses, months
// and numbering are untouched.
func (o *Orchestrator) RenameGroup(ctx context.Context, oldName, newName string) error {
	if newName == "" {
		return core.ErrEmptyGroup
	}
	o.mu.Lock()
	renamed := false
	for i, g := range o.groups {
		if g == oldName {
			o.groups[i] = newName
			renamed = true
		}
	}
	if !renamed {
		o.mu.Unlock()
		return fmt.Errorf("group %s not found", oldName)
	}
	var changed []core.Bill
	for i := range o.bills {
		if o.bills[i].Group == oldName {
			o.bills[i].Group = newName
			changed = append(changed, o.bills[i])
		}
	}
	o.saveLocalLocked(ctx)
	o.mu.Unlock()

	if len(changed) > 0 {
		o.dispatchUpsert(ctx, changed)
	}
	return nil
}

// DeleteGroup removes the group and cascades to every bill in it.
func (o *Orchestrator) DeleteGroup(ctx context.Context, name string) error {
	o.mu.Lock()
	kept := o.groups[:0]
	removed := false
	for _, g := range o.groups {
		if g == name {
			removed = true
			continue
		}
		kept = append(kept, g)
	}
	if !removed {
		o.mu.Unlock()
		return fmt.Errorf("group %s not found", name)
	}
	o.groups = kept

	drop := map[string]struct{}{}
	for _, b := range o.bills {
		if b.Group == name {
			drop[b.ID] = struct{}{}
		}
	}
	o.removeLocked(drop)
	o.saveLocalLocked(ctx)
	o.mu.Unlock()

	if len(drop) > 0 {
		ids := make([]string, 0, len(drop))
		for id := range drop {
			ids = append(ids, id)
		}
		o.dispatchDelete(ctx, ids)
	}
	return nil
}

// ForceSync bulk-upserts the entire local collection to the remote
// store, in chunks, and reports the outcome synchronously. This is the
// only recovery path for previously failed incremental syncs.
func (o *Orchestrator) ForceSync(ctx context.Context) error {
	o.mu.Lock()
	bills := append([]core.Bill(nil), o.bills...)
	o.mu.Unlock()

	const chunkSize = 50
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for start := 0; start < len(bills); start += chunkSize {
		end := start + chunkSize
		if end > len(bills) {
			end = len(bills)
		}
		chunk := bills[start:end]
		g.Go(func() error {
			return o.remote.Upsert(gctx, chunk)
		})
	}
	if err := g.Wait(); err != nil {
		o.recordError(ctx, "force full sync", err)
		return fmt.Errorf("force sync: %w", err)
	}

	o.mu.Lock()
	o.markSyncedLocked(ctx)
	o.mu.Unlock()
	slog.InfoContext(ctx, "Force sync complete", "bills", len(bills))
	return nil
}

// ---- internals ----

func (o *Orchestrator) loadLocal(ctx context.Context) (bills []core.Bill, groups []string, hadLocal bool, err error) {
	raw, ok, err := o.snap.Get(ctx, snapshot.KeyBills)
	if err != nil {
		return nil, nil, false, fmt.Errorf("load bills snapshot: %w", err)
	}
	if !ok {
		return nil, nil, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &bills); err != nil {
		return nil, nil, false, fmt.Errorf("decode bills snapshot: %w", err)
	}
	rawGroups, ok, err := o.snap.Get(ctx, snapshot.KeyGroups)
	if err != nil {
		return nil, nil, false, fmt.Errorf("load groups snapshot: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(rawGroups), &groups); err != nil {
			return nil, nil, false, fmt.Errorf("decode groups snapshot: %w", err)
		}
	}
	return bills, groups, true, nil
}

// saveLocalLocked flushes the working set to the snapshot store. A
// failing local write is a programming error, not an expected runtime
// condition, so it is logged loudly and the in-memory state stands.
func (o *Orchestrator) saveLocalLocked(ctx context.Context) {
	billsJSON, err := json.Marshal(o.bills)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to encode bills snapshot", "error", err)
		return
	}
	groupsJSON, err := json.Marshal(o.groups)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to encode groups snapshot", "error", err)
		return
	}
	if err := o.snap.Set(ctx, snapshot.KeyBills, string(billsJSON)); err != nil {
		slog.ErrorContext(ctx, "Failed to write bills snapshot", "error", err)
	}
	if err := o.snap.Set(ctx, snapshot.KeyGroups, string(groupsJSON)); err != nil {
		slog.ErrorContext(ctx, "Failed to write groups snapshot", "error", err)
	}
}

func (o *Orchestrator) findLocked(id string) (core.Bill, bool) {
	for _, b := range o.bills {
		if b.ID == id {
			return b, true
		}
	}
	return core.Bill{}, false
}

func (o *Orchestrator) replaceLocked(bill core.Bill) {
	for i := range o.bills {
		if o.bills[i].ID == bill.ID {
			o.bills[i] = bill
			return
		}
	}
}

func (o *Orchestrator) removeLocked(ids map[string]struct{}) {
	kept := o.bills[:0]
	for _, b := range o.bills {
		if _, drop := ids[b.ID]; !drop {
			kept = append(kept, b)
		}
	}
	o.bills = kept
}

func (o *Orchestrator) ensureGroupLocked(name string) {
	for _, g := range o.groups {
		if g == name {
			return
		}
	}
	o.groups = append(o.groups, name)
}

// dispatchUpsert sends the affected rows to the remote store without
// blocking the caller. Failures flip the status to sync_error and are
// never rolled back locally.
func (o *Orchestrator) dispatchUpsert(ctx context.Context, bills []core.Bill) {
	if len(bills) == 0 {
		return
	}
	o.dispatchAsync(ctx, "upsert", func(ctx context.Context) error {
		return o.dispatch.UpsertBills(ctx, bills)
	})
}

func (o *Orchestrator) dispatchDelete(ctx context.Context, ids []string) {
	o.dispatchAsync(ctx, "delete", func(ctx context.Context) error {
		return o.dispatch.DeleteBills(ctx, ids)
	})
}

func (o *Orchestrator) dispatchAsync(ctx context.Context, op string, fn func(ctx context.Context) error) {
	o.mu.Lock()
	o.inFlight++
	o.mu.Unlock()

	// Detach from the caller's cancellation: an in-flight sync has no
	// timeout and outlives the mutation that produced it.
	ctx = context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		err := fn(ctx)
		o.mu.Lock()
		o.inFlight--
		o.mu.Unlock()
		if err != nil {
			o.recordError(ctx, "remote "+op, err)
			return
		}
		o.mu.Lock()
		o.markSyncedLocked(ctx)
		o.mu.Unlock()
	}()
}

func (o *Orchestrator) recordError(ctx context.Context, op string, err error) {
	o.mu.Lock()
	o.state = StateSyncError
	o.lastErr = fmt.Sprintf("%s: %v", op, err)
	o.mu.Unlock()
	slog.WarnContext(ctx, "Remote sync failed", "operation", op, "error", err)
}

// markSyncedLocked records a successful sync and persists the last-good
// timestamp so a later invocation still shows it next to any new error.
func (o *Orchestrator) markSyncedLocked(ctx context.Context) {
	o.state = StateSynced
	o.lastSync = o.now()
	o.lastErr = ""
	if err := o.snap.Set(ctx, snapshot.KeyLastSync, o.lastSync.Format(time.RFC3339)); err != nil {
		slog.ErrorContext(ctx, "Failed to write last sync timestamp", "error", err)
	}
}

func (o *Orchestrator) loadLastSync(ctx context.Context) time.Time {
	raw, ok, err := o.snap.Get(ctx, snapshot.KeyLastSync)
	if err != nil || !ok {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func unionGroups(groups []string, bills []core.Bill) []string {
	seen := make(map[string]struct{}, len(groups))
	out := append([]string(nil), groups...)
	for _, g := range groups {
		seen[g] = struct{}{}
	}
	for _, b := range bills {
		if b.Group == "" {
			continue
		}
		if _, ok := seen[b.Group]; ok {
			continue
		}
		seen[b.Group] = struct{}{}
		out = append(out, b.Group)
	}
	return out
}
