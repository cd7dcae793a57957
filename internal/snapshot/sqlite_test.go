package snapshot

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "contas-test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get(context.Background(), KeyBills)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("missing key must report ok=false")
	}
}

func TestSQLiteStoreSetAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, KeyBills, `[{"id":"a"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get(ctx, KeyBills)
	if err != nil || !ok {
		t.Fatalf("get failed (ok=%v err=%v)", ok, err)
	}
	if got != `[{"id":"a"}]` {
		t.Fatalf("got %q", got)
	}
}

func TestSQLiteStoreSetOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, KeyGroups, `["Geral"]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, KeyGroups, `["Geral","Extra"]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, err := s.Get(ctx, KeyGroups)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != `["Geral","Extra"]` {
		t.Fatalf("overwrite lost, got %q", got)
	}
}

func TestSQLiteStoreKeysAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, KeyBills, "bills-payload"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, KeyGroups, "groups-payload"); err != nil {
		t.Fatalf("set: %v", err)
	}
	bills, _, _ := s.Get(ctx, KeyBills)
	groups, _, _ := s.Get(ctx, KeyGroups)
	if bills != "bills-payload" || groups != "groups-payload" {
		t.Fatalf("keys interfere: %q / %q", bills, groups)
	}
}
