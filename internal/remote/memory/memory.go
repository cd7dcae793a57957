// Package memory is an in-process remote store used by tests and as the
// offline backend.
package memory

import (
	"context"
	"sync"

	"contas/internal/core"
	"contas/internal/remote"
)

type Store struct {
	mu    sync.Mutex
	bills []core.Bill

	// FailWith, when set, makes every operation return this error.
	// Tests use it to simulate transport failures.
	FailWith error
}

var _ remote.Store = (*Store)(nil)

func New(seed ...core.Bill) *Store {
	return &Store{bills: append([]core.Bill(nil), seed...)}
}

func (s *Store) SelectAll(_ context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return append([]core.Bill(nil), s.bills...), nil
}

func (s *Store) Insert(_ context.Context, bills []core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.bills = append(s.bills, bills...)
	return nil
}

func (s *Store) Upsert(_ context.Context, bills []core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for _, b := range bills {
		replaced := false
		for i := range s.bills {
			if s.bills[i].ID == b.ID {
				s.bills[i] = b
				replaced = true
				break
			}
		}
		if !replaced {
			s.bills = append(s.bills, b)
		}
	}
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) error {
	return s.DeleteByIDs(ctx, []string{id})
}

func (s *Store) DeleteByIDs(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.bills[:0]
	for _, b := range s.bills {
		if _, ok := drop[b.ID]; !ok {
			kept = append(kept, b)
		}
	}
	s.bills = kept
	return nil
}
