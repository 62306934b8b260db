// Package memory is the in-memory ledger store, the default backend and the
// one the tests run against.
package memory

import (
	"context"
	"sync"

	"kakeibo/internal/core"
)

type Store struct {
	mu     sync.Mutex
	ledger core.Ledger
}

func New() *Store {
	return &Store{ledger: core.Ledger{}}
}

// FetchSlot returns a copy of the participant's entry sequence for the date.
func (s *Store) FetchSlot(_ context.Context, date core.DateKey, p core.Participant) ([]core.Entry, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.ledger[date]
	if !ok {
		return nil, "", nil
	}
	slot := rec.Slot(p)
	if slot == nil {
		return nil, "", nil
	}
	out := make([]core.Entry, len(slot))
	copy(out, slot)
	return out, rec.Writers[p], nil
}

// StoreSlot replaces the participant's slot for the date, leaving the other
// participant's slot untouched.
func (s *Store) StoreSlot(_ context.Context, date core.DateKey, p core.Participant, entries []core.Entry, writerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.ledger[date]
	if !ok {
		rec = core.DayRecord{}
	}
	if rec.Entries == nil {
		rec.Entries = make(map[core.Participant][]core.Entry)
	}
	if rec.Writers == nil {
		rec.Writers = make(map[core.Participant]string)
	}
	slot := make([]core.Entry, len(entries))
	copy(slot, entries)
	rec.Entries[p] = slot
	rec.Writers[p] = writerID
	s.ledger[date] = rec
	return nil
}

// LoadSnapshot returns a deep copy of the full ledger.
func (s *Store) LoadSnapshot(_ context.Context) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(core.Ledger, len(s.ledger))
	for date, rec := range s.ledger {
		cp := core.DayRecord{
			Entries: make(map[core.Participant][]core.Entry, len(rec.Entries)),
			Writers: make(map[core.Participant]string, len(rec.Writers)),
		}
		for p, slot := range rec.Entries {
			entries := make([]core.Entry, len(slot))
			copy(entries, slot)
			cp.Entries[p] = entries
		}
		for p, w := range rec.Writers {
			cp.Writers[p] = w
		}
		snap[date] = cp
	}
	return snap, nil
}
