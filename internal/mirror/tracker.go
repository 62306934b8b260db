package mirror

import (
	"context"
	"fmt"

	"kakeibo/internal/core"
)

// EntryAppender is the slice of Client the tracker needs; tests substitute it.
type EntryAppender interface {
	AppendEntry(ctx context.Context, date core.DateKey, p core.Participant, e core.Entry) (string, error)
}

type slotKey struct {
	date core.DateKey
	p    core.Participant
}

// Tracker diffs successive ledger snapshots and appends only the new tail of
// each slot to the sheet. The first snapshot primes the counters without
// appending, so a restart does not duplicate already-mirrored rows; entries
// committed while the worker was down are not backfilled.
//
// Slots only grow between snapshots under normal operation. A slot that
// shrank (a concurrent overwrite won) resets its counter and the remainder is
// mirrored again.
type Tracker struct {
	appender EntryAppender
	seen     map[slotKey]int
	primed   bool
}

func NewTracker(appender EntryAppender) *Tracker {
	return &Tracker{appender: appender, seen: make(map[slotKey]int)}
}

// Sync walks the snapshot in date order and appends every entry past the
// last seen position of its slot. The counter advances per appended entry, so
// a mid-slot failure resumes where it stopped.
func (t *Tracker) Sync(ctx context.Context, ledger core.Ledger) error {
	if !t.primed {
		for date, rec := range ledger {
			for p, entries := range rec.Entries {
				t.seen[slotKey{date: date, p: p}] = len(entries)
			}
		}
		t.primed = true
		return nil
	}

	for _, date := range ledger.SortedDates() {
		for p, entries := range ledger[date].Entries {
			key := slotKey{date: date, p: p}
			from := t.seen[key]
			if from > len(entries) {
				from = 0
			}
			for i := from; i < len(entries); i++ {
				if _, err := t.appender.AppendEntry(ctx, date, p, entries[i]); err != nil {
					t.seen[key] = i
					return fmt.Errorf("append entry %s/%s[%d]: %w", date, p, i, err)
				}
			}
			t.seen[key] = len(entries)
		}
	}
	return nil
}
