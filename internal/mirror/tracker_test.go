package mirror

import (
	"context"
	"errors"
	"testing"

	"kakeibo/internal/core"
)

type appended struct {
	date core.DateKey
	p    core.Participant
	desc string
}

type fakeAppender struct {
	rows []appended
	err  error
}

func (f *fakeAppender) AppendEntry(_ context.Context, date core.DateKey, p core.Participant, e core.Entry) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, appended{date: date, p: p, desc: e.Description})
	return "ref", nil
}

func ledgerWith(t *testing.T, slots map[string][]string) core.Ledger {
	t.Helper()
	l := core.Ledger{}
	for key, descs := range slots {
		date := core.DateKey(key[:10])
		p := core.Participant(key[11:])
		for i, d := range descs {
			l.Append(date, p, core.Entry{Amount: core.Money{Cents: 100}, Description: d, RecordedAt: int64(i)}, "w")
		}
	}
	return l
}

func TestTrackerPrimesWithoutAppending(t *testing.T) {
	f := &fakeAppender{}
	tr := NewTracker(f)
	l := ledgerWith(t, map[string][]string{"2025-08-01/Sota": {"old"}})

	if err := tr.Sync(context.Background(), l); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(f.rows) != 0 {
		t.Fatalf("priming must not mirror history, got %+v", f.rows)
	}
}

func TestTrackerAppendsOnlyNewEntries(t *testing.T) {
	f := &fakeAppender{}
	tr := NewTracker(f)
	ctx := context.Background()

	first := ledgerWith(t, map[string][]string{"2025-08-01/Sota": {"old"}})
	if err := tr.Sync(ctx, first); err != nil {
		t.Fatalf("prime: %v", err)
	}

	second := ledgerWith(t, map[string][]string{
		"2025-08-01/Sota":  {"old", "new"},
		"2025-08-02/Renma": {"fresh"},
	})
	if err := tr.Sync(ctx, second); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(f.rows) != 2 {
		t.Fatalf("expected 2 mirrored rows, got %+v", f.rows)
	}
	if f.rows[0].desc != "new" || f.rows[0].date != "2025-08-01" {
		t.Fatalf("unexpected first row: %+v", f.rows[0])
	}
	if f.rows[1].desc != "fresh" || f.rows[1].p != "Renma" {
		t.Fatalf("unexpected second row: %+v", f.rows[1])
	}

	// A third sync with no changes appends nothing.
	if err := tr.Sync(ctx, second); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if len(f.rows) != 2 {
		t.Fatalf("idempotent sync appended rows: %+v", f.rows)
	}
}

func TestTrackerResumesAfterFailure(t *testing.T) {
	f := &fakeAppender{err: errors.New("api down")}
	tr := NewTracker(f)
	ctx := context.Background()

	if err := tr.Sync(ctx, core.Ledger{}); err != nil {
		t.Fatalf("prime: %v", err)
	}
	l := ledgerWith(t, map[string][]string{"2025-08-01/Sota": {"a", "b"}})
	if err := tr.Sync(ctx, l); err == nil {
		t.Fatalf("expected append failure")
	}

	f.err = nil
	if err := tr.Sync(ctx, l); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(f.rows) != 2 || f.rows[0].desc != "a" || f.rows[1].desc != "b" {
		t.Fatalf("retry did not mirror the full slot: %+v", f.rows)
	}
}
