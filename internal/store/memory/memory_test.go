package memory

import (
	"context"
	"testing"

	"kakeibo/internal/core"
)

func TestStoreSlotMergePreservesOtherParticipant(t *testing.T) {
	s := New()
	ctx := context.Background()

	sota := []core.Entry{{Amount: core.Money{Cents: 100}, Description: "a", RecordedAt: 1}}
	if err := s.StoreSlot(ctx, "2025-08-01", "Sota", sota, "w1"); err != nil {
		t.Fatalf("store sota: %v", err)
	}
	renma := []core.Entry{{Amount: core.Money{Cents: 200}, Description: "b", RecordedAt: 2}}
	if err := s.StoreSlot(ctx, "2025-08-01", "Renma", renma, "w2"); err != nil {
		t.Fatalf("store renma: %v", err)
	}

	got, writer, err := s.FetchSlot(ctx, "2025-08-01", "Sota")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].Description != "a" || writer != "w1" {
		t.Fatalf("sota slot clobbered: %+v writer=%q", got, writer)
	}
}

func TestFetchSlotAbsent(t *testing.T) {
	s := New()
	got, writer, err := s.FetchSlot(context.Background(), "2025-08-01", "Sota")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != nil || writer != "" {
		t.Fatalf("expected empty slot, got %+v / %q", got, writer)
	}
}

func TestLoadSnapshotIsACopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	entries := []core.Entry{{Amount: core.Money{Cents: 100}, Description: "a", RecordedAt: 1}}
	if err := s.StoreSlot(ctx, "2025-08-01", "Sota", entries, "w"); err != nil {
		t.Fatalf("store: %v", err)
	}

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	// Mutating the snapshot must not leak back into the store.
	snap.Append("2025-08-01", "Sota", core.Entry{Amount: core.Money{Cents: 999}, Description: "extra", RecordedAt: 2}, "x")

	again, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(again["2025-08-01"].Slot("Sota")) != 1 {
		t.Fatalf("snapshot mutation leaked into store")
	}
}
