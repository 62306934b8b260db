// Package store defines the outbound ports for ledger persistence.
//
// The write path is a read-modify-write against one participant slot of one
// date: fetch the current sequence, append, write the merged slot back. The
// round trip is not atomic against concurrent writers; the last write to the
// same slot wins and the lost update is an accepted tradeoff, not a bug the
// adapters try to fix.
package store

import (
	"context"

	"kakeibo/internal/core"
)

type (
	// SlotReader fetches one participant's entry sequence and last writer for
	// a date. An absent slot is (nil, "", nil), not an error.
	SlotReader interface {
		FetchSlot(ctx context.Context, date core.DateKey, p core.Participant) ([]core.Entry, string, error)
	}

	// SlotWriter merge-writes one participant's slot for a date. The other
	// participant's slot and metadata on the same date must be preserved.
	SlotWriter interface {
		StoreSlot(ctx context.Context, date core.DateKey, p core.Participant, entries []core.Entry, writerID string) error
	}

	// SnapshotReader loads the whole ledger as one consistent snapshot.
	// Consumers replace their entire ledger with the result; a snapshot is
	// never merged partially.
	SnapshotReader interface {
		LoadSnapshot(ctx context.Context) (core.Ledger, error)
	}
)
