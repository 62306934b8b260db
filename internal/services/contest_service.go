// Package services orchestrates the contest over the store and the change
// feed: the commit write path and the scoreboard read path.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/store"
)

// Publisher emits change notifications after a successful write. *amqp.Client
// satisfies it; a nil publisher disables notifications.
type Publisher interface {
	PublishLedgerChanged(ctx context.Context, date core.DateKey, p core.Participant) error
}

// Store is the persistence surface the service needs.
type Store interface {
	store.SlotReader
	store.SlotWriter
	store.SnapshotReader
}

type ContestService struct {
	rules     core.Rules
	store     Store
	publisher Publisher
}

func NewContestService(rules core.Rules, st Store, publisher Publisher) *ContestService {
	return &ContestService{rules: rules, store: st, publisher: publisher}
}

func (s *ContestService) Rules() core.Rules {
	return s.rules
}

// CommitExpense appends one entry to a participant's slot for a date:
// fetch the current sequence (absent means empty), append, merge-write back,
// stamping writerID as the slot's last writer.
//
// The fetch-append-write round trip is not atomic; concurrent commits to the
// same slot resolve to whichever write lands last. Failures are terminal for
// this call, there is no automatic retry.
func (s *ContestService) CommitExpense(ctx context.Context, date core.DateKey, p core.Participant, e core.Entry, writerID string) error {
	if err := date.Validate(); err != nil {
		return err
	}
	if !s.rules.Knows(p) {
		return core.ErrUnknownParticipant
	}
	if err := e.Validate(); err != nil {
		return err
	}

	entries, _, err := s.store.FetchSlot(ctx, date, p)
	if err != nil {
		return fmt.Errorf("fetch slot: %w", err)
	}
	entries = append(entries, e)

	if err := s.store.StoreSlot(ctx, date, p, entries, writerID); err != nil {
		return fmt.Errorf("store slot: %w", err)
	}

	slog.InfoContext(ctx, "Expense committed",
		"day", string(date),
		"participant", string(p),
		"amount_cents", e.Amount.Cents,
		"writer", writerID)

	// Notification failure is non-fatal: the write landed, pollers will
	// catch up.
	if s.publisher != nil {
		if err := s.publisher.PublishLedgerChanged(ctx, date, p); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger change",
				"day", string(date),
				"participant", string(p),
				"error", err)
		}
	}

	return nil
}

// Scoreboard is the full contest state derived from one ledger snapshot.
type Scoreboard struct {
	ParticipantA core.Participant   `json:"participant_a"`
	ParticipantB core.Participant   `json:"participant_b"`
	TotalA       core.Money         `json:"total_a"`
	TotalB       core.Money         `json:"total_b"`
	Overall      core.Verdict       `json:"overall"`
	Tally        core.Tally         `json:"tally"`
	Series       []core.SeriesPoint `json:"series"`
	ProgressA    core.Progress      `json:"progress_a"`
	ProgressB    core.Progress      `json:"progress_b"`
	Days         int                `json:"days"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// Scoreboard loads a fresh snapshot and recomputes everything from scratch.
// All derivation is pure; two calls on an unchanged store agree exactly.
func (s *ContestService) Scoreboard(ctx context.Context) (Scoreboard, error) {
	ledger, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return Scoreboard{}, fmt.Errorf("load snapshot: %w", err)
	}
	return s.Compute(ledger), nil
}

// Compute derives the scoreboard from an already-loaded snapshot. Feed
// consumers use this directly so a transport error never recomputes against
// a partial ledger.
func (s *ContestService) Compute(ledger core.Ledger) Scoreboard {
	totalA, totalB := s.rules.OverallTotals(ledger)
	return Scoreboard{
		ParticipantA: s.rules.A,
		ParticipantB: s.rules.B,
		TotalA:       totalA,
		TotalB:       totalB,
		Overall:      s.rules.OverallOutcome(totalA.Cents, totalB.Cents),
		Tally:        s.rules.CumulativeResults(ledger),
		Series:       s.rules.CumulativeSeries(ledger),
		ProgressA:    core.GoalProgress(totalA, s.rules.GoalA),
		ProgressB:    core.GoalProgress(totalB, s.rules.GoalB),
		Days:         len(ledger),
		GeneratedAt:  time.Now(),
	}
}
