// Package feed delivers live ledger snapshots to consumers.
//
// A Subscription emits one full snapshot at start, then reloads the ledger
// whenever a change notification arrives on the AMQP feed, with a poll ticker
// as a fallback for missed messages. Every event carries a complete ledger:
// snapshots replace the consumer's state wholesale, there is no partial
// application. On a load failure an error event is emitted and the consumer
// keeps its last-known-good snapshot.
package feed

import (
	"context"
	"log/slog"
	"time"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
	"kakeibo/internal/store"
)

// Event is one delivery: either a full snapshot or a transport error.
type Event struct {
	Ledger core.Ledger
	Err    error
}

// Notifier is the change-notification source. *amqp.Client satisfies it.
type Notifier interface {
	ConsumeLedgerChanged(ctx context.Context, handler func(*amqp.LedgerChangedMessage) error) error
}

type Subscription struct {
	snapshots store.SnapshotReader
	notifier  Notifier // nil means poll-only
	poll      time.Duration

	events chan Event
	done   chan struct{}
}

func NewSubscription(snapshots store.SnapshotReader, notifier Notifier, poll time.Duration) *Subscription {
	return &Subscription{
		snapshots: snapshots,
		notifier:  notifier,
		poll:      poll,
		events:    make(chan Event, 1),
		done:      make(chan struct{}),
	}
}

// Start begins delivery and returns the event channel. Cancelling ctx stops
// delivery and closes the channel; no event is ever delivered after that.
func (s *Subscription) Start(ctx context.Context) <-chan Event {
	// A buffered kick channel coalesces bursts of notifications into one
	// reload.
	kicks := make(chan struct{}, 1)

	if s.notifier != nil {
		go func() {
			err := s.notifier.ConsumeLedgerChanged(ctx, func(msg *amqp.LedgerChangedMessage) error {
				select {
				case kicks <- struct{}{}:
				default:
				}
				return nil
			})
			if err != nil && err != context.Canceled {
				slog.ErrorContext(ctx, "Change feed consumer stopped", "error", err)
			}
		}()
	}

	go s.run(ctx, kicks)
	return s.events
}

// Done is closed once the delivery loop has fully stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) run(ctx context.Context, kicks <-chan struct{}) {
	defer close(s.done)
	defer close(s.events)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	// Initial snapshot before any notification arrives.
	if !s.deliver(ctx) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-kicks:
			if !s.deliver(ctx) {
				return
			}
		case <-ticker.C:
			if !s.deliver(ctx) {
				return
			}
		}
	}
}

// deliver loads one snapshot and emits it, or emits the load error. Returns
// false once ctx is cancelled.
func (s *Subscription) deliver(ctx context.Context) bool {
	ledger, err := s.snapshots.LoadSnapshot(ctx)
	var ev Event
	if err != nil {
		slog.WarnContext(ctx, "Snapshot load failed, keeping last known state", "error", err)
		ev = Event{Err: err}
	} else {
		ev = Event{Ledger: ledger}
	}

	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
