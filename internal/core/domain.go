package core

import (
	"errors"
	"sort"
	"strings"
	"time"
)

type (
	// Participant identifies one of the two fixed competitors.
	Participant string

	// DateKey is a calendar date in YYYY-MM-DD form. Lexicographic order on
	// keys equals chronological order, which every aggregation relies on.
	DateKey string

	// Entry is a single logged expense. Immutable once created; RecordedAt is
	// epoch milliseconds and only orders entries within a day, never across days.
	Entry struct {
		Amount      Money  `json:"amount"`
		Description string `json:"description"`
		RecordedAt  int64  `json:"recorded_at"`
	}

	// DayRecord holds both participants' entry sequences for one date plus the
	// identifier of whoever last wrote each slot. A missing slot and an empty
	// slot both mean "no spending".
	DayRecord struct {
		Entries map[Participant][]Entry `json:"entries"`
		Writers map[Participant]string  `json:"writers"`
	}

	// Ledger is the full expense log keyed by date. It is the engine's sole
	// input: every computation is a fresh fold over one snapshot, never an
	// incremental update of cached state.
	Ledger map[DateKey]DayRecord
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrUnknownParticipant = errors.New("unknown participant")
)

// ParseDateKey validates s as a YYYY-MM-DD date.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", ErrInvalidDate
	}
	// Reject non-canonical spellings like 2025-8-1.
	if t.Format(dateLayout) != s {
		return "", ErrInvalidDate
	}
	return DateKey(s), nil
}

// DateKeyOf returns the date key for t in t's location.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.Format(dateLayout))
}

func (d DateKey) Validate() error {
	_, err := ParseDateKey(string(d))
	return err
}

func (e Entry) Validate() error {
	if e.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// Slot returns the participant's entry sequence for the day, nil when absent.
func (r DayRecord) Slot(p Participant) []Entry {
	if r.Entries == nil {
		return nil
	}
	return r.Entries[p]
}

// Append pushes an entry onto a participant's slot for the given date and
// stamps the writer. This is boundary plumbing: the engine itself only ever
// reads a ledger, mutation happens in store adapters and tests.
func (l Ledger) Append(date DateKey, p Participant, e Entry, writer string) {
	rec, ok := l[date]
	if !ok {
		rec = DayRecord{}
	}
	if rec.Entries == nil {
		rec.Entries = make(map[Participant][]Entry)
	}
	if rec.Writers == nil {
		rec.Writers = make(map[Participant]string)
	}
	rec.Entries[p] = append(rec.Entries[p], e)
	rec.Writers[p] = writer
	l[date] = rec
}

// SortedDates returns every date present in the ledger in ascending order.
func (l Ledger) SortedDates() []DateKey {
	dates := make([]DateKey, 0, len(l))
	for d := range l {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}
