package core

import (
	"encoding/json"
	"errors"
	"strings"
)

// Verdict is the outcome of comparing two participant totals under the
// handicap rule.
type Verdict int

const (
	// VerdictInsufficient means a total was undefined (distinct from zero).
	// The aggregator never produces undefined totals, so for daily outcomes
	// this branch is defensive only; the overall outcome additionally reports
	// it when no amount was ever recorded.
	VerdictInsufficient Verdict = iota
	VerdictAWins
	VerdictBWins
	VerdictDraw
)

// UndefinedTotal is the sentinel for "total not computed". Aggregated totals
// are always >= 0, so a negative value is unambiguous.
const UndefinedTotal int64 = -1

func (v Verdict) String() string {
	switch v {
	case VerdictAWins:
		return "a_wins"
	case VerdictBWins:
		return "b_wins"
	case VerdictDraw:
		return "draw"
	default:
		return "insufficient"
	}
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "a_wins":
		*v = VerdictAWins
	case "b_wins":
		*v = VerdictBWins
	case "draw":
		*v = VerdictDraw
	case "insufficient":
		*v = VerdictInsufficient
	default:
		return errors.New("unknown verdict: " + s)
	}
	return nil
}

// Rules carries the contest configuration: the two participant identities,
// their monthly goals, and the handicap expressed as an integer ratio so that
// the comparison b > a*num/den can be evaluated exactly as b*den > a*num.
type Rules struct {
	A     Participant
	B     Participant
	GoalA Money
	GoalB Money

	HandicapNum int64
	HandicapDen int64
}

// DefaultRules returns the stock contest: Sota with a 80,000 goal against
// Renma with a 120,000 goal, handicap 3/2.
func DefaultRules() Rules {
	return Rules{
		A:           "Sota",
		B:           "Renma",
		GoalA:       Money{Cents: 80_000_00},
		GoalB:       Money{Cents: 120_000_00},
		HandicapNum: 3,
		HandicapDen: 2,
	}
}

func (r Rules) Validate() error {
	if strings.TrimSpace(string(r.A)) == "" || strings.TrimSpace(string(r.B)) == "" {
		return errors.New("participant names cannot be blank")
	}
	if r.A == r.B {
		return errors.New("participants must be distinct")
	}
	if r.GoalA.Cents <= 0 || r.GoalB.Cents <= 0 {
		return errors.New("goals must be positive")
	}
	if r.HandicapNum <= 0 || r.HandicapDen <= 0 {
		return errors.New("handicap ratio must be positive")
	}
	return nil
}

// Knows reports whether p is one of the configured participants.
func (r Rules) Knows(p Participant) bool {
	return p == r.A || p == r.B
}

// Tally counts per-day verdicts over a whole ledger. Every date present in
// the ledger contributes exactly one of the three outcomes.
type Tally struct {
	WinsA int `json:"wins_a"`
	WinsB int `json:"wins_b"`
	Draws int `json:"draws"`
}

// SeriesPoint is one step of the cumulative chart series: running totals for
// both participants plus the running handicap threshold over A's total.
type SeriesPoint struct {
	Date      DateKey `json:"date"`
	TotalA    Money   `json:"total_a"`
	TotalB    Money   `json:"total_b"`
	Threshold Money   `json:"threshold"`
}

// Progress is goal completion. Percent is uncapped (overshoot stays visible
// in numeric displays); DisplayPercent is clamped to [0,100] for bounded
// indicators such as progress bars. The two must stay distinct.
type Progress struct {
	Percent        float64 `json:"percent"`
	DisplayPercent float64 `json:"display_percent"`
}

// DailyTotal sums a participant's entry amounts for one date. Missing dates
// and missing slots degrade to zero, never to an error.
func DailyTotal(l Ledger, p Participant, date DateKey) Money {
	var total Money
	for _, e := range l[date].Slot(p) {
		total = total.Add(e.Amount)
	}
	return total
}

// DailyOutcome resolves the verdict for one day's totals (in cents) under the
// handicap rule:
//
//	b > a*1.5  -> A wins
//	b == a*1.5 -> draw
//	b < a*1.5  -> B wins
//
// The comparison is cross-multiplied onto integers so equality is exact.
// A negative input is the UndefinedTotal sentinel and yields Insufficient.
func (r Rules) DailyOutcome(totalA, totalB int64) Verdict {
	if totalA < 0 || totalB < 0 {
		return VerdictInsufficient
	}
	lhs := totalB * r.HandicapDen
	rhs := totalA * r.HandicapNum
	switch {
	case lhs > rhs:
		return VerdictAWins
	case lhs < rhs:
		return VerdictBWins
	default:
		return VerdictDraw
	}
}

// CumulativeResults walks all ledger dates in ascending order and tallies the
// daily verdicts. A date where both participants recorded nothing still
// counts as a draw: every recorded date contributes to the tally.
func (r Rules) CumulativeResults(l Ledger) Tally {
	var t Tally
	for _, date := range l.SortedDates() {
		a := DailyTotal(l, r.A, date)
		b := DailyTotal(l, r.B, date)
		switch r.DailyOutcome(a.Cents, b.Cents) {
		case VerdictAWins:
			t.WinsA++
		case VerdictBWins:
			t.WinsB++
		case VerdictDraw:
			t.Draws++
		}
	}
	return t
}

// OverallTotals sums the daily totals of both participants over all dates.
func (r Rules) OverallTotals(l Ledger) (Money, Money) {
	var a, b Money
	for _, date := range l.SortedDates() {
		a = a.Add(DailyTotal(l, r.A, date))
		b = b.Add(DailyTotal(l, r.B, date))
	}
	return a, b
}

// OverallOutcome applies the same rule table as DailyOutcome with one extra
// base case: both totals exactly zero means nothing was ever recorded and
// reports Insufficient rather than a draw. The daily tally deliberately does
// not make that distinction.
func (r Rules) OverallOutcome(totalA, totalB int64) Verdict {
	if totalA == 0 && totalB == 0 {
		return VerdictInsufficient
	}
	return r.DailyOutcome(totalA, totalB)
}

// CumulativeSeries emits one point per ledger date with running sums and the
// running handicap threshold. It shares the sort and the per-date totals with
// CumulativeResults, so the two views can never disagree on a day's numbers.
// The threshold is half-up rounded for charting; verdicts never consume it.
func (r Rules) CumulativeSeries(l Ledger) []SeriesPoint {
	dates := l.SortedDates()
	if len(dates) == 0 {
		return nil
	}
	points := make([]SeriesPoint, 0, len(dates))
	var runA, runB Money
	for _, date := range dates {
		runA = runA.Add(DailyTotal(l, r.A, date))
		runB = runB.Add(DailyTotal(l, r.B, date))
		threshold := (runA.Cents*r.HandicapNum + r.HandicapDen/2) / r.HandicapDen
		points = append(points, SeriesPoint{
			Date:      date,
			TotalA:    runA,
			TotalB:    runB,
			Threshold: Money{Cents: threshold},
		})
	}
	return points
}

// GoalProgress derives goal completion for a running total. The goal is a
// positive configuration constant; a non-positive goal is a configuration
// error caught by Rules.Validate, not a runtime case.
func GoalProgress(total, goal Money) Progress {
	percent := float64(total.Cents) / float64(goal.Cents) * 100.0
	display := percent
	if display > 100 {
		display = 100
	}
	if display < 0 {
		display = 0
	}
	return Progress{Percent: percent, DisplayPercent: display}
}
