package core

import (
	"testing"
)

func yen(units int64) Money { return Money{Cents: units * 100} }

func TestDailyTotal(t *testing.T) {
	l := Ledger{}
	l.Append("2025-08-03", "Sota", Entry{Amount: yen(500), Description: "lunch", RecordedAt: 1}, "w1")
	l.Append("2025-08-03", "Sota", Entry{Amount: yen(1200), Description: "book", RecordedAt: 2}, "w1")

	if got := DailyTotal(l, "Sota", "2025-08-03"); got != yen(1700) {
		t.Fatalf("expected 1700, got %s", got)
	}
	// Missing slot and missing date both degrade to zero.
	if got := DailyTotal(l, "Renma", "2025-08-03"); got.Cents != 0 {
		t.Fatalf("expected 0 for missing slot, got %s", got)
	}
	if got := DailyTotal(l, "Sota", "2025-08-04"); got.Cents != 0 {
		t.Fatalf("expected 0 for missing date, got %s", got)
	}
}

func TestDailyOutcome(t *testing.T) {
	r := DefaultRules()
	cases := []struct {
		name string
		a, b int64
		want Verdict
	}{
		{"b exceeds handicap -> a wins", 1000, 1600, VerdictAWins},
		{"b equals handicap -> draw", 1000, 1500, VerdictDraw},
		{"b under handicap -> b wins", 1000, 1400, VerdictBWins},
		{"zero vs zero -> draw", 0, 0, VerdictDraw},
		{"undefined a -> insufficient", UndefinedTotal, 100, VerdictInsufficient},
		{"undefined b -> insufficient", 100, UndefinedTotal, VerdictInsufficient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.DailyOutcome(tc.a, tc.b); got != tc.want {
				t.Fatalf("DailyOutcome(%d, %d) = %s, want %s", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

// The verdict must be a pure function of the sign of b - 1.5a. Odd cent
// values around the boundary exercise the exact integer comparison.
func TestDailyOutcomeExactBoundary(t *testing.T) {
	r := DefaultRules()
	// a=1 cent: 1.5a = 1.5 cents, so b=1 -> B wins, b=2 -> A wins, never draw.
	if got := r.DailyOutcome(1, 1); got != VerdictBWins {
		t.Fatalf("expected b_wins, got %s", got)
	}
	if got := r.DailyOutcome(1, 2); got != VerdictAWins {
		t.Fatalf("expected a_wins, got %s", got)
	}
	// a=2 cents: 1.5a = 3 exactly.
	if got := r.DailyOutcome(2, 3); got != VerdictDraw {
		t.Fatalf("expected draw, got %s", got)
	}
}

func TestCumulativeResults(t *testing.T) {
	r := DefaultRules()
	l := Ledger{}
	// 2025-08-01: A=1000, B=1600 -> A wins.
	l.Append("2025-08-01", r.A, Entry{Amount: yen(1000), Description: "a", RecordedAt: 1}, "w")
	l.Append("2025-08-01", r.B, Entry{Amount: yen(1600), Description: "b", RecordedAt: 2}, "w")
	// 2025-08-02: A=1000, B=1500 -> draw.
	l.Append("2025-08-02", r.A, Entry{Amount: yen(1000), Description: "a", RecordedAt: 3}, "w")
	l.Append("2025-08-02", r.B, Entry{Amount: yen(1500), Description: "b", RecordedAt: 4}, "w")
	// 2025-08-03: A=1000, B=1400 -> B wins.
	l.Append("2025-08-03", r.A, Entry{Amount: yen(1000), Description: "a", RecordedAt: 5}, "w")
	l.Append("2025-08-03", r.B, Entry{Amount: yen(1400), Description: "b", RecordedAt: 6}, "w")
	// 2025-08-04: net-zero day, still counts as a draw.
	l.Append("2025-08-04", r.A, Entry{Amount: Money{}, Description: "nothing", RecordedAt: 7}, "w")

	tally := r.CumulativeResults(l)
	if tally.WinsA != 1 || tally.WinsB != 1 || tally.Draws != 2 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
	if got := tally.WinsA + tally.WinsB + tally.Draws; got != len(l) {
		t.Fatalf("tally covers %d dates, ledger has %d", got, len(l))
	}
}

func TestOverallOutcome(t *testing.T) {
	r := DefaultRules()
	// No data ever recorded is distinguishable from a real draw.
	if got := r.OverallOutcome(0, 0); got != VerdictInsufficient {
		t.Fatalf("expected insufficient for zero totals, got %s", got)
	}
	if got := r.OverallOutcome(100000, 150000); got != VerdictDraw {
		t.Fatalf("expected draw, got %s", got)
	}
}

func TestCumulativeSeries(t *testing.T) {
	r := DefaultRules()
	l := Ledger{}
	l.Append("2025-08-01", r.A, Entry{Amount: yen(300), Description: "a", RecordedAt: 1}, "w")
	l.Append("2025-08-01", r.B, Entry{Amount: yen(200), Description: "b", RecordedAt: 2}, "w")
	l.Append("2025-08-03", r.A, Entry{Amount: yen(100), Description: "a", RecordedAt: 3}, "w")
	l.Append("2025-08-02", r.B, Entry{Amount: yen(500), Description: "b", RecordedAt: 4}, "w")

	pts := r.CumulativeSeries(l)
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Date <= pts[i-1].Date {
			t.Fatalf("dates not strictly ascending at %d", i)
		}
		if pts[i].TotalA.Cents < pts[i-1].TotalA.Cents || pts[i].TotalB.Cents < pts[i-1].TotalB.Cents {
			t.Fatalf("series not monotonic at %d", i)
		}
	}
	// Last point must agree with the overall totals.
	totalA, totalB := r.OverallTotals(l)
	last := pts[len(pts)-1]
	if last.TotalA != totalA || last.TotalB != totalB {
		t.Fatalf("series end %+v disagrees with overall totals (%s, %s)", last, totalA, totalB)
	}
	// Threshold follows A's running total.
	if last.Threshold != yen(600) {
		t.Fatalf("expected threshold 600, got %s", last.Threshold)
	}
}

func TestCumulativeSeriesEmptyLedger(t *testing.T) {
	if pts := DefaultRules().CumulativeSeries(Ledger{}); len(pts) != 0 {
		t.Fatalf("expected empty series, got %d points", len(pts))
	}
}

func TestGoalProgress(t *testing.T) {
	cases := []struct {
		total, goal int64
		percent     float64
		display     float64
	}{
		{0, 80_000_00, 0, 0},
		{100_000_00, 80_000_00, 125, 100},
		{40_000_00, 80_000_00, 50, 50},
	}
	for _, tc := range cases {
		p := GoalProgress(Money{Cents: tc.total}, Money{Cents: tc.goal})
		if p.Percent != tc.percent || p.DisplayPercent != tc.display {
			t.Fatalf("GoalProgress(%d, %d) = %+v, want %v/%v", tc.total, tc.goal, p, tc.percent, tc.display)
		}
	}
}

// Recomputing everything on an unchanged snapshot must be bit-identical:
// there is no hidden state anywhere in the engine.
func TestRecomputationIsIdempotent(t *testing.T) {
	r := DefaultRules()
	l := Ledger{}
	l.Append("2025-08-01", r.A, Entry{Amount: yen(1000), Description: "a", RecordedAt: 1}, "w")
	l.Append("2025-08-01", r.B, Entry{Amount: yen(1600), Description: "b", RecordedAt: 2}, "w")
	l.Append("2025-08-05", r.B, Entry{Amount: yen(50), Description: "b", RecordedAt: 3}, "w")

	first := r.CumulativeResults(l)
	second := r.CumulativeResults(l)
	if first != second {
		t.Fatalf("tally not idempotent: %+v vs %+v", first, second)
	}
	s1 := r.CumulativeSeries(l)
	s2 := r.CumulativeSeries(l)
	if len(s1) != len(s2) {
		t.Fatalf("series length changed")
	}
	for i := range s1 {
		if s1[i] != s2[i] {
			t.Fatalf("series point %d changed: %+v vs %+v", i, s1[i], s2[i])
		}
	}
}

// The end-to-end scenario from the contest rule table: on 2025-08-01 Sota
// spends 1000 and Renma 1600. 1600 > 1000*1.5, so Sota takes the day and the
// overall verdict.
func TestSingleDayScenario(t *testing.T) {
	r := DefaultRules()
	l := Ledger{}
	l.Append("2025-08-01", r.A, Entry{Amount: yen(1000), Description: "groceries", RecordedAt: 1}, "w")
	l.Append("2025-08-01", r.B, Entry{Amount: yen(1600), Description: "games", RecordedAt: 2}, "w")

	totalA, totalB := r.OverallTotals(l)
	if totalA != yen(1000) || totalB != yen(1600) {
		t.Fatalf("unexpected totals: %s / %s", totalA, totalB)
	}
	if got := r.OverallOutcome(totalA.Cents, totalB.Cents); got != VerdictAWins {
		t.Fatalf("expected a_wins, got %s", got)
	}
	tally := r.CumulativeResults(l)
	if tally.WinsA != 1 || tally.WinsB != 0 || tally.Draws != 0 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("default rules invalid: %v", err)
	}
	bads := []Rules{
		{A: "", B: "Renma", GoalA: yen(1), GoalB: yen(1), HandicapNum: 3, HandicapDen: 2},
		{A: "Sota", B: "Sota", GoalA: yen(1), GoalB: yen(1), HandicapNum: 3, HandicapDen: 2},
		{A: "Sota", B: "Renma", GoalA: Money{}, GoalB: yen(1), HandicapNum: 3, HandicapDen: 2},
		{A: "Sota", B: "Renma", GoalA: yen(1), GoalB: yen(1), HandicapNum: 0, HandicapDen: 2},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
