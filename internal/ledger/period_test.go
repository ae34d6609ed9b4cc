package ledger

import (
	"testing"

	"ledgerbot/internal/core"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in   string
		want Period
		ok   bool
	}{
		{"", PeriodMonth, true},
		{"today", PeriodToday, true},
		{" Week ", PeriodWeek, true},
		{"month", PeriodMonth, true},
		{"YEAR", PeriodYear, true},
		{"decade", "", false},
	}
	for _, tc := range cases {
		got, err := ParsePeriod(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestInvalidPeriodErrorListsKeywords(t *testing.T) {
	_, err := ParsePeriod("decade")
	want := "Unknown period «decade». Use one of: today, week, month, year.\nExample: /statistic week"
	if err == nil || err.Error() != want {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPeriodWindow(t *testing.T) {
	today := core.NewDate(2026, 3, 3)
	cases := []struct {
		p    Period
		from string
	}{
		{PeriodToday, "03.03.2026"},
		{PeriodWeek, "25.02.2026"},
		{PeriodMonth, "01.03.2026"},
		{PeriodYear, "01.01.2026"},
	}
	for _, tc := range cases {
		from, to := tc.p.Window(today)
		if from.String() != tc.from || to.String() != "03.03.2026" {
			t.Fatalf("%s window = [%v, %v], want [%s, 03.03.2026]", tc.p, from, to, tc.from)
		}
	}
}
