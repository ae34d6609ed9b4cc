package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"01.01.2025", NewDate(2025, 1, 1), true},
		{"31.12.2024", NewDate(2024, 12, 31), true},
		{" 29.02.2024 ", NewDate(2024, 2, 29), true},
		{"29.02.2025", Date{}, false}, // not a leap year
		{"32.01.2025", Date{}, false},
		{"1.1.2025", Date{}, false},
		{"2025-01-01", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want.Time) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestLooksLikeDate(t *testing.T) {
	if !LooksLikeDate("31.02.2025") {
		t.Fatalf("shape check must not validate the calendar")
	}
	if LooksLikeDate("work") || LooksLikeDate("1.02.2025") {
		t.Fatalf("unexpected match")
	}
}

func TestParseDateOrFallsBack(t *testing.T) {
	today := NewDate(2026, 10, 17)
	if got := ParseDateOr("", today); !got.Equal(today.Time) {
		t.Fatalf("empty input should fall back, got %v", got)
	}
	if got := ParseDateOr("31.02.2026", today); !got.Equal(today.Time) {
		t.Fatalf("malformed input should fall back, got %v", got)
	}
	if got := ParseDateOr("01.10.2026", today); got.String() != "01.10.2026" {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestDateWithinIsInclusive(t *testing.T) {
	from, to := NewDate(2026, 10, 11), NewDate(2026, 10, 17)
	for _, d := range []Date{from, to, NewDate(2026, 10, 14)} {
		if !d.Within(from, to) {
			t.Fatalf("%v should be within [%v, %v]", d, from, to)
		}
	}
	for _, d := range []Date{from.AddDays(-1), to.AddDays(1)} {
		if d.Within(from, to) {
			t.Fatalf("%v should be outside [%v, %v]", d, from, to)
		}
	}
}

func TestDateOfDropsClock(t *testing.T) {
	ts := time.Date(2026, 10, 17, 23, 59, 0, 0, time.FixedZone("X", 3*3600))
	if got := DateOf(ts); got.String() != "17.10.2026" {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestNewOperation(t *testing.T) {
	op, err := NewOperation("  Salary ", decimal.NewFromInt(100), " work ", NewDate(2026, 1, 1))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if op.Name != "Salary" || op.Category != "work" {
		t.Fatalf("expected trimmed fields, got %+v", op)
	}

	bads := []struct {
		name, category string
		amount         decimal.Decimal
		date           Date
	}{
		{"", "work", decimal.NewFromInt(1), NewDate(2026, 1, 1)},
		{"a", "", decimal.NewFromInt(1), NewDate(2026, 1, 1)},
		{"a", "work", decimal.Zero, NewDate(2026, 1, 1)},
		{"a", "work", decimal.NewFromInt(1), Date{}},
	}
	for i, b := range bads {
		if _, err := NewOperation(b.name, b.amount, b.category, b.date); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNewOperationNameLengthCountsCharacters(t *testing.T) {
	date := NewDate(2026, 10, 17)
	amount := decimal.NewFromInt(1)

	cyrillic := strings.Repeat("ж", MaxNameLength)
	if _, err := NewOperation(cyrillic, amount, "food", date); err != nil {
		t.Fatalf("%d Cyrillic characters should be accepted, got %v", MaxNameLength, err)
	}
	if _, err := NewOperation(cyrillic+"ж", amount, "food", date); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
}

func TestOperationMatches(t *testing.T) {
	op := Operation{Name: "Salary", Amount: decimal.RequireFromString("50000")}
	if !op.Matches(" Salary ", decimal.RequireFromString("50000.005")) {
		t.Fatalf("expected match within tolerance")
	}
	if op.Matches("Salary", decimal.RequireFromString("50000.01")) {
		t.Fatalf("a full cent apart must not match")
	}
	if op.Matches("salary", decimal.RequireFromString("50000")) {
		t.Fatalf("names are case-sensitive")
	}
}

func TestKindIsValid(t *testing.T) {
	if !Income.IsValid() || !Expense.IsValid() || Kind("transfer").IsValid() {
		t.Fatalf("unexpected kind validity")
	}
}
