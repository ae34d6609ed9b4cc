package ledger

import (
	"fmt"
	"strings"

	"ledgerbot/internal/core"
)

// Period selects the date window used by Statistics.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods lists the accepted keywords in display order.
var Periods = []Period{PeriodToday, PeriodWeek, PeriodMonth, PeriodYear}

// InvalidPeriodError is returned for keywords outside Periods.
type InvalidPeriodError struct {
	Keyword string
}

func (e *InvalidPeriodError) Error() string {
	names := make([]string, len(Periods))
	for i, p := range Periods {
		names[i] = string(p)
	}
	return fmt.Sprintf("Unknown period «%s». Use one of: %s.\nExample: /statistic week", e.Keyword, strings.Join(names, ", "))
}

// ParsePeriod maps a keyword to a Period. The empty keyword means the current month.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PeriodMonth, nil
	}
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", &InvalidPeriodError{Keyword: s}
}

// Window returns the inclusive [from, today] range for the period.
func (p Period) Window(today core.Date) (from, to core.Date) {
	switch p {
	case PeriodToday:
		return today, today
	case PeriodWeek:
		return today.AddDays(-6), today
	case PeriodYear:
		return core.NewDate(today.Year(), 1, 1), today
	default:
		return core.NewDate(today.Year(), int(today.Month()), 1), today
	}
}

// Title is the human label used in statistics output.
func (p Period) Title() string {
	switch p {
	case PeriodToday:
		return "today"
	case PeriodWeek:
		return "the last 7 days"
	case PeriodYear:
		return "the year"
	default:
		return "the month"
	}
}
