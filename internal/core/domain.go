package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"

	// DateLayout is the dd.mm.yyyy layout used for input and output.
	DateLayout = "02.01.2006"

	// MaxNameLength is the longest operation name accepted, in characters.
	MaxNameLength = 200
)

type (
	// Kind tells incomes and expenses apart.
	Kind string

	Date struct {
		time.Time
	}

	Operation struct {
		Name     string
		Amount   decimal.Decimal
		Category string
		Date     Date
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyName      = errors.New("empty name")
	ErrEmptyCategory  = errors.New("empty category")
	ErrInvalidDate    = errors.New("invalid date")
	ErrUnknownKind    = errors.New("unknown operation kind")
	ErrNameTooLong    = errors.New("name too long (max 200 characters)")
	strictDatePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

	// matchTolerance is how far apart two amounts may be and still match.
	matchTolerance = decimal.New(1, -2)
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	return string(k)
}

// IsValid returns true for Income and Expense.
func (k Kind) IsValid() bool {
	switch k {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// LooksLikeDate reports whether s has the strict dd.mm.yyyy shape.
// It does not check that the day exists.
func LooksLikeDate(s string) bool {
	return strictDatePattern.MatchString(s)
}

// ParseDate parses a dd.mm.yyyy string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if !LooksLikeDate(s) {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ParseDateOr parses s and falls back to the given date when s is empty or malformed.
func ParseDateOr(s string, fallback Date) Date {
	if d, err := ParseDate(s); err == nil {
		return d
	}
	return fallback
}

// String formats the date as dd.mm.yyyy.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Within reports whether d lies in the inclusive range [from, to].
func (d Date) Within(from, to Date) bool {
	return !d.Before(from.Time) && !d.After(to.Time)
}

// Validate rejects the zero date.
func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// NewOperation trims its inputs and validates the result.
func NewOperation(name string, amount decimal.Decimal, category string, date Date) (Operation, error) {
	op := Operation{
		Name:     strings.TrimSpace(name),
		Amount:   amount,
		Category: strings.TrimSpace(category),
		Date:     date,
	}
	if err := op.Validate(); err != nil {
		return Operation{}, err
	}
	return op, nil
}

func (o Operation) Validate() error {
	if o.Name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(o.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !o.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if o.Category == "" {
		return ErrEmptyCategory
	}
	return o.Date.Validate()
}

// Matches reports whether the operation has the given name and an amount
// within one cent of amount.
func (o Operation) Matches(name string, amount decimal.Decimal) bool {
	return o.Name == strings.TrimSpace(name) && o.Amount.Sub(amount).Abs().LessThan(matchTolerance)
}
