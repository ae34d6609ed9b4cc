// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user input
// and rendering them with locale-aware digit grouping.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ParseAmount converts a decimal string to an exact amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Signs, exponents, grouping characters, more than two fractional digits
// and non-positive values are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
//	ParseAmount("1e3")    -> 0, ErrInvalidAmount
//	ParseAmount("0.001")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 || (len(parts) == 2 && len(parts[1]) > 2) {
		return decimal.Zero, ErrInvalidAmount
	}
	digits := 0
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) || r > unicode.MaxASCII {
				return decimal.Zero, ErrInvalidAmount
			}
			digits++
		}
	}
	if digits == 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	if parts[0] == "" {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Formatter renders amounts with two decimals and the separators of a locale.
// Digits are produced from the exact decimal value, never through float64.
type Formatter struct {
	group   string
	decimal string
}

// NewFormatter returns a formatter for the given BCP-47 tag.
// Unknown tags fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	f := &Formatter{group: ",", decimal: "."}

	// The printer only tells us the separators; the digits come from decimal.
	sample := message.NewPrinter(tag).Sprintf("%.2f", 1234567.5)
	mid, ok := strings.CutPrefix(sample, "1")
	if ok {
		mid, ok = strings.CutSuffix(mid, "50")
	}
	if !ok {
		return f
	}
	group, rest, ok := strings.Cut(mid, "234")
	if !ok {
		return f
	}
	_, dec, ok := strings.Cut(rest, "567")
	if !ok || dec == "" {
		return f
	}
	f.group, f.decimal = group, dec
	return f
}

// Amount formats d rounded half away from zero to two decimals,
// e.g. 50000 -> "50,000.00".
func (f *Formatter) Amount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign, s = "-", rest
	}
	whole, frac, _ := strings.Cut(s, ".")

	var sb strings.Builder
	sb.WriteString(sign)
	lead := len(whole) % 3
	if lead == 0 {
		lead = 3
	}
	sb.WriteString(whole[:lead])
	for i := lead; i < len(whole); i += 3 {
		sb.WriteString(f.group)
		sb.WriteString(whole[i : i+3])
	}
	sb.WriteString(f.decimal)
	sb.WriteString(frac)
	return sb.String()
}
