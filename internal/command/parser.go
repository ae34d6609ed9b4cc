package command

import (
	"strings"
	"unicode"
)

// Parse splits raw text into a command token, an amount parameter and a name
// parameter.
//
// The text is trimmed and split on whitespace runs into at most three parts:
//
//	"/balance"                 -> ("/balance", "", "")
//	"/add_cat_in freelance"    -> ("/add_cat_in", "", "freelance")
//	"/add_in 500 Side job work" -> ("/add_in", "500", "Side job work")
//
// The third part keeps the rest of the line verbatim. No validation happens here.
func Parse(raw string) (cmd, amount, name string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "", ""
	}

	cmd, rest := cut(s)
	if rest == "" {
		return cmd, "", ""
	}
	first, remainder := cut(rest)
	if remainder == "" {
		return cmd, "", first
	}
	return cmd, first, remainder
}

// cut returns the first whitespace-delimited token of s and the remainder with
// leading whitespace removed. s must not start with whitespace.
func cut(s string) (head, tail string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}
