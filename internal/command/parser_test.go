package command

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in                string
		cmd, amount, name string
	}{
		{"", "", "", ""},
		{"   \t\n ", "", "", ""},
		{"/balance", "/balance", "", ""},
		{"  /balance  ", "/balance", "", ""},
		{"/add_cat_in freelance", "/add_cat_in", "", "freelance"},
		{"/statistic\tweek", "/statistic", "", "week"},
		{"/add_in 50000 Salary", "/add_in", "50000", "Salary"},
		{"/add_in 50000 Salary work", "/add_in", "50000", "Salary work"},
		{"/add_in   500   Side  job work 01.10.2026 ", "/add_in", "500", "Side  job work 01.10.2026"},
	}
	for _, tc := range cases {
		cmd, amount, name := Parse(tc.in)
		if cmd != tc.cmd || amount != tc.amount || name != tc.name {
			t.Fatalf("Parse(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tc.in, cmd, amount, name, tc.cmd, tc.amount, tc.name)
		}
	}
}
