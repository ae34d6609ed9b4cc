package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/command"
	"ledgerbot/internal/ledger"
)

func TestRun(t *testing.T) {
	b := bot.New(command.NewDispatcher(ledger.NewRegistry(), nil, nil), nil, nil)
	in := strings.NewReader("/add_in 50000 Salary work\n/add_ex 1500 Groceries food\nBalance\n")
	var out bytes.Buffer

	if err := run(context.Background(), b, "me", in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Balance: 48,500.00") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}
