package command

import "strings"

// Button is one reply-keyboard key. Pressing it sends Label as message text.
type Button struct {
	Label   string `json:"label"`
	Command string `json:"command"`
}

// Keyboard is the persistent reply keyboard offered to chat clients.
type Keyboard struct {
	Rows    [][]Button `json:"rows"`
	Resize  bool       `json:"resize"`
	OneTime bool       `json:"one_time"`
}

var mainRows = [][]struct {
	label string
	kind  Kind
}{
	{{"Incomes", ListIncomes}, {"Expenses", ListExpenses}},
	{{"Balance", Balance}, {"Statistics", Statistic}},
	{{"Top incomes", TopIncomes}, {"Top expenses", TopExpenses}},
	{{"Total income", SumIncome}, {"Total expenses", SumExpense}},
	{{"Operations count", CountOps}, {"Help", Help}},
}

var byLabel = func() map[string]Kind {
	m := make(map[string]Kind)
	for _, row := range mainRows {
		for _, b := range row {
			m[strings.ToLower(b.label)] = b.kind
		}
	}
	return m
}()

// MainKeyboard returns a fresh copy of the main menu keyboard.
func MainKeyboard() Keyboard {
	kb := Keyboard{Rows: make([][]Button, 0, len(mainRows)), Resize: true}
	for _, row := range mainRows {
		buttons := make([]Button, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, Button{Label: b.label, Command: "/" + b.kind.String()})
		}
		kb.Rows = append(kb.Rows, buttons)
	}
	return kb
}

// LookupLabel resolves a keyboard label (case-insensitive) to its command.
func LookupLabel(text string) (Kind, bool) {
	k, ok := byLabel[strings.ToLower(strings.TrimSpace(text))]
	return k, ok
}
