package command

import (
	"fmt"
	"strings"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

const startText = `Hi! I keep track of your incomes and expenses.

Record an operation with /add_in or /add_ex, then ask for your /balance,
/statistic for a period or the /top_ex expenses. Use the keyboard below
for the common reports.

Type /help to see every command.`

// HelpText lists every command with its syntax.
func HelpText() string {
	var sb strings.Builder
	sb.WriteString("Available commands:")
	for _, c := range table {
		sb.WriteString("\n")
		sb.WriteString(c.kind.Usage())
		sb.WriteString(" - ")
		sb.WriteString(c.desc)
	}
	sb.WriteString("\n\nAmounts accept a dot or a comma as decimal separator. ")
	sb.WriteString("Without a date an operation is recorded for today.")
	return sb.String()
}

func title(kind core.Kind) string {
	if kind == core.Income {
		return "Income"
	}
	return "Expense"
}

func plural(kind core.Kind) string {
	if kind == core.Income {
		return "incomes"
	}
	return "expenses"
}

func (d *Dispatcher) list(kind core.Kind, ops []core.Operation) string {
	if len(ops) == 0 {
		return fmt.Sprintf("No %s yet.", plural(kind))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your %s:", plural(kind))
	for _, op := range ops {
		fmt.Fprintf(&sb, "\n%s «%s» %s (%s)", op.Date, op.Name, d.format.Amount(op.Amount), op.Category)
	}
	return sb.String()
}

func (d *Dispatcher) top(kind core.Kind, ops []core.Operation) string {
	if len(ops) == 0 {
		return fmt.Sprintf("No %s yet.", plural(kind))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Top %d %s:", len(ops), plural(kind))
	for i, op := range ops {
		fmt.Fprintf(&sb, "\n%d. «%s» %s (%s, %s)", i+1, op.Name, d.format.Amount(op.Amount), op.Category, op.Date)
	}
	return sb.String()
}

func (d *Dispatcher) statisticsText(st ledger.Statistics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Statistics for %s (%s - %s)\n", st.Period.Title(), st.From, st.To)
	fmt.Fprintf(&sb, "Income: %s\n", d.format.Amount(st.TotalIncome))
	fmt.Fprintf(&sb, "Expenses: %s\n", d.format.Amount(st.TotalExpense))
	fmt.Fprintf(&sb, "Balance: %s", d.format.Amount(st.Balance))

	d.breakdown(&sb, "Incomes by category:", st.Incomes)
	d.breakdown(&sb, "Expenses by category:", st.Expenses)
	return sb.String()
}

func (d *Dispatcher) breakdown(sb *strings.Builder, heading string, rows []ledger.CategoryAmount) {
	sb.WriteString("\n\n")
	sb.WriteString(heading)
	if len(rows) == 0 {
		sb.WriteString("\n—")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(sb, "\n• %s: %s", r.Name, d.format.Amount(r.Amount))
	}
}

func (d *Dispatcher) count(c ledger.Counts) string {
	return fmt.Sprintf("Operations recorded:\nIncomes: %d\nExpenses: %d\nTotal: %d", c.Incomes, c.Expenses, c.Total)
}

func categoriesText(kind core.Kind, names []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s categories:", title(kind))
	if len(names) == 0 {
		sb.WriteString("\nNo categories yet.")
		return sb.String()
	}
	for _, n := range names {
		sb.WriteString("\n• ")
		sb.WriteString(n)
	}
	return sb.String()
}
