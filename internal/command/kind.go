package command

import "strings"

// Kind identifies a recognised command. The zero value is Unknown.
type Kind int

const (
	Unknown Kind = iota
	Start
	Help
	AddIncome
	AddExpense
	DeleteIncome
	DeleteExpense
	ListIncomes
	ListExpenses
	Balance
	SumIncome
	SumExpense
	TopIncomes
	TopExpenses
	Statistic
	CountOps
	IncomeCategories
	ExpenseCategories
	AddIncomeCategory
	AddExpenseCategory
	DeleteIncomeCategory
	DeleteExpenseCategory
)

type info struct {
	kind  Kind
	token string
	args  string
	desc  string
}

// table drives lookup, String and the help text. Order is the help order.
var table = []info{
	{Start, "start", "", "introduction"},
	{Help, "help", "", "list of commands"},
	{AddIncome, "add_in", "<amount> <name> <category> [dd.mm.yyyy]", "add an income"},
	{AddExpense, "add_ex", "<amount> <name> <category> [dd.mm.yyyy]", "add an expense"},
	{DeleteIncome, "delete_in", "<amount> <name>", "delete an income"},
	{DeleteExpense, "delete_ex", "<amount> <name>", "delete an expense"},
	{ListIncomes, "income", "", "list incomes, newest first"},
	{ListExpenses, "expense", "", "list expenses, newest first"},
	{Balance, "balance", "", "total income minus total expenses"},
	{SumIncome, "sum_income", "", "total income"},
	{SumExpense, "sum_expense", "", "total expenses"},
	{TopIncomes, "top_in", "", "three largest incomes"},
	{TopExpenses, "top_ex", "", "three largest expenses"},
	{Statistic, "statistic", "[today|week|month|year]", "statistics for a period (default: month)"},
	{CountOps, "count_ops", "", "number of recorded operations"},
	{IncomeCategories, "categories_in", "", "income categories"},
	{ExpenseCategories, "categories_ex", "", "expense categories"},
	{AddIncomeCategory, "add_cat_in", "<name>", "add an income category"},
	{AddExpenseCategory, "add_cat_ex", "<name>", "add an expense category"},
	{DeleteIncomeCategory, "del_cat_in", "<name>", "delete an unused income category"},
	{DeleteExpenseCategory, "del_cat_ex", "<name>", "delete an unused expense category"},
}

var byToken = func() map[string]Kind {
	m := make(map[string]Kind, len(table))
	for _, c := range table {
		m[c.token] = c.kind
	}
	return m
}()

// Lookup resolves a command token. The leading slash is optional, case is
// ignored and a trailing "@botname" mention is stripped.
func Lookup(token string) Kind {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.TrimPrefix(t, "/")
	if i := strings.IndexByte(t, '@'); i >= 0 {
		t = t[:i]
	}
	return byToken[t]
}

// String returns the canonical token, without the slash.
func (k Kind) String() string {
	for _, c := range table {
		if c.kind == k {
			return c.token
		}
	}
	return "unknown"
}

// Usage returns the expected syntax for k, e.g. "/delete_in <amount> <name>".
func (k Kind) Usage() string {
	for _, c := range table {
		if c.kind == k {
			if c.args == "" {
				return "/" + c.token
			}
			return "/" + c.token + " " + c.args
		}
	}
	return ""
}
