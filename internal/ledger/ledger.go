// Package ledger keeps one user's incomes, expenses and category vocabularies
// in memory and computes aggregates over them.
//
// All methods of a Ledger are serialised behind a single mutex. Ledgers of
// different users share nothing and never contend.
package ledger

import (
	"sort"
	"strings"
	"sync"
	"time"

	"ledgerbot/internal/core"

	"github.com/shopspring/decimal"
)

// TopLimit caps the number of operations returned by Top.
const TopLimit = 3

var (
	DefaultIncomeCategories  = []string{"work", "gift"}
	DefaultExpenseCategories = []string{"food", "transport", "home", "health", "entertainment", "other"}
)

type (
	// entry remembers insertion order across category buckets.
	entry struct {
		seq uint64
		op  core.Operation
	}

	book struct {
		byCategory map[string][]entry
		categories map[string]struct{}
	}

	Ledger struct {
		mu    sync.Mutex
		now   func() time.Time
		seq   uint64
		books map[core.Kind]*book
	}

	// Option configures a Ledger.
	Option func(*Ledger)

	CategoryAmount struct {
		Name   string
		Amount decimal.Decimal
	}

	// Statistics is the period report produced by Ledger.Statistics.
	Statistics struct {
		Period       Period
		From, To     core.Date
		TotalIncome  decimal.Decimal
		TotalExpense decimal.Decimal
		Balance      decimal.Decimal
		Incomes      []CategoryAmount
		Expenses     []CategoryAmount
	}

	Counts struct {
		Incomes  int
		Expenses int
		Total    int
	}
)

// WithClock overrides the time source used for default dates and periods.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a ledger seeded with the default category vocabularies.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now: time.Now,
		books: map[core.Kind]*book{
			core.Income:  newBook(DefaultIncomeCategories),
			core.Expense: newBook(DefaultExpenseCategories),
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newBook(categories []string) *book {
	b := &book{
		byCategory: make(map[string][]entry),
		categories: make(map[string]struct{}, len(categories)),
	}
	for _, c := range categories {
		b.categories[c] = struct{}{}
	}
	return b
}

func (l *Ledger) book(kind core.Kind) (*book, error) {
	if !kind.IsValid() {
		return nil, core.ErrUnknownKind
	}
	return l.books[kind], nil
}

// Today returns the ledger's current calendar date.
func (l *Ledger) Today() core.Date {
	return core.DateOf(l.now())
}

// Add records an operation. dateText is parsed as dd.mm.yyyy; when it is
// empty or malformed the operation is dated today.
func (l *Ledger) Add(kind core.Kind, name string, amount decimal.Decimal, category, dateText string) (core.Operation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.book(kind)
	if err != nil {
		return core.Operation{}, err
	}
	category = strings.TrimSpace(category)
	if _, ok := b.categories[category]; !ok {
		return core.Operation{}, &UnknownCategoryError{Kind: kind, Category: category, Valid: b.sortedCategories()}
	}

	op, err := core.NewOperation(name, amount, category, core.ParseDateOr(dateText, l.Today()))
	if err != nil {
		return core.Operation{}, err
	}
	l.seq++
	b.byCategory[category] = append(b.byCategory[category], entry{seq: l.seq, op: op})
	return op, nil
}

func (l *Ledger) AddIncome(name string, amount decimal.Decimal, category, dateText string) (core.Operation, error) {
	return l.Add(core.Income, name, amount, category, dateText)
}

func (l *Ledger) AddExpense(name string, amount decimal.Decimal, category, dateText string) (core.Operation, error) {
	return l.Add(core.Expense, name, amount, category, dateText)
}

// Delete removes the earliest-recorded operation whose name matches and whose
// amount is within one cent. The category bucket is dropped once empty.
func (l *Ledger) Delete(kind core.Kind, name string, amount decimal.Decimal) (core.Operation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.book(kind)
	if err != nil {
		return core.Operation{}, err
	}
	name = strings.TrimSpace(name)

	var (
		found    bool
		category string
		index    int
		best     uint64
	)
	for c, entries := range b.byCategory {
		for i, e := range entries {
			if e.op.Matches(name, amount) && (!found || e.seq < best) {
				found, category, index, best = true, c, i, e.seq
			}
		}
	}
	if !found {
		return core.Operation{}, &OperationNotFoundError{Kind: kind, Name: name, Amount: amount}
	}

	entries := b.byCategory[category]
	removed := entries[index].op
	entries = append(entries[:index:index], entries[index+1:]...)
	if len(entries) == 0 {
		delete(b.byCategory, category)
	} else {
		b.byCategory[category] = entries
	}
	return removed, nil
}

func (l *Ledger) DeleteIncome(name string, amount decimal.Decimal) (core.Operation, error) {
	return l.Delete(core.Income, name, amount)
}

func (l *Ledger) DeleteExpense(name string, amount decimal.Decimal) (core.Operation, error) {
	return l.Delete(core.Expense, name, amount)
}

// Operations lists every operation of a kind, most recent date first.
// Operations on the same date keep their recording order.
func (l *Ledger) Operations(kind core.Kind) []core.Operation {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.book(kind)
	if err != nil {
		return nil
	}
	entries := b.ordered()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].op.Date.After(entries[j].op.Date.Time)
	})
	return operations(entries)
}

func (l *Ledger) Incomes() []core.Operation  { return l.Operations(core.Income) }
func (l *Ledger) Expenses() []core.Operation { return l.Operations(core.Expense) }

// Top returns up to TopLimit operations ordered by amount, largest first.
// Equal amounts keep their recording order.
func (l *Ledger) Top(kind core.Kind) []core.Operation {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.book(kind)
	if err != nil {
		return nil
	}
	entries := b.ordered()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].op.Amount.GreaterThan(entries[j].op.Amount)
	})
	if len(entries) > TopLimit {
		entries = entries[:TopLimit]
	}
	return operations(entries)
}

func (l *Ledger) TopIncomes() []core.Operation  { return l.Top(core.Income) }
func (l *Ledger) TopExpenses() []core.Operation { return l.Top(core.Expense) }

// Total sums every operation of a kind.
func (l *Ledger) Total(kind core.Kind) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.book(kind)
	if err != nil {
		return decimal.Zero
	}
	return b.total(core.Date{}, core.Date{})
}

func (l *Ledger) TotalIncome() decimal.Decimal  { return l.Total(core.Income) }
func (l *Ledger) TotalExpense() decimal.Decimal { return l.Total(core.Expense) }

// Balance is total income minus total expense.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	in := l.books[core.Income].total(core.Date{}, core.Date{})
	out := l.books[core.Expense].total(core.Date{}, core.Date{})
	return in.Sub(out)
}

// Statistics reports totals and a per-category breakdown for operations dated
// inside the period window. Every known category is listed, zero included.
func (l *Ledger) Statistics(period Period) Statistics {
	l.mu.Lock()
	defer l.mu.Unlock()

	if period == "" {
		period = PeriodMonth
	}
	from, to := period.Window(l.Today())
	in, out := l.books[core.Income], l.books[core.Expense]

	st := Statistics{
		Period:       period,
		From:         from,
		To:           to,
		TotalIncome:  in.total(from, to),
		TotalExpense: out.total(from, to),
		Incomes:      in.breakdown(from, to),
		Expenses:     out.breakdown(from, to),
	}
	st.Balance = st.TotalIncome.Sub(st.TotalExpense)
	return st
}

// Count returns the number of recorded operations per kind.
func (l *Ledger) Count() Counts {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := Counts{
		Incomes:  l.books[core.Income].size(),
		Expenses: l.books[core.Expense].size(),
	}
	c.Total = c.Incomes + c.Expenses
	return c
}

// Categories returns the sorted vocabulary for a kind.
func (l *Ledger) Categories(kind core.Kind) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.book(kind)
	if err != nil {
		return nil
	}
	return b.sortedCategories()
}

// AddCategory extends a vocabulary and returns the trimmed name.
func (l *Ledger) AddCategory(kind core.Kind, name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.book(kind)
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if _, ok := b.categories[name]; ok {
		return "", &DuplicateCategoryError{Name: name}
	}
	b.categories[name] = struct{}{}
	return name, nil
}

// DeleteCategory removes a category that no operation references.
func (l *Ledger) DeleteCategory(kind core.Kind, name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.book(kind)
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if _, ok := b.categories[name]; !ok {
		return "", &NotFoundError{Name: name}
	}
	if n := len(b.byCategory[name]); n > 0 {
		return "", &CategoryInUseError{Name: name, Count: n}
	}
	delete(b.categories, name)
	return name, nil
}

// ordered returns all entries in recording order.
func (b *book) ordered() []entry {
	all := make([]entry, 0, b.size())
	for _, entries := range b.byCategory {
		all = append(all, entries...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	return all
}

func (b *book) size() int {
	n := 0
	for _, entries := range b.byCategory {
		n += len(entries)
	}
	return n
}

// total sums entries dated within [from, to]; a zero from disables the filter.
func (b *book) total(from, to core.Date) decimal.Decimal {
	sum := decimal.Zero
	for _, entries := range b.byCategory {
		for _, e := range entries {
			if from.IsZero() || e.op.Date.Within(from, to) {
				sum = sum.Add(e.op.Amount)
			}
		}
	}
	return sum
}

func (b *book) breakdown(from, to core.Date) []CategoryAmount {
	sums := make(map[string]decimal.Decimal, len(b.categories))
	for c := range b.categories {
		sums[c] = decimal.Zero
	}
	for c, entries := range b.byCategory {
		sum := sums[c]
		for _, e := range entries {
			if e.op.Date.Within(from, to) {
				sum = sum.Add(e.op.Amount)
			}
		}
		sums[c] = sum
	}

	out := make([]CategoryAmount, 0, len(sums))
	for c, sum := range sums {
		out = append(out, CategoryAmount{Name: c, Amount: sum})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (b *book) sortedCategories() []string {
	out := make([]string, 0, len(b.categories))
	for c := range b.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func operations(entries []entry) []core.Operation {
	out := make([]core.Operation, len(entries))
	for i, e := range entries {
		out[i] = e.op
	}
	return out
}
