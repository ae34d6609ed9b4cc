// Package command turns free-text messages into ledger operations and renders
// the results as reply text.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
	applog "ledgerbot/internal/log"
)

// internalErrorText is the reply when something unexpected goes wrong.
const internalErrorText = "Something went wrong. Please try again."

// Ledgers resolves the ledger that belongs to a user.
type Ledgers interface {
	Get(userID string) *ledger.Ledger
}

// Dispatcher maps parsed commands onto a user's ledger.
type Dispatcher struct {
	ledgers Ledgers
	format  *core.Formatter
	logger  *applog.Logger
}

// NewDispatcher wires a dispatcher. A nil formatter means English formatting
// and a nil logger discards output.
func NewDispatcher(ledgers Ledgers, format *core.Formatter, logger *applog.Logger) *Dispatcher {
	if format == nil {
		format = core.NewFormatter("en")
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Dispatcher{
		ledgers: ledgers,
		format:  format,
		logger:  logger.WithComponent(applog.ComponentCommand),
	}
}

// Handle parses text sent by userID, runs it against that user's ledger and
// returns the reply. It never panics and always returns a non-empty string.
func (d *Dispatcher) Handle(ctx context.Context, text, userID string) (reply string) {
	kind, token, amount, name := Resolve(text)

	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "Command panicked",
				applog.FieldUserID, userID,
				applog.FieldCommand, kind.String(),
				applog.FieldError, fmt.Sprint(r),
				applog.FieldErrorType, applog.ErrorTypeInternal,
			)
			reply = internalErrorText
		}
	}()

	d.logger.InfoContext(ctx, "Message received",
		applog.FieldUserID, userID,
		applog.FieldCommand, kind.String(),
	)

	if kind == Unknown {
		return d.reject(ctx, userID, kind, &UnknownCommandError{Token: token})
	}

	out, err := d.Execute(kind, amount, name, d.ledgers.Get(userID))
	if err != nil {
		return d.reject(ctx, userID, kind, err)
	}
	return out
}

// Resolve maps text to a command. Keyboard labels are tried first, then the
// leading token is looked up in the command table.
func Resolve(text string) (kind Kind, token, amount, name string) {
	if k, ok := LookupLabel(text); ok {
		return k, strings.TrimSpace(text), "", ""
	}
	token, amount, name = Parse(text)
	return Lookup(token), token, amount, name
}

func (d *Dispatcher) reject(ctx context.Context, userID string, kind Kind, err error) string {
	errType := classify(err)
	fields := applog.NewFields().
		WithUser(userID).
		WithCommand(kind.String()).
		WithError(err, errType)
	if errType == applog.ErrorTypeInternal {
		d.logger.ErrorContext(ctx, "Command failed", fields.ToSlice()...)
	} else {
		d.logger.WarnContext(ctx, "Command rejected", fields.ToSlice()...)
	}
	return d.render(err)
}

// render converts an error into reply text.
func (d *Dispatcher) render(err error) string {
	var notFound *ledger.OperationNotFoundError
	switch {
	case errors.As(err, &notFound):
		return fmt.Sprintf("Amount %s not found in %s «%s».",
			d.format.Amount(notFound.Amount), notFound.Kind, notFound.Name)
	case classify(err) == applog.ErrorTypeInternal:
		return internalErrorText
	default:
		return err.Error()
	}
}

func classify(err error) string {
	var (
		missing   *MissingParameterError
		amount    *InvalidAmountError
		unknown   *UnknownCommandError
		category  *ledger.UnknownCategoryError
		period    *ledger.InvalidPeriodError
		duplicate *ledger.DuplicateCategoryError
		inUse     *ledger.CategoryInUseError
		notFound  *ledger.NotFoundError
		opMissing *ledger.OperationNotFoundError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &amount), errors.As(err, &category),
		errors.As(err, &period), errors.Is(err, ledger.ErrEmptyName),
		errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrNameTooLong),
		errors.Is(err, core.ErrEmptyCategory), errors.Is(err, core.ErrInvalidAmount):
		return applog.ErrorTypeValidation
	case errors.As(err, &duplicate), errors.As(err, &inUse):
		return applog.ErrorTypeConflict
	case errors.As(err, &unknown), errors.As(err, &notFound), errors.As(err, &opMissing):
		return applog.ErrorTypeNotFound
	default:
		return applog.ErrorTypeInternal
	}
}

// Execute runs one command against l. amount and name are the raw
// parameters produced by Parse.
func (d *Dispatcher) Execute(kind Kind, amount, name string, l *ledger.Ledger) (string, error) {
	switch kind {
	case Start:
		return startText, nil
	case Help:
		return HelpText(), nil
	case AddIncome:
		return d.addOperation(l, kind, core.Income, amount, name)
	case AddExpense:
		return d.addOperation(l, kind, core.Expense, amount, name)
	case DeleteIncome:
		return d.deleteOperation(l, kind, core.Income, amount, name)
	case DeleteExpense:
		return d.deleteOperation(l, kind, core.Expense, amount, name)
	case ListIncomes:
		return d.list(core.Income, l.Incomes()), nil
	case ListExpenses:
		return d.list(core.Expense, l.Expenses()), nil
	case Balance:
		return "Balance: " + d.format.Amount(l.Balance()), nil
	case SumIncome:
		return "Total income: " + d.format.Amount(l.TotalIncome()), nil
	case SumExpense:
		return "Total expenses: " + d.format.Amount(l.TotalExpense()), nil
	case TopIncomes:
		return d.top(core.Income, l.TopIncomes()), nil
	case TopExpenses:
		return d.top(core.Expense, l.TopExpenses()), nil
	case Statistic:
		return d.statistics(l, amount, name)
	case CountOps:
		return d.count(l.Count()), nil
	case IncomeCategories:
		return categoriesText(core.Income, l.Categories(core.Income)), nil
	case ExpenseCategories:
		return categoriesText(core.Expense, l.Categories(core.Expense)), nil
	case AddIncomeCategory:
		return d.addCategory(l, kind, core.Income, amount, name)
	case AddExpenseCategory:
		return d.addCategory(l, kind, core.Expense, amount, name)
	case DeleteIncomeCategory:
		return d.deleteCategory(l, kind, core.Income, amount, name)
	case DeleteExpenseCategory:
		return d.deleteCategory(l, kind, core.Expense, amount, name)
	default:
		return "", &UnknownCommandError{Token: kind.String()}
	}
}

// addOperation expects name to hold "<name...> <category> [dd.mm.yyyy]".
func (d *Dispatcher) addOperation(l *ledger.Ledger, cmd Kind, kind core.Kind, rawAmount, rest string) (string, error) {
	if rawAmount == "" || rest == "" {
		return "", &MissingParameterError{Kind: cmd}
	}
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		return "", &InvalidAmountError{Raw: rawAmount}
	}

	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return "", &MissingParameterError{Kind: cmd}
	}
	var dateText string
	if last := fields[len(fields)-1]; core.LooksLikeDate(last) {
		if len(fields) < 3 {
			return "", &MissingParameterError{Kind: cmd}
		}
		dateText = last
		fields = fields[:len(fields)-1]
	}
	category := fields[len(fields)-1]
	name := strings.Join(fields[:len(fields)-1], " ")

	op, err := l.Add(kind, name, amount, category, dateText)
	if err != nil {
		return "", err
	}
	d.logger.Debug("Operation recorded", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithLedgerOperation(kind.String(), op.Name, op.Amount.String(), op.Category).
		ToSlice()...)
	return fmt.Sprintf("%s «%s» of %s added.\nCategory: %s\nDate: %s",
		title(kind), op.Name, d.format.Amount(op.Amount), op.Category, op.Date), nil
}

func (d *Dispatcher) deleteOperation(l *ledger.Ledger, cmd Kind, kind core.Kind, rawAmount, rawName string) (string, error) {
	if rawAmount == "" || rawName == "" {
		return "", &MissingParameterError{Kind: cmd}
	}
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		return "", &InvalidAmountError{Raw: rawAmount}
	}
	name := strings.Join(strings.Fields(rawName), " ")

	op, err := l.Delete(kind, name, amount)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s «%s» of %s deleted.", title(kind), op.Name, d.format.Amount(op.Amount)), nil
}

func (d *Dispatcher) statistics(l *ledger.Ledger, amount, name string) (string, error) {
	keyword := strings.TrimSpace(amount + " " + name)
	period, err := ledger.ParsePeriod(keyword)
	if err != nil {
		return "", err
	}
	return d.statisticsText(l.Statistics(period)), nil
}

// Category names are single tokens, so "/add_cat_in side job" is a usage error.
func categoryName(cmd Kind, amount, name string) (string, error) {
	if amount != "" || name == "" {
		return "", &MissingParameterError{Kind: cmd}
	}
	return name, nil
}

func (d *Dispatcher) addCategory(l *ledger.Ledger, cmd Kind, kind core.Kind, amount, name string) (string, error) {
	name, err := categoryName(cmd, amount, name)
	if err != nil {
		return "", err
	}
	added, err := l.AddCategory(kind, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Category «%s» added to %s categories.", added, kind), nil
}

func (d *Dispatcher) deleteCategory(l *ledger.Ledger, cmd Kind, kind core.Kind, amount, name string) (string, error) {
	name, err := categoryName(cmd, amount, name)
	if err != nil {
		return "", err
	}
	removed, err := l.DeleteCategory(kind, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Category «%s» deleted from %s categories.", removed, kind), nil
}
