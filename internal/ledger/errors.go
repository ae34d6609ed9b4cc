package ledger

import (
	"errors"
	"fmt"
	"strings"

	"ledgerbot/internal/core"

	"github.com/shopspring/decimal"
)

// ErrEmptyName is returned when a category name is blank after trimming.
var ErrEmptyName = errors.New("category name cannot be empty")

// UnknownCategoryError is returned when an operation names a category the
// ledger does not know. Valid holds the sorted vocabulary for that kind.
type UnknownCategoryError struct {
	Kind     core.Kind
	Category string
	Valid    []string
}

func (e *UnknownCategoryError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Category «%s» does not exist.\nAvailable %s categories:", e.Category, e.Kind)
	for _, c := range e.Valid {
		sb.WriteString("\n• ")
		sb.WriteString(c)
	}
	return sb.String()
}

type DuplicateCategoryError struct {
	Name string
}

func (e *DuplicateCategoryError) Error() string {
	return fmt.Sprintf("Category «%s» already exists.", e.Name)
}

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Category «%s» not found.", e.Name)
}

// CategoryInUseError blocks deleting a category that still has operations.
type CategoryInUseError struct {
	Name  string
	Count int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("Category «%s» is used in %d operations. Delete or change those operations first.", e.Name, e.Count)
}

// OperationNotFoundError is returned by deletes that match nothing.
type OperationNotFoundError struct {
	Kind   core.Kind
	Name   string
	Amount decimal.Decimal
}

func (e *OperationNotFoundError) Error() string {
	return fmt.Sprintf("Amount %s not found in %s «%s».", e.Amount.StringFixed(2), e.Kind, e.Name)
}
