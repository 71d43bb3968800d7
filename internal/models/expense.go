package models

import "time"

// ExpenseCategory groups manager expenses for reporting.
type ExpenseCategory string

const (
	ExpenseCategoryMaintenance ExpenseCategory = "MAINTENANCE"
	ExpenseCategoryUtilities   ExpenseCategory = "UTILITIES"
	ExpenseCategoryStaff       ExpenseCategory = "STAFF"
	ExpenseCategorySupplies    ExpenseCategory = "SUPPLIES"
	ExpenseCategoryOther       ExpenseCategory = "OTHER"
)

// Expense represents one property expense entry.
type Expense struct {
	ID         string          `db:"id" json:"id"`
	PropertyID string          `db:"property_id" json:"property_id"`
	Category   ExpenseCategory `db:"category" json:"category"`
	Title      string          `db:"title" json:"title"`
	Notes      string          `db:"notes" json:"notes"`
	Amount     int64           `db:"amount" json:"amount"`
	SpentAt    time.Time       `db:"spent_at" json:"spent_at"`
	CreatedBy  string          `db:"created_by" json:"created_by"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// ExpenseFilter narrows expense listings.
type ExpenseFilter struct {
	PropertyID string
	Category   string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// ExpenseSummary aggregates spend per category for a period.
type ExpenseSummary struct {
	Category ExpenseCategory `db:"category" json:"category"`
	Total    int64           `db:"total" json:"total"`
	Count    int             `db:"count" json:"count"`
}
