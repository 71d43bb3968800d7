package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
)

// ExpenseRepository provides persistence for property expenses.
type ExpenseRepository struct {
	db *sqlx.DB
}

// NewExpenseRepository creates the repository.
func NewExpenseRepository(db *sqlx.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = `id, property_id, category, title, notes, amount, spent_at, created_by, created_at, updated_at`

// List returns expenses matching the filter with a total count.
func (r *ExpenseRepository) List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, int, error) {
	base := `FROM expenses WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.PropertyID != "" {
		conditions = append(conditions, fmt.Sprintf("property_id = $%d", len(args)+1))
		args = append(args, filter.PropertyID)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Category))
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("spent_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("spent_at < $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY spent_at DESC LIMIT %d OFFSET %d", expenseColumns, base, size, offset)
	var expenses []models.Expense
	if err := r.db.SelectContext(ctx, &expenses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}
	return expenses, total, nil
}

// GetByID returns an expense by identifier.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	query := fmt.Sprintf("SELECT %s FROM expenses WHERE id = $1", expenseColumns)
	var expense models.Expense
	if err := r.db.GetContext(ctx, &expense, query, id); err != nil {
		return nil, err
	}
	return &expense, nil
}

// Create inserts a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = now
	const query = `INSERT INTO expenses (id, property_id, category, title, notes, amount, spent_at, created_by, created_at, updated_at)
VALUES (:id, :property_id, :category, :title, :notes, :amount, :spent_at, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, expense); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// Update modifies an existing expense.
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().UTC()
	const query = `UPDATE expenses SET category = :category, title = :title, notes = :notes, amount = :amount, spent_at = :spent_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, expense); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

// Delete removes an expense.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// Summary aggregates spend per category for a property and period.
func (r *ExpenseRepository) Summary(ctx context.Context, propertyID string, from, to time.Time) ([]models.ExpenseSummary, error) {
	const query = `SELECT category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
FROM expenses WHERE property_id = $1 AND spent_at >= $2 AND spent_at < $3
GROUP BY category ORDER BY total DESC`
	var summary []models.ExpenseSummary
	if err := r.db.SelectContext(ctx, &summary, query, propertyID, from, to); err != nil {
		return nil, fmt.Errorf("expense summary: %w", err)
	}
	return summary, nil
}
