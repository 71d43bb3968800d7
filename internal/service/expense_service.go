package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/export"
)

type expenseRepository interface {
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, int, error)
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, propertyID string, from, to time.Time) ([]models.ExpenseSummary, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExpenseService manages property expense entries and statements.
type ExpenseService struct {
	repo      expenseRepository
	csv       csvRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExpenseService constructs the service.
func NewExpenseService(repo expenseRepository, csv csvRenderer, validate *validator.Validate, logger *zap.Logger) *ExpenseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ExpenseService{repo: repo, csv: csv, validator: validate, logger: logger}
	svc.validator.RegisterValidation("expensecategory", func(fl validator.FieldLevel) bool {
		switch models.ExpenseCategory(strings.ToUpper(fl.Field().String())) {
		case models.ExpenseCategoryMaintenance, models.ExpenseCategoryUtilities,
			models.ExpenseCategoryStaff, models.ExpenseCategorySupplies, models.ExpenseCategoryOther:
			return true
		default:
			return false
		}
	})
	return svc
}

// CreateExpenseRequest describes a new expense entry.
type CreateExpenseRequest struct {
	PropertyID string    `json:"property_id" validate:"required"`
	Category   string    `json:"category" validate:"required,expensecategory"`
	Title      string    `json:"title" validate:"required"`
	Notes      string    `json:"notes"`
	Amount     int64     `json:"amount" validate:"gt=0"`
	SpentAt    time.Time `json:"spent_at" validate:"required"`
	CreatedBy  string    `json:"created_by" validate:"required"`
}

// UpdateExpenseRequest modifies an expense entry.
type UpdateExpenseRequest struct {
	Category string    `json:"category" validate:"required,expensecategory"`
	Title    string    `json:"title" validate:"required"`
	Notes    string    `json:"notes"`
	Amount   int64     `json:"amount" validate:"gt=0"`
	SpentAt  time.Time `json:"spent_at" validate:"required"`
}

// ExpenseListRequest filters expense listings.
type ExpenseListRequest struct {
	PropertyID string     `json:"property_id" validate:"required"`
	Category   string     `json:"category"`
	From       *time.Time `json:"from"`
	To         *time.Time `json:"to"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}

// List returns expenses with pagination.
func (s *ExpenseService) List(ctx context.Context, req ExpenseListRequest) ([]models.Expense, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	filter := models.ExpenseFilter{
		PropertyID: req.PropertyID,
		Category:   strings.ToUpper(req.Category),
		From:       req.From,
		To:         req.To,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expenses")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Get loads one expense entry.
func (s *ExpenseService) Get(ctx context.Context, id string) (*models.Expense, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expense not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expense")
	}
	return expense, nil
}

// Create records a new expense.
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	expense := &models.Expense{
		PropertyID: req.PropertyID,
		Category:   models.ExpenseCategory(strings.ToUpper(req.Category)),
		Title:      req.Title,
		Notes:      req.Notes,
		Amount:     req.Amount,
		SpentAt:    req.SpentAt,
		CreatedBy:  req.CreatedBy,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create expense")
	}
	return expense, nil
}

// Update modifies an expense entry.
func (s *ExpenseService) Update(ctx context.Context, id string, req UpdateExpenseRequest) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.Category = models.ExpenseCategory(strings.ToUpper(req.Category))
	expense.Title = req.Title
	expense.Notes = req.Notes
	expense.Amount = req.Amount
	expense.SpentAt = req.SpentAt
	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update expense")
	}
	return expense, nil
}

// Delete removes an expense entry.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete expense")
	}
	return nil
}

// Summary aggregates spend per category for a period.
func (s *ExpenseService) Summary(ctx context.Context, propertyID string, from, to time.Time) ([]models.ExpenseSummary, error) {
	if propertyID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "property_id required")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must be after from")
	}
	summary, err := s.repo.Summary(ctx, propertyID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarize expenses")
	}
	return summary, nil
}

// ExportCSV renders the filtered expenses as a CSV statement.
func (s *ExpenseService) ExportCSV(ctx context.Context, req ExpenseListRequest) ([]byte, string, error) {
	req.Page = 1
	req.PageSize = 0
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	filter := models.ExpenseFilter{
		PropertyID: req.PropertyID,
		Category:   strings.ToUpper(req.Category),
		From:       req.From,
		To:         req.To,
		Page:       1,
		PageSize:   1000,
	}
	rows, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expenses for export")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Category", "Title", "Notes", "Amount"},
	}
	for _, e := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":     e.SpentAt.Format("2006-01-02"),
			"Category": string(e.Category),
			"Title":    e.Title,
			"Notes":    e.Notes,
			"Amount":   fmt.Sprintf("%d", e.Amount),
		})
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render expense export")
	}
	filename := fmt.Sprintf("expenses-%s-%s.csv", req.PropertyID, time.Now().UTC().Format("20060102"))
	return payload, filename, nil
}
