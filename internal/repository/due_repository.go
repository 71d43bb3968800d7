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

// DueRepository provides persistence for rent dues.
type DueRepository struct {
	db *sqlx.DB
}

// NewDueRepository creates the repository.
func NewDueRepository(db *sqlx.DB) *DueRepository {
	return &DueRepository{db: db}
}

const dueColumns = `d.id, d.property_id, d.tenant_id, d.period, d.amount, d.paid_amount, d.status, d.due_date, d.paid_at, d.method, d.receipt_no, d.created_at, d.updated_at`

// List returns dues joined with tenant labels, with a total count.
func (r *DueRepository) List(ctx context.Context, filter models.DueFilter) ([]models.DueDetail, int, error) {
	base := `FROM dues d JOIN tenants t ON t.id = d.tenant_id LEFT JOIN rooms rm ON rm.id = t.room_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.PropertyID != "" {
		conditions = append(conditions, fmt.Sprintf("d.property_id = $%d", len(args)+1))
		args = append(args, filter.PropertyID)
	}
	if filter.TenantID != "" {
		conditions = append(conditions, fmt.Sprintf("d.tenant_id = $%d", len(args)+1))
		args = append(args, filter.TenantID)
	}
	if filter.Period != "" {
		conditions = append(conditions, fmt.Sprintf("d.period = $%d", len(args)+1))
		args = append(args, filter.Period)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("d.status = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Status))
	}
	if filter.OverdueOnly {
		conditions = append(conditions, "d.status <> 'PAID'", "d.due_date < NOW()")
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

	query := fmt.Sprintf(`SELECT %s, t.full_name AS tenant_name, rm.number AS room_number
        %s ORDER BY d.due_date DESC LIMIT %d OFFSET %d`, dueColumns, base, size, offset)
	var dues []models.DueDetail
	if err := r.db.SelectContext(ctx, &dues, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list dues: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count dues: %w", err)
	}
	return dues, total, nil
}

// GetByID returns a due joined with tenant labels.
func (r *DueRepository) GetByID(ctx context.Context, id string) (*models.DueDetail, error) {
	query := fmt.Sprintf(`SELECT %s, t.full_name AS tenant_name, rm.number AS room_number
FROM dues d JOIN tenants t ON t.id = d.tenant_id LEFT JOIN rooms rm ON rm.id = t.room_id WHERE d.id = $1`, dueColumns)
	var due models.DueDetail
	if err := r.db.GetContext(ctx, &due, query, id); err != nil {
		return nil, err
	}
	return &due, nil
}

// Create inserts a new due.
func (r *DueRepository) Create(ctx context.Context, due *models.Due) error {
	if due.ID == "" {
		due.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if due.CreatedAt.IsZero() {
		due.CreatedAt = now
	}
	due.UpdatedAt = now
	const query = `INSERT INTO dues (id, property_id, tenant_id, period, amount, paid_amount, status, due_date, created_at, updated_at)
VALUES (:id, :property_id, :tenant_id, :period, :amount, :paid_amount, :status, :due_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, due); err != nil {
		return fmt.Errorf("create due: %w", err)
	}
	return nil
}

// ExistsForPeriod reports whether a due already covers the tenant's period.
func (r *DueRepository) ExistsForPeriod(ctx context.Context, tenantID, period string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM dues WHERE tenant_id = $1 AND period = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, tenantID, period); err != nil {
		return false, fmt.Errorf("due exists for period: %w", err)
	}
	return exists, nil
}

// RecordPayment applies a payment against the due.
func (r *DueRepository) RecordPayment(ctx context.Context, due *models.Due) error {
	due.UpdatedAt = time.Now().UTC()
	const query = `UPDATE dues SET paid_amount = :paid_amount, status = :status, paid_at = :paid_at, method = :method, receipt_no = :receipt_no, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, due); err != nil {
		return fmt.Errorf("record due payment: %w", err)
	}
	return nil
}
