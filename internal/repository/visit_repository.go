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

// VisitRepository provides persistence for scheduled property visits.
type VisitRepository struct {
	db *sqlx.DB
}

// NewVisitRepository creates the repository.
func NewVisitRepository(db *sqlx.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

const visitColumns = `id, property_id, visitor_name, phone, email, slot_at, status, note, created_at, updated_at`

// List returns visit requests matching the filter with a total count.
func (r *VisitRepository) List(ctx context.Context, filter models.VisitFilter) ([]models.VisitRequest, int, error) {
	base := `FROM visit_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.PropertyID != "" {
		conditions = append(conditions, fmt.Sprintf("property_id = $%d", len(args)+1))
		args = append(args, filter.PropertyID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Status))
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("slot_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("slot_at < $%d", len(args)+1))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY slot_at ASC LIMIT %d OFFSET %d", visitColumns, base, size, offset)
	var visits []models.VisitRequest
	if err := r.db.SelectContext(ctx, &visits, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list visits: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count visits: %w", err)
	}
	return visits, total, nil
}

// GetByID returns a visit request by identifier.
func (r *VisitRepository) GetByID(ctx context.Context, id string) (*models.VisitRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM visit_requests WHERE id = $1", visitColumns)
	var visit models.VisitRequest
	if err := r.db.GetContext(ctx, &visit, query, id); err != nil {
		return nil, err
	}
	return &visit, nil
}

// Create inserts a new visit request.
func (r *VisitRepository) Create(ctx context.Context, visit *models.VisitRequest) error {
	if visit.ID == "" {
		visit.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if visit.CreatedAt.IsZero() {
		visit.CreatedAt = now
	}
	visit.UpdatedAt = now
	const query = `INSERT INTO visit_requests (id, property_id, visitor_name, phone, email, slot_at, status, note, created_at, updated_at)
VALUES (:id, :property_id, :visitor_name, :phone, :email, :slot_at, :status, :note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, visit); err != nil {
		return fmt.Errorf("create visit: %w", err)
	}
	return nil
}

// UpdateStatus transitions a visit request.
func (r *VisitRepository) UpdateStatus(ctx context.Context, id string, status models.VisitStatus) error {
	const query = `UPDATE visit_requests SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update visit status: %w", err)
	}
	return nil
}
