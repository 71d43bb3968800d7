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

// ReviewRepository provides persistence for public property reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates the repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, property_id, reviewer_name, rating, comment, status, created_at, updated_at`

// List returns reviews matching the filter with a total count.
func (r *ReviewRepository) List(ctx context.Context, filter models.PropertyReviewFilter) ([]models.PropertyReview, int, error) {
	base := `FROM property_reviews WHERE 1=1`
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
	if filter.MinRating > 0 {
		conditions = append(conditions, fmt.Sprintf("rating >= $%d", len(args)+1))
		args = append(args, filter.MinRating)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", reviewColumns, base, size, offset)
	var reviews []models.PropertyReview
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list property reviews: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count property reviews: %w", err)
	}
	return reviews, total, nil
}

// GetByID returns a review by identifier.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*models.PropertyReview, error) {
	query := fmt.Sprintf("SELECT %s FROM property_reviews WHERE id = $1", reviewColumns)
	var review models.PropertyReview
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, err
	}
	return &review, nil
}

// Create inserts a new review pending moderation.
func (r *ReviewRepository) Create(ctx context.Context, review *models.PropertyReview) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	review.UpdatedAt = now
	const query = `INSERT INTO property_reviews (id, property_id, reviewer_name, rating, comment, status, created_at, updated_at)
VALUES (:id, :property_id, :reviewer_name, :rating, :comment, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("create property review: %w", err)
	}
	return nil
}

// UpdateStatus moderates a review.
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id string, status models.PropertyReviewStatus) error {
	const query = `UPDATE property_reviews SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update property review status: %w", err)
	}
	return nil
}

// RatingSummary aggregates approved review ratings for a property.
func (r *ReviewRepository) RatingSummary(ctx context.Context, propertyID string) (*models.PropertyRatingSummary, error) {
	const query = `SELECT $1 AS property_id, COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count
FROM property_reviews WHERE property_id = $1 AND status = 'APPROVED'`
	var summary models.PropertyRatingSummary
	if err := r.db.GetContext(ctx, &summary, query, propertyID); err != nil {
		return nil, fmt.Errorf("property rating summary: %w", err)
	}
	return &summary, nil
}
