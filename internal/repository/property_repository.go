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

// PropertyRepository provides persistence for properties.
type PropertyRepository struct {
	db *sqlx.DB
}

// NewPropertyRepository creates the repository.
func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `p.id, p.landlord_id, p.manager_id, p.name, p.description, p.type, p.address, p.city, p.state, p.pincode, p.min_rent, p.max_rent, p.amenities, p.listed, p.created_at, p.updated_at`

// List returns properties with availability counts and a total.
func (r *PropertyRepository) List(ctx context.Context, filter models.PropertyFilter) ([]models.PropertyDetail, int, error) {
	base := `FROM properties p WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.LandlordID != "" {
		conditions = append(conditions, fmt.Sprintf("p.landlord_id = $%d", len(args)+1))
		args = append(args, filter.LandlordID)
	}
	if filter.ManagerID != "" {
		conditions = append(conditions, fmt.Sprintf("p.manager_id = $%d", len(args)+1))
		args = append(args, filter.ManagerID)
	}
	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(p.city) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.City))
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("p.type = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Type))
	}
	if filter.MaxRent > 0 {
		conditions = append(conditions, fmt.Sprintf("p.min_rent <= $%d", len(args)+1))
		args = append(args, filter.MaxRent)
	}
	if filter.ListedOnly {
		conditions = append(conditions, "p.listed = TRUE")
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(p.name) LIKE $%d OR LOWER(p.address) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	query := fmt.Sprintf(`SELECT %s,
        COALESCE((SELECT COUNT(*) FROM rooms r WHERE r.property_id = p.id), 0) AS total_rooms,
        COALESCE((SELECT SUM(r.capacity - r.occupied) FROM rooms r WHERE r.property_id = p.id), 0) AS vacant_beds,
        COALESCE((SELECT COUNT(*) FROM property_reviews pr WHERE pr.property_id = p.id AND pr.status = 'APPROVED'), 0) AS review_count
        %s ORDER BY p.created_at DESC LIMIT %d OFFSET %d`, propertyColumns, base, size, offset)

	var properties []models.PropertyDetail
	if err := r.db.SelectContext(ctx, &properties, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}
	return properties, total, nil
}

// GetByID returns one property with availability counts.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*models.PropertyDetail, error) {
	query := fmt.Sprintf(`SELECT %s,
        COALESCE((SELECT COUNT(*) FROM rooms r WHERE r.property_id = p.id), 0) AS total_rooms,
        COALESCE((SELECT SUM(r.capacity - r.occupied) FROM rooms r WHERE r.property_id = p.id), 0) AS vacant_beds,
        COALESCE((SELECT COUNT(*) FROM property_reviews pr WHERE pr.property_id = p.id AND pr.status = 'APPROVED'), 0) AS review_count
        FROM properties p WHERE p.id = $1`, propertyColumns)
	var property models.PropertyDetail
	if err := r.db.GetContext(ctx, &property, query, id); err != nil {
		return nil, err
	}
	return &property, nil
}

// Create inserts a new property.
func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if property.CreatedAt.IsZero() {
		property.CreatedAt = now
	}
	property.UpdatedAt = now
	const query = `INSERT INTO properties (id, landlord_id, manager_id, name, description, type, address, city, state, pincode, min_rent, max_rent, amenities, listed, created_at, updated_at)
VALUES (:id, :landlord_id, :manager_id, :name, :description, :type, :address, :city, :state, :pincode, :min_rent, :max_rent, :amenities, :listed, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, property); err != nil {
		return fmt.Errorf("create property: %w", err)
	}
	return nil
}

// Update modifies an existing property.
func (r *PropertyRepository) Update(ctx context.Context, property *models.Property) error {
	property.UpdatedAt = time.Now().UTC()
	const query = `UPDATE properties SET manager_id = :manager_id, name = :name, description = :description, type = :type, address = :address,
city = :city, state = :state, pincode = :pincode, min_rent = :min_rent, max_rent = :max_rent, amenities = :amenities, listed = :listed, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, property); err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	return nil
}

// Unlist hides the property from public listings.
func (r *PropertyRepository) Unlist(ctx context.Context, id string) error {
	const query = `UPDATE properties SET listed = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("unlist property: %w", err)
	}
	return nil
}
