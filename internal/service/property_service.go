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
)

type propertyRepository interface {
	List(ctx context.Context, filter models.PropertyFilter) ([]models.PropertyDetail, int, error)
	GetByID(ctx context.Context, id string) (*models.PropertyDetail, error)
	Create(ctx context.Context, property *models.Property) error
	Update(ctx context.Context, property *models.Property) error
	Unlist(ctx context.Context, id string) error
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// PropertyService manages the landlord's property portfolio and the public
// listings surface. Public listing reads go through the cache.
type PropertyService struct {
	repo      propertyRepository
	cache     cacheStore
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// SetMetrics attaches listings cache hit/miss instrumentation.
func (s *PropertyService) SetMetrics(m *MetricsService) {
	s.metrics = m
}

// NewPropertyService constructs the service.
func NewPropertyService(repo propertyRepository, cache cacheStore, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *PropertyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	svc := &PropertyService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
	svc.validator.RegisterValidation("propertytype", func(fl validator.FieldLevel) bool {
		switch models.PropertyType(strings.ToUpper(fl.Field().String())) {
		case models.PropertyTypePG, models.PropertyTypeFlat, models.PropertyTypeHostel, models.PropertyTypeCommercial:
			return true
		default:
			return false
		}
	})
	return svc
}

// CreatePropertyRequest describes a new property.
type CreatePropertyRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Type        string   `json:"type" validate:"required,propertytype"`
	Address     string   `json:"address" validate:"required"`
	City        string   `json:"city" validate:"required"`
	State       string   `json:"state" validate:"required"`
	Pincode     string   `json:"pincode" validate:"required,len=6,numeric"`
	MinRent     int64    `json:"min_rent" validate:"gte=0"`
	MaxRent     int64    `json:"max_rent" validate:"gtefield=MinRent"`
	Amenities   []string `json:"amenities"`
	ManagerID   *string  `json:"manager_id"`
	Listed      bool     `json:"listed"`
}

// UpdatePropertyRequest modifies an existing property.
type UpdatePropertyRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Type        string   `json:"type" validate:"required,propertytype"`
	Address     string   `json:"address" validate:"required"`
	City        string   `json:"city" validate:"required"`
	State       string   `json:"state" validate:"required"`
	Pincode     string   `json:"pincode" validate:"required,len=6,numeric"`
	MinRent     int64    `json:"min_rent" validate:"gte=0"`
	MaxRent     int64    `json:"max_rent" validate:"gtefield=MinRent"`
	Amenities   []string `json:"amenities"`
	ManagerID   *string  `json:"manager_id"`
	Listed      bool     `json:"listed"`
}

// PropertyListRequest filters admin property listings.
type PropertyListRequest struct {
	City     string `json:"city"`
	Type     string `json:"type"`
	MaxRent  int64  `json:"max_rent"`
	Search   string `json:"search"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// List returns the landlord's properties with room availability counts.
func (s *PropertyService) List(ctx context.Context, landlordID string, req PropertyListRequest) ([]models.PropertyDetail, *models.Pagination, error) {
	filter := models.PropertyFilter{
		LandlordID: landlordID,
		City:       req.City,
		Type:       strings.ToUpper(req.Type),
		MaxRent:    req.MaxRent,
		Search:     req.Search,
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
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list properties")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// PublicListings serves listed properties for the public browse surface,
// cached per filter combination.
func (s *PropertyService) PublicListings(ctx context.Context, req PropertyListRequest) ([]models.PropertyDetail, *models.Pagination, error) {
	filter := models.PropertyFilter{
		City:       req.City,
		Type:       strings.ToUpper(req.Type),
		MaxRent:    req.MaxRent,
		Search:     req.Search,
		ListedOnly: true,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	type cached struct {
		Rows  []models.PropertyDetail `json:"rows"`
		Total int                     `json:"total"`
	}
	key := fmt.Sprintf("listings:%s:%s:%d:%s:%d:%d", filter.City, filter.Type, filter.MaxRent, filter.Search, filter.Page, filter.PageSize)

	if s.cache != nil {
		var hit cached
		if err := s.cache.Get(ctx, key, &hit); err == nil {
			s.metrics.RecordCacheOperation(true)
			pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: hit.Total}
			return hit.Rows, pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("listings cache lookup failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list public properties")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cached{Rows: rows, Total: total}, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache listings page", zap.Error(err))
		}
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// PublicGet loads one property for the public site. Unlisted properties
// are reported as missing so the endpoint never leaks withdrawn units.
func (s *PropertyService) PublicGet(ctx context.Context, id string) (*models.PropertyDetail, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "listing not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load listing")
	}
	if !property.Listed {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "listing not found")
	}
	return property, nil
}

// Get loads one property scoped to the landlord.
func (s *PropertyService) Get(ctx context.Context, landlordID, id string) (*models.PropertyDetail, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "property not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load property")
	}
	if landlordID != "" && property.LandlordID != landlordID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "property not found")
	}
	return property, nil
}

// Create registers a new property under the landlord.
func (s *PropertyService) Create(ctx context.Context, landlordID string, req CreatePropertyRequest) (*models.Property, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	property := &models.Property{
		LandlordID:  landlordID,
		ManagerID:   req.ManagerID,
		Name:        req.Name,
		Description: req.Description,
		Type:        models.PropertyType(strings.ToUpper(req.Type)),
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Pincode:     req.Pincode,
		MinRent:     req.MinRent,
		MaxRent:     req.MaxRent,
		Amenities:   req.Amenities,
		Listed:      req.Listed,
	}
	if err := s.repo.Create(ctx, property); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create property")
	}
	s.invalidateListings(ctx)
	return property, nil
}

// Update modifies an existing property.
func (s *PropertyService) Update(ctx context.Context, landlordID, id string, req UpdatePropertyRequest) (*models.Property, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	existing, err := s.Get(ctx, landlordID, id)
	if err != nil {
		return nil, err
	}
	property := existing.Property
	property.ManagerID = req.ManagerID
	property.Name = req.Name
	property.Description = req.Description
	property.Type = models.PropertyType(strings.ToUpper(req.Type))
	property.Address = req.Address
	property.City = req.City
	property.State = req.State
	property.Pincode = req.Pincode
	property.MinRent = req.MinRent
	property.MaxRent = req.MaxRent
	property.Amenities = req.Amenities
	property.Listed = req.Listed
	if err := s.repo.Update(ctx, &property); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update property")
	}
	s.invalidateListings(ctx)
	return &property, nil
}

// Unlist removes the property from the public surface without deleting data.
func (s *PropertyService) Unlist(ctx context.Context, landlordID, id string) error {
	if _, err := s.Get(ctx, landlordID, id); err != nil {
		return err
	}
	if err := s.repo.Unlist(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlist property")
	}
	s.invalidateListings(ctx)
	return nil
}

func (s *PropertyService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "listings:*"); err != nil {
		s.logger.Warn("failed to invalidate listings cache", zap.Error(err))
	}
}
