package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
)

type tenantRepository interface {
	List(ctx context.Context, filter models.TenantFilter) ([]models.Tenant, int, error)
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	Create(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	MoveOut(ctx context.Context, id string, movedOutAt time.Time) error
}

type occupancyRepository interface {
	GetByID(ctx context.Context, id string) (*models.Room, error)
	AdjustOccupied(ctx context.Context, id string, delta int) error
}

// TenantService manages tenant records and their room assignments. Room
// occupancy counters move together with assignments.
type TenantService struct {
	repo      tenantRepository
	rooms     occupancyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTenantService constructs the service.
func NewTenantService(repo tenantRepository, rooms occupancyRepository, validate *validator.Validate, logger *zap.Logger) *TenantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{repo: repo, rooms: rooms, validator: validate, logger: logger}
}

// CreateTenantRequest describes a new tenant, optionally assigned to a room.
type CreateTenantRequest struct {
	PropertyID string    `json:"property_id" validate:"required"`
	RoomID     *string   `json:"room_id"`
	FullName   string    `json:"full_name" validate:"required"`
	Email      string    `json:"email" validate:"omitempty,email"`
	Phone      string    `json:"phone" validate:"required"`
	Rent       int64     `json:"rent" validate:"gt=0"`
	Deposit    int64     `json:"deposit" validate:"gte=0"`
	MovedInAt  time.Time `json:"moved_in_at" validate:"required"`
}

// UpdateTenantRequest modifies tenant profile fields.
type UpdateTenantRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"required"`
	Rent     int64  `json:"rent" validate:"gt=0"`
	Deposit  int64  `json:"deposit" validate:"gte=0"`
}

// TenantListRequest filters tenant listings.
type TenantListRequest struct {
	PropertyID string `json:"property_id"`
	RoomID     string `json:"room_id"`
	Active     *bool  `json:"active"`
	Search     string `json:"search"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// List returns tenants with pagination.
func (s *TenantService) List(ctx context.Context, req TenantListRequest) ([]models.Tenant, *models.Pagination, error) {
	filter := models.TenantFilter{
		PropertyID: req.PropertyID,
		RoomID:     req.RoomID,
		Active:     req.Active,
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
	tenants, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tenants")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return tenants, pagination, nil
}

// Get loads one tenant.
func (s *TenantService) Get(ctx context.Context, id string) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tenant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tenant")
	}
	return tenant, nil
}

// Create registers a tenant. A room assignment claims one bed.
func (s *TenantService) Create(ctx context.Context, req CreateTenantRequest) (*models.Tenant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.RoomID != nil {
		if err := s.claimBed(ctx, *req.RoomID, req.PropertyID); err != nil {
			return nil, err
		}
	}
	tenant := &models.Tenant{
		PropertyID: req.PropertyID,
		RoomID:     req.RoomID,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Rent:       req.Rent,
		Deposit:    req.Deposit,
		MovedInAt:  req.MovedInAt,
		Active:     true,
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		if req.RoomID != nil {
			s.releaseBed(ctx, *req.RoomID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create tenant")
	}
	return tenant, nil
}

// Update modifies a tenant's profile.
func (s *TenantService) Update(ctx context.Context, id string, req UpdateTenantRequest) (*models.Tenant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tenant.FullName = req.FullName
	tenant.Email = req.Email
	tenant.Phone = req.Phone
	tenant.Rent = req.Rent
	tenant.Deposit = req.Deposit
	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update tenant")
	}
	return tenant, nil
}

// AssignRoom moves a tenant into a room, releasing the previous one if set.
func (s *TenantService) AssignRoom(ctx context.Context, id, roomID string) (*models.Tenant, error) {
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tenant.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "tenant has moved out")
	}
	if tenant.RoomID != nil && *tenant.RoomID == roomID {
		return tenant, nil
	}
	if err := s.claimBed(ctx, roomID, tenant.PropertyID); err != nil {
		return nil, err
	}
	previous := tenant.RoomID
	tenant.RoomID = &roomID
	if err := s.repo.Update(ctx, tenant); err != nil {
		s.releaseBed(ctx, roomID)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign room")
	}
	if previous != nil {
		s.releaseBed(ctx, *previous)
	}
	return tenant, nil
}

// MoveOut ends a tenancy and frees the occupied bed.
func (s *TenantService) MoveOut(ctx context.Context, id string, movedOutAt time.Time) error {
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !tenant.Active {
		return appErrors.Clone(appErrors.ErrConflict, "tenant already moved out")
	}
	if movedOutAt.IsZero() {
		movedOutAt = time.Now().UTC()
	}
	if err := s.repo.MoveOut(ctx, id, movedOutAt); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move out tenant")
	}
	if tenant.RoomID != nil {
		s.releaseBed(ctx, *tenant.RoomID)
	}
	return nil
}

func (s *TenantService) claimBed(ctx context.Context, roomID, propertyID string) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	if room.PropertyID != propertyID {
		return appErrors.Clone(appErrors.ErrValidation, "room belongs to a different property")
	}
	if room.Vacant() == 0 {
		return appErrors.Clone(appErrors.ErrRoomFull, "room has no free beds")
	}
	if err := s.rooms.AdjustOccupied(ctx, roomID, 1); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to claim bed")
	}
	return nil
}

func (s *TenantService) releaseBed(ctx context.Context, roomID string) {
	if err := s.rooms.AdjustOccupied(ctx, roomID, -1); err != nil {
		s.logger.Warn("failed to release bed", zap.String("room_id", roomID), zap.Error(err))
	}
}
