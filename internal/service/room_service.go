package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	GetByID(ctx context.Context, id string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

// RoomService manages rooms within a property.
type RoomService struct {
	repo      roomRepository
	props     propertyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService constructs the service.
func NewRoomService(repo roomRepository, props propertyRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &RoomService{repo: repo, props: props, validator: validate, logger: logger}
	svc.validator.RegisterValidation("roomtype", func(fl validator.FieldLevel) bool {
		switch models.RoomType(strings.ToUpper(fl.Field().String())) {
		case models.RoomTypeSingle, models.RoomTypeDouble, models.RoomTypeTriple, models.RoomTypeDorm:
			return true
		default:
			return false
		}
	})
	return svc
}

// CreateRoomRequest describes a new room.
type CreateRoomRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	Number     string `json:"number" validate:"required"`
	Floor      int    `json:"floor" validate:"gte=0"`
	Type       string `json:"type" validate:"required,roomtype"`
	Rent       int64  `json:"rent" validate:"gt=0"`
	Capacity   int    `json:"capacity" validate:"gt=0"`
}

// UpdateRoomRequest modifies a room.
type UpdateRoomRequest struct {
	Number   string `json:"number" validate:"required"`
	Floor    int    `json:"floor" validate:"gte=0"`
	Type     string `json:"type" validate:"required,roomtype"`
	Rent     int64  `json:"rent" validate:"gt=0"`
	Capacity int    `json:"capacity" validate:"gt=0"`
}

// RoomListRequest filters room listings.
type RoomListRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	VacantOnly bool   `json:"vacant_only"`
	Floor      *int   `json:"floor"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// List returns rooms of a property.
func (s *RoomService) List(ctx context.Context, landlordID string, req RoomListRequest) ([]models.Room, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.ensureProperty(ctx, landlordID, req.PropertyID); err != nil {
		return nil, nil, err
	}
	filter := models.RoomFilter{
		PropertyID: req.PropertyID,
		VacantOnly: req.VacantOnly,
		Floor:      req.Floor,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rooms, pagination, nil
}

// Get loads one room.
func (s *RoomService) Get(ctx context.Context, landlordID, id string) (*models.Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	if err := s.ensureProperty(ctx, landlordID, room.PropertyID); err != nil {
		return nil, err
	}
	return room, nil
}

// Create adds a room to a property.
func (s *RoomService) Create(ctx context.Context, landlordID string, req CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.ensureProperty(ctx, landlordID, req.PropertyID); err != nil {
		return nil, err
	}
	room := &models.Room{
		PropertyID: req.PropertyID,
		Number:     req.Number,
		Floor:      req.Floor,
		Type:       models.RoomType(strings.ToUpper(req.Type)),
		Rent:       req.Rent,
		Capacity:   req.Capacity,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

// Update modifies a room. Capacity can never drop below current occupancy.
func (s *RoomService) Update(ctx context.Context, landlordID, id string, req UpdateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	room, err := s.Get(ctx, landlordID, id)
	if err != nil {
		return nil, err
	}
	if req.Capacity < room.Occupied {
		return nil, appErrors.Clone(appErrors.ErrValidation, "capacity cannot be less than current occupancy")
	}
	room.Number = req.Number
	room.Floor = req.Floor
	room.Type = models.RoomType(strings.ToUpper(req.Type))
	room.Rent = req.Rent
	room.Capacity = req.Capacity
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

// Delete removes an unoccupied room.
func (s *RoomService) Delete(ctx context.Context, landlordID, id string) error {
	room, err := s.Get(ctx, landlordID, id)
	if err != nil {
		return err
	}
	if room.Occupied > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "room still has tenants assigned")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}

func (s *RoomService) ensureProperty(ctx context.Context, landlordID, propertyID string) error {
	property, err := s.props.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "property not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load property")
	}
	if landlordID != "" && property.LandlordID != landlordID {
		return appErrors.Clone(appErrors.ErrNotFound, "property not found")
	}
	return nil
}
