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

type visitRepository interface {
	List(ctx context.Context, filter models.VisitFilter) ([]models.VisitRequest, int, error)
	GetByID(ctx context.Context, id string) (*models.VisitRequest, error)
	Create(ctx context.Context, visit *models.VisitRequest) error
	UpdateStatus(ctx context.Context, id string, status models.VisitStatus) error
}

// VisitService manages prospective-tenant visit scheduling.
type VisitService struct {
	repo      visitRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVisitService constructs the service.
func NewVisitService(repo visitRepository, validate *validator.Validate, logger *zap.Logger) *VisitService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisitService{repo: repo, validator: validate, logger: logger}
}

// ScheduleVisitRequest books a property visit slot.
type ScheduleVisitRequest struct {
	PropertyID  string    `json:"property_id" validate:"required"`
	VisitorName string    `json:"visitor_name" validate:"required"`
	Phone       string    `json:"phone" validate:"required"`
	Email       string    `json:"email" validate:"omitempty,email"`
	SlotAt      time.Time `json:"slot_at" validate:"required"`
	Note        string    `json:"note"`
}

// VisitListRequest filters visit listings.
type VisitListRequest struct {
	PropertyID string     `json:"property_id"`
	Status     string     `json:"status"`
	From       *time.Time `json:"from"`
	To         *time.Time `json:"to"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}

// List returns visit requests with pagination.
func (s *VisitService) List(ctx context.Context, req VisitListRequest) ([]models.VisitRequest, *models.Pagination, error) {
	filter := models.VisitFilter{
		PropertyID: req.PropertyID,
		Status:     strings.ToUpper(req.Status),
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
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list visits")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Schedule books a visit slot in the future.
func (s *VisitService) Schedule(ctx context.Context, req ScheduleVisitRequest) (*models.VisitRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.SlotAt.Before(time.Now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot_at must be in the future")
	}
	visit := &models.VisitRequest{
		PropertyID:  req.PropertyID,
		VisitorName: req.VisitorName,
		Phone:       req.Phone,
		Email:       req.Email,
		SlotAt:      req.SlotAt,
		Status:      models.VisitStatusRequested,
		Note:        req.Note,
	}
	if err := s.repo.Create(ctx, visit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule visit")
	}
	return visit, nil
}

// UpdateStatus advances a visit through its lifecycle.
func (s *VisitService) UpdateStatus(ctx context.Context, id, status string) (*models.VisitRequest, error) {
	next := models.VisitStatus(strings.ToUpper(status))
	visit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "visit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load visit")
	}
	if !validVisitTransition(visit.Status, next) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot move visit from %s to %s", visit.Status, next))
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update visit status")
	}
	visit.Status = next
	return visit, nil
}

func validVisitTransition(from, to models.VisitStatus) bool {
	switch from {
	case models.VisitStatusRequested:
		return to == models.VisitStatusConfirmed || to == models.VisitStatusCancelled
	case models.VisitStatusConfirmed:
		return to == models.VisitStatusCompleted || to == models.VisitStatusCancelled
	default:
		return false
	}
}
