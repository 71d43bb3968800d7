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

type propertyReviewRepository interface {
	List(ctx context.Context, filter models.PropertyReviewFilter) ([]models.PropertyReview, int, error)
	GetByID(ctx context.Context, id string) (*models.PropertyReview, error)
	Create(ctx context.Context, review *models.PropertyReview) error
	UpdateStatus(ctx context.Context, id string, status models.PropertyReviewStatus) error
	RatingSummary(ctx context.Context, propertyID string) (*models.PropertyRatingSummary, error)
}

// PropertyReviewService handles public ratings and their moderation.
type PropertyReviewService struct {
	repo      propertyReviewRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPropertyReviewService constructs the service.
func NewPropertyReviewService(repo propertyReviewRepository, validate *validator.Validate, logger *zap.Logger) *PropertyReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyReviewService{repo: repo, validator: validate, logger: logger}
}

// SubmitPropertyReviewRequest describes a public rating submission.
type SubmitPropertyReviewRequest struct {
	PropertyID   string `json:"property_id" validate:"required"`
	ReviewerName string `json:"reviewer_name" validate:"required"`
	Rating       int    `json:"rating" validate:"gte=1,lte=5"`
	Comment      string `json:"comment"`
}

// PropertyReviewListRequest filters review listings.
type PropertyReviewListRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	Status     string `json:"status"`
	MinRating  int    `json:"min_rating"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// List returns reviews with pagination. Public callers see approved only.
func (s *PropertyReviewService) List(ctx context.Context, req PropertyReviewListRequest, publicOnly bool) ([]models.PropertyReview, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	filter := models.PropertyReviewFilter{
		PropertyID: req.PropertyID,
		Status:     strings.ToUpper(req.Status),
		MinRating:  req.MinRating,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if publicOnly {
		filter.Status = string(models.PropertyReviewApproved)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Submit records a public rating pending moderation.
func (s *PropertyReviewService) Submit(ctx context.Context, req SubmitPropertyReviewRequest) (*models.PropertyReview, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	review := &models.PropertyReview{
		PropertyID:   req.PropertyID,
		ReviewerName: req.ReviewerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
		Status:       models.PropertyReviewPending,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit review")
	}
	return review, nil
}

// Moderate approves or hides a pending review.
func (s *PropertyReviewService) Moderate(ctx context.Context, id, status string) (*models.PropertyReview, error) {
	next := models.PropertyReviewStatus(strings.ToUpper(status))
	if next != models.PropertyReviewApproved && next != models.PropertyReviewHidden {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be APPROVED or HIDDEN")
	}
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to moderate review")
	}
	review.Status = next
	return review, nil
}

// RatingSummary aggregates approved ratings for one property.
func (s *PropertyReviewService) RatingSummary(ctx context.Context, propertyID string) (*models.PropertyRatingSummary, error) {
	if propertyID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "property_id required")
	}
	summary, err := s.repo.RatingSummary(ctx, propertyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate ratings")
	}
	return summary, nil
}
