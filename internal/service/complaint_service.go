package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
)

type complaintRepository interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error)
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	Create(ctx context.Context, complaint *models.Complaint) error
	UpdateStatus(ctx context.Context, complaint *models.Complaint) error
}

type photoStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

type photoSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ComplaintService handles tenant complaints and their resolution workflow.
type ComplaintService struct {
	repo      complaintRepository
	storage   photoStorage
	signer    photoSigner
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewComplaintService constructs the service.
func NewComplaintService(repo complaintRepository, storage photoStorage, signer photoSigner, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ComplaintService{repo: repo, storage: storage, signer: signer, audit: audit, validator: validate, logger: logger}
	svc.validator.RegisterValidation("complaintcategory", func(fl validator.FieldLevel) bool {
		switch models.ComplaintCategory(strings.ToUpper(fl.Field().String())) {
		case models.ComplaintCategoryElectrical, models.ComplaintCategoryPlumbing,
			models.ComplaintCategoryCleaning, models.ComplaintCategoryNoise, models.ComplaintCategoryOther:
			return true
		default:
			return false
		}
	})
	return svc
}

// CreateComplaintRequest describes a new complaint.
type CreateComplaintRequest struct {
	PropertyID  string `json:"property_id" validate:"required"`
	TenantID    string `json:"tenant_id" validate:"required"`
	Category    string `json:"category" validate:"required,complaintcategory"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// UpdateComplaintStatusRequest advances the workflow.
type UpdateComplaintStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	ResolutionNote *string `json:"resolution_note"`
	ActorID        string  `json:"actor_id" validate:"required"`
}

// ComplaintListRequest filters complaints.
type ComplaintListRequest struct {
	PropertyID string `json:"property_id"`
	TenantID   string `json:"tenant_id"`
	Status     string `json:"status"`
	Category   string `json:"category"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// List returns complaints with pagination.
func (s *ComplaintService) List(ctx context.Context, req ComplaintListRequest) ([]models.Complaint, *models.Pagination, error) {
	filter := models.ComplaintFilter{
		PropertyID: req.PropertyID,
		TenantID:   req.TenantID,
		Status:     strings.ToUpper(req.Status),
		Category:   strings.ToUpper(req.Category),
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
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Get loads one complaint.
func (s *ComplaintService) Get(ctx context.Context, id string) (*models.Complaint, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	return complaint, nil
}

// Create registers a new complaint in OPEN state.
func (s *ComplaintService) Create(ctx context.Context, req CreateComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	complaint := &models.Complaint{
		PropertyID:  req.PropertyID,
		TenantID:    req.TenantID,
		Category:    models.ComplaintCategory(strings.ToUpper(req.Category)),
		Subject:     req.Subject,
		Description: req.Description,
		Status:      models.ComplaintStatusOpen,
	}
	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}
	return complaint, nil
}

// AttachPhoto stores an uploaded photo against the complaint.
func (s *ComplaintService) AttachPhoto(ctx context.Context, id, originalName string, r io.Reader) (*models.Complaint, error) {
	complaint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if complaint.Status == models.ComplaintStatusResolved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "complaint is already resolved")
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported photo format")
	}
	filename := fmt.Sprintf("complaints/%s-%s%s", id, uuid.NewString(), ext)
	path, err := s.storage.SaveStream(filename, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	previous := complaint.PhotoPath
	complaint.PhotoPath = &path
	if err := s.repo.UpdateStatus(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach photo")
	}
	if previous != nil && *previous != path {
		if err := s.storage.Delete(*previous); err != nil {
			s.logger.Warn("failed to remove replaced photo", zap.String("path", *previous), zap.Error(err))
		}
	}
	return complaint, nil
}

// PhotoURL issues a signed download link for the complaint photo.
func (s *ComplaintService) PhotoURL(ctx context.Context, id string) (string, time.Time, error) {
	complaint, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if complaint.PhotoPath == nil {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "complaint has no photo")
	}
	url, expiresAt, err := s.signer.Generate(complaint.ID, *complaint.PhotoPath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo url")
	}
	return url, expiresAt, nil
}

// UpdateStatus advances the complaint workflow. Resolution requires a note.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id string, req UpdateComplaintStatusRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	next := models.ComplaintStatus(strings.ToUpper(req.Status))

	complaint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !validComplaintTransition(complaint.Status, next) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot move complaint from %s to %s", complaint.Status, next))
	}

	previous := complaint.Status
	complaint.Status = next
	if next == models.ComplaintStatusResolved {
		if req.ResolutionNote == nil || *req.ResolutionNote == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "resolution_note required to resolve a complaint")
		}
		now := time.Now().UTC()
		complaint.ResolutionNote = req.ResolutionNote
		complaint.ResolvedBy = &req.ActorID
		complaint.ResolvedAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update complaint status")
	}

	if s.audit != nil {
		payload, _ := json.Marshal(map[string]string{"from": string(previous), "to": string(next)})
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &req.ActorID,
			Action:     models.AuditActionComplaintState,
			Resource:   "complaint",
			ResourceID: &complaint.ID,
			NewValues:  payload,
		}); err != nil {
			s.logger.Warn("failed to record complaint audit log", zap.Error(err))
		}
	}
	return complaint, nil
}

func validComplaintTransition(from, to models.ComplaintStatus) bool {
	switch from {
	case models.ComplaintStatusOpen:
		return to == models.ComplaintStatusInProgress || to == models.ComplaintStatusResolved
	case models.ComplaintStatusInProgress:
		return to == models.ComplaintStatusResolved
	default:
		return false
	}
}
