package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/registry"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/jobs"
)

type documentRegistry interface {
	ListDocuments(ctx context.Context, managerID string) ([]models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	CreateDocument(ctx context.Context, req registry.CreateDocumentRequest) (*models.Document, error)
	SubmitDocumentReview(ctx context.Context, documentID string, req registry.ReviewRequest) (*models.Review, error)
	SubmitTenantReview(ctx context.Context, documentID, tenantID string, req registry.ReviewRequest) (*models.Review, error)
}

type overlayStore interface {
	Get(ctx context.Context, managerID, documentID string) (*models.OverlayEntry, error)
	Put(ctx context.Context, managerID, documentID string, entry models.OverlayEntry) error
	All(ctx context.Context, managerID string) (map[string]models.OverlayEntry, error)
	Delete(ctx context.Context, managerID, documentID string) error
}

// DocumentService reconciles registry documents with the locally persisted
// review overlay. The registry is authoritative for document content; the
// overlay preserves decisions the registry has acknowledged but may not yet
// reflect in its own reads.
type DocumentService struct {
	registry  documentRegistry
	overlay   overlayStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	resync    *jobs.Queue
	metrics   *MetricsService
}

// NewDocumentService constructs the service.
func NewDocumentService(reg documentRegistry, overlay overlayStore, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DocumentService{
		registry:  reg,
		overlay:   overlay,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
	svc.validator.RegisterValidation("decision", func(fl validator.FieldLevel) bool {
		_, ok := normalizeDecision(fl.Field().String())
		return ok
	})
	return svc
}

// normalizeDecision maps a review action to its stored form. Clients send
// the imperative "accept"/"reject" while the registry stores the past
// tense, so both spellings are taken.
func normalizeDecision(raw string) (models.ReviewDecision, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "accept", string(models.ReviewAccepted):
		return models.ReviewAccepted, true
	case "reject", string(models.ReviewRejected):
		return models.ReviewRejected, true
	default:
		return "", false
	}
}

// SetResyncQueue attaches the queue that replaces provisional overlay records
// with the registry's stored ones. Wired after construction because the queue
// handler is a method of this service.
func (s *DocumentService) SetResyncQueue(q *jobs.Queue) {
	s.resync = q
}

// SetMetrics attaches overlay and provisional-review instrumentation. The
// recording methods tolerate a nil service, so wiring is optional.
func (s *DocumentService) SetMetrics(m *MetricsService) {
	s.metrics = m
}

// CreateDocumentRequest describes a new document distribution.
type CreateDocumentRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	PropertyID  string   `json:"property_id" validate:"required"`
	FilePath    string   `json:"file_path" validate:"required"`
	SendToAll   bool     `json:"send_to_all"`
	Tenants     []string `json:"tenants"`
}

// SubmitReviewRequest describes an accept/reject decision. TenantID is set
// only for per-tenant documents.
type SubmitReviewRequest struct {
	DocumentID  string `json:"document_id" validate:"required"`
	TenantID    string `json:"tenant_id"`
	Action      string `json:"action" validate:"required,decision"`
	ReviewNotes string `json:"review_notes"`
	ReviewerID  string `json:"reviewer_id" validate:"required"`
}

// ResyncPayload identifies a provisional overlay record awaiting the
// registry's authoritative copy.
type ResyncPayload struct {
	ManagerID  string
	DocumentID string
	TenantID   string
}

// List returns the manager's documents with overlay decisions applied and
// statuses derived.
func (s *DocumentService) List(ctx context.Context, managerID string) ([]models.Document, error) {
	docs, err := s.registry.ListDocuments(ctx, managerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.overlay.All(ctx, managerID)
	if err != nil {
		s.logger.Warn("review overlay unavailable, serving registry data only",
			zap.String("manager_id", managerID), zap.Error(err))
		entries = nil
	}
	out := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		var entry *models.OverlayEntry
		if e, ok := entries[doc.ID]; ok {
			entry = &e
		}
		merged, stale := s.merge(doc, entry)
		if stale {
			if err := s.overlay.Delete(ctx, managerID, doc.ID); err != nil {
				s.logger.Warn("failed to drop stale overlay entry",
					zap.String("document_id", doc.ID), zap.Error(err))
			}
		}
		out = append(out, merged)
	}
	return out, nil
}

// Get returns a single reconciled document.
func (s *DocumentService) Get(ctx context.Context, managerID, documentID string) (*models.Document, error) {
	doc, err := s.registry.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	entry, err := s.overlay.Get(ctx, managerID, documentID)
	if err != nil {
		s.logger.Warn("review overlay unavailable, serving registry data only",
			zap.String("document_id", documentID), zap.Error(err))
		entry = nil
	}
	merged, stale := s.merge(*doc, entry)
	if stale {
		if err := s.overlay.Delete(ctx, managerID, documentID); err != nil {
			s.logger.Warn("failed to drop stale overlay entry",
				zap.String("document_id", documentID), zap.Error(err))
		}
	}
	return &merged, nil
}

// Create distributes a new document through the registry.
func (s *DocumentService) Create(ctx context.Context, managerID string, req CreateDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.SendToAll && len(req.Tenants) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenants required when not sending to all")
	}
	doc, err := s.registry.CreateDocument(ctx, registry.CreateDocumentRequest{
		Title:       req.Title,
		Description: req.Description,
		PropertyID:  req.PropertyID,
		FilePath:    req.FilePath,
		SendToAll:   req.SendToAll,
		Tenants:     req.Tenants,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("document distributed",
		zap.String("document_id", doc.ID),
		zap.String("manager_id", managerID),
		zap.Bool("send_to_all", doc.SendToAll))
	merged, _ := s.merge(*doc, nil)
	return &merged, nil
}

// SubmitReview records an accept/reject decision. Exactly one registry call
// is made; the overlay is written only after the registry confirms. When the
// registry acknowledges without echoing the stored review, a provisional one
// is synthesized locally and queued for resync.
func (s *DocumentService) SubmitReview(ctx context.Context, managerID string, req SubmitReviewRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	action, _ := normalizeDecision(req.Action)

	doc, err := s.registry.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.SendToAll && req.TenantID != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant selection is not allowed for broadcast documents")
	}
	if !doc.SendToAll && req.TenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant selection is required for per-tenant documents")
	}

	entry, err := s.overlay.Get(ctx, managerID, req.DocumentID)
	if err != nil {
		s.logger.Warn("review overlay unavailable during submission",
			zap.String("document_id", req.DocumentID), zap.Error(err))
		entry = nil
	}
	merged, stale := s.merge(*doc, entry)
	if stale {
		if err := s.overlay.Delete(ctx, managerID, req.DocumentID); err != nil {
			s.logger.Warn("failed to drop stale overlay entry",
				zap.String("document_id", req.DocumentID), zap.Error(err))
		}
		s.metrics.RecordOverlayOperation("delete_stale")
		entry = nil
		merged, _ = s.merge(*doc, nil)
	}

	if doc.SendToAll {
		if merged.Review != nil {
			return nil, appErrors.Clone(appErrors.ErrReviewFinal, "document has already been reviewed")
		}
	} else {
		sub := findSubmission(merged.FilledFiles, req.TenantID)
		if sub == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no submission found for tenant")
		}
		if sub.Review != nil {
			return nil, appErrors.Clone(appErrors.ErrReviewFinal, "submission has already been reviewed")
		}
	}

	wire := registry.ReviewRequest{Action: string(action), ReviewNotes: req.ReviewNotes}
	var echoed *models.Review
	if doc.SendToAll {
		echoed, err = s.registry.SubmitDocumentReview(ctx, req.DocumentID, wire)
	} else {
		echoed, err = s.registry.SubmitTenantReview(ctx, req.DocumentID, req.TenantID, wire)
	}
	if err != nil {
		return nil, err
	}

	review := echoed
	provisional := review == nil
	if provisional {
		review = &models.Review{
			Status:      action,
			ReviewedAt:  s.now().UTC(),
			ReviewedBy:  req.ReviewerID,
			ReviewNotes: req.ReviewNotes,
			Provisional: true,
		}
	}

	updated := models.OverlayEntry{SendToAll: doc.SendToAll}
	if entry != nil {
		updated = *entry
	}
	if doc.SendToAll {
		updated.Review = review
	} else {
		updated.FilledFiles = upsertOverlayReview(updated.FilledFiles, req.TenantID, review)
	}
	if err := s.overlay.Put(ctx, managerID, req.DocumentID, updated); err != nil {
		// The decision already landed upstream; losing the overlay record
		// costs read consistency, not correctness.
		s.logger.Error("failed to persist review overlay",
			zap.String("document_id", req.DocumentID),
			zap.String("manager_id", managerID),
			zap.Error(err))
	} else {
		s.metrics.RecordOverlayOperation("put")
	}

	if provisional {
		s.metrics.ProvisionalReviewOpened()
		s.enqueueResync(managerID, req.DocumentID, req.TenantID)
	}

	final, _ := s.merge(*doc, &updated)
	return &final, nil
}

func (s *DocumentService) enqueueResync(managerID, documentID, tenantID string) {
	if s.resync == nil {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "review-resync",
		Payload: ResyncPayload{ManagerID: managerID, DocumentID: documentID, TenantID: tenantID},
	}
	if err := s.resync.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue review resync",
			zap.String("document_id", documentID), zap.Error(err))
	}
}

// HandleResyncJob replaces a provisional overlay review with the registry's
// stored record. Returns an error while the registry has not materialized the
// review yet so the queue retries.
func (s *DocumentService) HandleResyncJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(ResyncPayload)
	if !ok {
		return appErrors.Clone(appErrors.ErrInternal, "unexpected resync payload type")
	}
	doc, err := s.registry.GetDocument(ctx, payload.DocumentID)
	if err != nil {
		return err
	}

	var authoritative *models.Review
	if doc.SendToAll {
		authoritative = doc.Review
	} else if sub := findSubmission(doc.FilledFiles, payload.TenantID); sub != nil {
		authoritative = sub.Review
	}
	if authoritative == nil {
		s.metrics.RecordResyncRetry()
		return appErrors.Clone(appErrors.ErrNotFound, "registry has not materialized the review yet")
	}

	entry, err := s.overlay.Get(ctx, payload.ManagerID, payload.DocumentID)
	if err != nil {
		return err
	}
	updated := models.OverlayEntry{SendToAll: doc.SendToAll}
	if entry != nil && entry.SendToAll == doc.SendToAll {
		updated = *entry
	}
	record := *authoritative
	record.Provisional = false
	if doc.SendToAll {
		updated.Review = &record
	} else {
		updated.FilledFiles = upsertOverlayReview(updated.FilledFiles, payload.TenantID, &record)
	}
	if err := s.overlay.Put(ctx, payload.ManagerID, payload.DocumentID, updated); err != nil {
		return err
	}
	s.metrics.RecordOverlayOperation("put")
	s.metrics.ProvisionalReviewClosed()
	s.logger.Info("provisional review replaced with registry record",
		zap.String("document_id", payload.DocumentID),
		zap.String("tenant_id", payload.TenantID))
	return nil
}

// merge applies the overlay entry onto a registry document and derives its
// status. The second return reports a distribution-mode mismatch, meaning the
// overlay entry is stale and should be dropped by the caller.
func (s *DocumentService) merge(doc models.Document, entry *models.OverlayEntry) (models.Document, bool) {
	if entry != nil && entry.SendToAll != doc.SendToAll {
		s.logger.Warn("overlay distribution mode differs from registry, discarding overlay entry",
			zap.String("document_id", doc.ID),
			zap.Bool("registry_send_to_all", doc.SendToAll),
			zap.Bool("overlay_send_to_all", entry.SendToAll))
		entry = nil
		doc.Status = string(DeriveStatus(doc))
		return doc, true
	}
	if entry != nil {
		if doc.SendToAll {
			doc.Review = resolveReview(doc.Review, entry.Review)
		} else {
			files := make([]models.Submission, len(doc.FilledFiles))
			copy(files, doc.FilledFiles)
			for i := range files {
				overlayReview := entry.TenantReview(files[i].UploadedBy.TenantID)
				files[i].Review = resolveReview(files[i].Review, overlayReview)
			}
			doc.FilledFiles = files
		}
	}
	doc.Status = string(DeriveStatus(doc))
	return doc, false
}

// resolveReview picks between the registry's stored review and the overlay's.
// The overlay wins except when it is provisional and the registry has since
// stored its own record.
func resolveReview(server, overlay *models.Review) *models.Review {
	if overlay == nil {
		return server
	}
	if overlay.Provisional && server != nil {
		return server
	}
	return overlay
}

// DeriveStatus computes a document's effective status. An explicit review
// decides it outright; broadcast documents fall back to the registry status;
// per-tenant documents infer from submission reviews, with any rejection
// taking precedence.
func DeriveStatus(doc models.Document) models.DocumentStatus {
	if doc.Review != nil {
		return models.DocumentStatus(doc.Review.Status)
	}
	if doc.SendToAll {
		switch st := models.DocumentStatus(doc.Status); st {
		case models.DocumentStatusPending, models.DocumentStatusSubmitted, models.DocumentStatusPartial,
			models.DocumentStatusAccepted, models.DocumentStatusRejected:
			return st
		}
	}
	total := len(doc.FilledFiles)
	if total == 0 {
		return models.DocumentStatusPending
	}
	var accepted, rejected int
	for _, sub := range doc.FilledFiles {
		if sub.Review == nil {
			continue
		}
		switch sub.Review.Status {
		case models.ReviewAccepted:
			accepted++
		case models.ReviewRejected:
			rejected++
		}
	}
	switch {
	case rejected > 0:
		return models.DocumentStatusRejected
	case accepted == 0:
		return models.DocumentStatusSubmitted
	case accepted == total:
		return models.DocumentStatusAccepted
	default:
		return models.DocumentStatusPartial
	}
}

func findSubmission(files []models.Submission, tenantID string) *models.Submission {
	for i := range files {
		if files[i].UploadedBy.TenantID == tenantID {
			return &files[i]
		}
	}
	return nil
}

func upsertOverlayReview(files []models.OverlayFilledFile, tenantID string, review *models.Review) []models.OverlayFilledFile {
	for i := range files {
		if files[i].TenantID == tenantID {
			files[i].Review = review
			return files
		}
	}
	return append(files, models.OverlayFilledFile{TenantID: tenantID, Review: review})
}
