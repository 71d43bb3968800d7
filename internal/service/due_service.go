package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/export"
)

type dueRepository interface {
	List(ctx context.Context, filter models.DueFilter) ([]models.DueDetail, int, error)
	GetByID(ctx context.Context, id string) (*models.DueDetail, error)
	Create(ctx context.Context, due *models.Due) error
	ExistsForPeriod(ctx context.Context, tenantID, period string) (bool, error)
	RecordPayment(ctx context.Context, due *models.Due) error
}

type receiptRenderer interface {
	RenderReceipt(r export.Receipt) ([]byte, error)
}

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// DueService manages monthly rent dues, payments and receipts.
type DueService struct {
	repo      dueRepository
	csv       csvRenderer
	pdf       receiptRenderer
	audit     auditRecorder
	issuer    string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDueService constructs the service. issuer is printed on receipts.
func NewDueService(repo dueRepository, csv csvRenderer, pdf receiptRenderer, audit auditRecorder, issuer string, validate *validator.Validate, logger *zap.Logger) *DueService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DueService{repo: repo, csv: csv, pdf: pdf, audit: audit, issuer: issuer, validator: validate, logger: logger}
	svc.validator.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
		switch models.PaymentMethod(strings.ToUpper(fl.Field().String())) {
		case models.PaymentMethodCash, models.PaymentMethodUPI, models.PaymentMethodBank, models.PaymentMethodOnline:
			return true
		default:
			return false
		}
	})
	return svc
}

// CreateDueRequest raises a due for one tenant and period.
type CreateDueRequest struct {
	PropertyID string    `json:"property_id" validate:"required"`
	TenantID   string    `json:"tenant_id" validate:"required"`
	Period     string    `json:"period" validate:"required"`
	Amount     int64     `json:"amount" validate:"gt=0"`
	DueDate    time.Time `json:"due_date" validate:"required"`
}

// RecordPaymentRequest settles part or all of a due.
type RecordPaymentRequest struct {
	Amount  int64  `json:"amount" validate:"gt=0"`
	Method  string `json:"method" validate:"required,paymentmethod"`
	ActorID string `json:"actor_id" validate:"required"`
}

// DueListRequest filters due listings.
type DueListRequest struct {
	PropertyID  string `json:"property_id"`
	TenantID    string `json:"tenant_id"`
	Period      string `json:"period"`
	Status      string `json:"status"`
	OverdueOnly bool   `json:"overdue_only"`
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
}

// List returns dues with tenant and room labels.
func (s *DueService) List(ctx context.Context, req DueListRequest) ([]models.DueDetail, *models.Pagination, error) {
	filter := models.DueFilter{
		PropertyID:  req.PropertyID,
		TenantID:    req.TenantID,
		Period:      req.Period,
		Status:      strings.ToUpper(req.Status),
		OverdueOnly: req.OverdueOnly,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list dues")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Get loads one due.
func (s *DueService) Get(ctx context.Context, id string) (*models.DueDetail, error) {
	due, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "due not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load due")
	}
	return due, nil
}

// Create raises a due. One due per tenant per period.
func (s *DueService) Create(ctx context.Context, req CreateDueRequest) (*models.Due, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !periodPattern.MatchString(req.Period) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "period must be formatted YYYY-MM")
	}
	exists, err := s.repo.ExistsForPeriod(ctx, req.TenantID, req.Period)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing due")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "due already exists for this tenant and period")
	}
	due := &models.Due{
		PropertyID: req.PropertyID,
		TenantID:   req.TenantID,
		Period:     req.Period,
		Amount:     req.Amount,
		Status:     models.DueStatusPending,
		DueDate:    req.DueDate,
	}
	if err := s.repo.Create(ctx, due); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create due")
	}
	return due, nil
}

// RecordPayment settles a due. Overpayment is rejected; full settlement
// assigns a receipt number.
func (s *DueService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*models.Due, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	due := detail.Due
	if due.Status == models.DueStatusPaid {
		return nil, appErrors.Clone(appErrors.ErrConflict, "due is already settled")
	}
	if req.Amount > due.Outstanding() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment exceeds outstanding amount")
	}

	now := time.Now().UTC()
	method := models.PaymentMethod(strings.ToUpper(req.Method))
	due.PaidAmount += req.Amount
	due.Method = &method
	due.PaidAt = &now
	if due.Outstanding() == 0 {
		due.Status = models.DueStatusPaid
		receiptNo := fmt.Sprintf("RCPT-%s-%s", due.Period, due.ID[:8])
		due.ReceiptNo = &receiptNo
	} else {
		due.Status = models.DueStatusPartial
	}

	if err := s.repo.RecordPayment(ctx, &due); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	if s.audit != nil {
		payload, _ := json.Marshal(map[string]interface{}{"amount": req.Amount, "method": method, "status": due.Status})
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &req.ActorID,
			Action:     models.AuditActionDuePayment,
			Resource:   "due",
			ResourceID: &due.ID,
			NewValues:  payload,
		}); err != nil {
			s.logger.Warn("failed to record payment audit log", zap.Error(err))
		}
	}
	return &due, nil
}

// Receipt renders the rent receipt PDF for a fully settled due.
func (s *DueService) Receipt(ctx context.Context, id string) ([]byte, string, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if detail.Status != models.DueStatusPaid || detail.ReceiptNo == nil {
		return nil, "", appErrors.Clone(appErrors.ErrConflict, "receipt available only for settled dues")
	}
	room := ""
	if detail.RoomNumber != nil {
		room = *detail.RoomNumber
	}
	method := ""
	if detail.Method != nil {
		method = string(*detail.Method)
	}
	paidAt := ""
	if detail.PaidAt != nil {
		paidAt = detail.PaidAt.Format("02 Jan 2006")
	}
	payload, err := s.pdf.RenderReceipt(export.Receipt{
		Issuer:     s.issuer,
		ReceiptNo:  *detail.ReceiptNo,
		TenantName: detail.TenantName,
		Property:   detail.PropertyID,
		Room:       room,
		Period:     detail.Period,
		Amount:     fmt.Sprintf("Rs. %d", detail.Amount),
		PaidAt:     paidAt,
		Method:     method,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return payload, fmt.Sprintf("%s.pdf", *detail.ReceiptNo), nil
}

// ExportCSV renders the filtered dues as a CSV statement.
func (s *DueService) ExportCSV(ctx context.Context, req DueListRequest) ([]byte, string, error) {
	filter := models.DueFilter{
		PropertyID:  req.PropertyID,
		TenantID:    req.TenantID,
		Period:      req.Period,
		Status:      strings.ToUpper(req.Status),
		OverdueOnly: req.OverdueOnly,
		Page:        1,
		PageSize:    1000,
	}
	rows, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dues for export")
	}
	dataset := export.Dataset{
		Headers: []string{"Period", "Tenant", "Room", "Amount", "Paid", "Outstanding", "Status", "Due Date"},
	}
	for _, d := range rows {
		room := ""
		if d.RoomNumber != nil {
			room = *d.RoomNumber
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Period":      d.Period,
			"Tenant":      d.TenantName,
			"Room":        room,
			"Amount":      fmt.Sprintf("%d", d.Amount),
			"Paid":        fmt.Sprintf("%d", d.PaidAmount),
			"Outstanding": fmt.Sprintf("%d", d.Outstanding()),
			"Status":      string(d.Status),
			"Due Date":    d.DueDate.Format("2006-01-02"),
		})
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render due export")
	}
	filename := fmt.Sprintf("dues-%s.csv", time.Now().UTC().Format("20060102"))
	return payload, filename, nil
}
