package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/service"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/response"
)

// DueHandler handles rent due and payment endpoints.
type DueHandler struct {
	service *service.DueService
}

// NewDueHandler constructs a due handler.
func NewDueHandler(svc *service.DueService) *DueHandler {
	return &DueHandler{service: svc}
}

func dueListRequest(c *gin.Context) service.DueListRequest {
	req := service.DueListRequest{
		PropertyID:  c.Query("property_id"),
		TenantID:    c.Query("tenant_id"),
		Period:      c.Query("period"),
		Status:      c.Query("status"),
		OverdueOnly: c.Query("overdue_only") == "true",
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		req.PageSize = limit
	}
	return req
}

// List godoc
// @Summary List rent dues
// @Tags Dues
// @Produce json
// @Security BearerAuth
// @Param property_id query string false "Property ID"
// @Param tenant_id query string false "Tenant ID"
// @Param period query string false "Billing period YYYY-MM"
// @Param status query string false "Status"
// @Param overdue_only query bool false "Only past-due unpaid dues"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /dues [get]
func (h *DueHandler) List(c *gin.Context) {
	dues, pagination, err := h.service.List(c.Request.Context(), dueListRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dues, pagination)
}

// Get godoc
// @Summary Get one due with tenant context
// @Tags Dues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Due ID"
// @Success 200 {object} response.Envelope
// @Router /dues/{id} [get]
func (h *DueHandler) Get(c *gin.Context) {
	due, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, due, nil)
}

// Create godoc
// @Summary Raise a rent due for a billing period
// @Tags Dues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateDueRequest true "Due payload"
// @Success 201 {object} response.Envelope
// @Router /dues [post]
func (h *DueHandler) Create(c *gin.Context) {
	var req service.CreateDueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	due, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, due)
}

// RecordPayment godoc
// @Summary Record a payment against a due
// @Tags Dues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Due ID"
// @Param payload body service.RecordPaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /dues/{id}/payments [post]
func (h *DueHandler) RecordPayment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.ActorID = claims.UserID
	due, err := h.service.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, due, nil)
}

// Receipt godoc
// @Summary Download the PDF receipt of a settled due
// @Tags Dues
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Due ID"
// @Success 200 {file} file
// @Router /dues/{id}/receipt [get]
func (h *DueHandler) Receipt(c *gin.Context) {
	payload, filename, err := h.service.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// Export godoc
// @Summary Download dues as CSV
// @Tags Dues
// @Produce text/csv
// @Security BearerAuth
// @Param property_id query string false "Property ID"
// @Param tenant_id query string false "Tenant ID"
// @Param period query string false "Billing period YYYY-MM"
// @Param status query string false "Status"
// @Success 200 {file} file
// @Router /dues/export [get]
func (h *DueHandler) Export(c *gin.Context) {
	payload, filename, err := h.service.ExportCSV(c.Request.Context(), dueListRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
