package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/service"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/response"
)

// VisitHandler handles viewing appointment endpoints.
type VisitHandler struct {
	service *service.VisitService
}

// NewVisitHandler constructs a visit handler.
func NewVisitHandler(svc *service.VisitService) *VisitHandler {
	return &VisitHandler{service: svc}
}

// Schedule godoc
// @Summary Request a property viewing slot
// @Tags Visits
// @Accept json
// @Produce json
// @Param payload body service.ScheduleVisitRequest true "Visit payload"
// @Success 201 {object} response.Envelope
// @Router /public/visits [post]
func (h *VisitHandler) Schedule(c *gin.Context) {
	var req service.ScheduleVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	visit, err := h.service.Schedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, visit)
}

// List godoc
// @Summary List visit requests
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Param property_id query string false "Property ID"
// @Param status query string false "Status"
// @Param from query string false "Start date YYYY-MM-DD"
// @Param to query string false "End date YYYY-MM-DD"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /visits [get]
func (h *VisitHandler) List(c *gin.Context) {
	req := service.VisitListRequest{
		PropertyID: c.Query("property_id"),
		Status:     c.Query("status"),
	}
	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		req.From = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		req.To = &to
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		req.PageSize = limit
	}
	visits, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, visits, pagination)
}

// VisitStatusRequest carries the target workflow state.
type VisitStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Confirm, complete or cancel a visit
// @Tags Visits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Visit ID"
// @Param payload body VisitStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /visits/{id}/status [put]
func (h *VisitHandler) UpdateStatus(c *gin.Context) {
	var req VisitStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	visit, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, visit, nil)
}
