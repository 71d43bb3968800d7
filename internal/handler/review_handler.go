package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/service"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/response"
)

// ReviewHandler handles property rating and review endpoints.
type ReviewHandler struct {
	service *service.PropertyReviewService
}

// NewReviewHandler constructs a review handler.
func NewReviewHandler(svc *service.PropertyReviewService) *ReviewHandler {
	return &ReviewHandler{service: svc}
}

func reviewListRequest(c *gin.Context) service.PropertyReviewListRequest {
	req := service.PropertyReviewListRequest{
		PropertyID: c.Query("property_id"),
		Status:     c.Query("status"),
	}
	if rating, err := strconv.Atoi(c.Query("min_rating")); err == nil {
		req.MinRating = rating
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		req.PageSize = limit
	}
	return req
}

// PublicList godoc
// @Summary Browse approved reviews of a property
// @Tags Public
// @Produce json
// @Param property_id query string true "Property ID"
// @Param min_rating query int false "Minimum rating"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /public/reviews [get]
func (h *ReviewHandler) PublicList(c *gin.Context) {
	reviews, pagination, err := h.service.List(c.Request.Context(), reviewListRequest(c), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews, pagination)
}

// List godoc
// @Summary List reviews including pending and hidden
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param property_id query string true "Property ID"
// @Param status query string false "Moderation status"
// @Param min_rating query int false "Minimum rating"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	reviews, pagination, err := h.service.List(c.Request.Context(), reviewListRequest(c), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews, pagination)
}

// Submit godoc
// @Summary Submit a property review
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body service.SubmitPropertyReviewRequest true "Review payload"
// @Success 201 {object} response.Envelope
// @Router /public/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req service.SubmitPropertyReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	review, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// ModerateRequest carries the moderation verdict.
type ModerateRequest struct {
	Status string `json:"status" binding:"required"`
}

// Moderate godoc
// @Summary Approve or hide a pending review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param payload body ModerateRequest true "Verdict payload"
// @Success 200 {object} response.Envelope
// @Router /reviews/{id}/moderate [put]
func (h *ReviewHandler) Moderate(c *gin.Context) {
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	review, err := h.service.Moderate(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review, nil)
}

// RatingSummary godoc
// @Summary Rating average and distribution for a property
// @Tags Public
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} response.Envelope
// @Router /public/properties/{id}/rating [get]
func (h *ReviewHandler) RatingSummary(c *gin.Context) {
	summary, err := h.service.RatingSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
