package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/service"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/response"
)

// PropertyHandler handles property portfolio and public listing endpoints.
type PropertyHandler struct {
	service *service.PropertyService
}

// NewPropertyHandler constructs a property handler.
func NewPropertyHandler(svc *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: svc}
}

func propertyListRequest(c *gin.Context) service.PropertyListRequest {
	var req service.PropertyListRequest
	req.City = strings.TrimSpace(c.Query("city"))
	req.Type = c.Query("type")
	if rent, err := strconv.ParseInt(c.Query("max_rent"), 10, 64); err == nil {
		req.MaxRent = rent
	}
	req.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		req.PageSize = limit
	}
	return req
}

// List godoc
// @Summary List the landlord's properties
// @Tags Properties
// @Produce json
// @Security BearerAuth
// @Param city query string false "Filter by city"
// @Param type query string false "Filter by type"
// @Param max_rent query int false "Maximum rent"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /properties [get]
func (h *PropertyHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	properties, pagination, err := h.service.List(c.Request.Context(), landlordScope(claims), propertyListRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, properties, pagination)
}

// PublicListings godoc
// @Summary Browse listed properties
// @Tags Public
// @Produce json
// @Param city query string false "Filter by city"
// @Param type query string false "Filter by type"
// @Param max_rent query int false "Maximum rent"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /public/listings [get]
func (h *PropertyHandler) PublicListings(c *gin.Context) {
	properties, pagination, err := h.service.PublicListings(c.Request.Context(), propertyListRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, properties, pagination)
}

// PublicGet godoc
// @Summary Get one listed property
// @Tags Public
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/listings/{id} [get]
func (h *PropertyHandler) PublicGet(c *gin.Context) {
	property, err := h.service.PublicGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, property, nil)
}

// Get godoc
// @Summary Get one property with availability counts
// @Tags Properties
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Success 200 {object} response.Envelope
// @Router /properties/{id} [get]
func (h *PropertyHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	property, err := h.service.Get(c.Request.Context(), landlordScope(claims), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, property, nil)
}

// Create godoc
// @Summary Register a new property
// @Tags Properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreatePropertyRequest true "Property payload"
// @Success 201 {object} response.Envelope
// @Router /properties [post]
func (h *PropertyHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	property, err := h.service.Create(c.Request.Context(), landlordScope(claims), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, property)
}

// Update godoc
// @Summary Update a property
// @Tags Properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Param payload body service.UpdatePropertyRequest true "Property payload"
// @Success 200 {object} response.Envelope
// @Router /properties/{id} [put]
func (h *PropertyHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	property, err := h.service.Update(c.Request.Context(), landlordScope(claims), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, property, nil)
}

// Unlist godoc
// @Summary Remove a property from the public surface
// @Tags Properties
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Success 204
// @Router /properties/{id} [delete]
func (h *PropertyHandler) Unlist(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Unlist(c.Request.Context(), landlordScope(claims), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
