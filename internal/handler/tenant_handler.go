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

// TenantHandler handles tenant lifecycle endpoints.
type TenantHandler struct {
	service *service.TenantService
}

// NewTenantHandler constructs a tenant handler.
func NewTenantHandler(svc *service.TenantService) *TenantHandler {
	return &TenantHandler{service: svc}
}

// List godoc
// @Summary List tenants
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param property_id query string false "Property ID"
// @Param room_id query string false "Room ID"
// @Param active query bool false "Active filter"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	req := service.TenantListRequest{
		PropertyID: c.Query("property_id"),
		RoomID:     c.Query("room_id"),
		Search:     c.Query("search"),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		req.Active = &active
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		req.PageSize = limit
	}
	tenants, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tenants, pagination)
}

// Get godoc
// @Summary Get one tenant
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Success 200 {object} response.Envelope
// @Router /tenants/{id} [get]
func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tenant, nil)
}

// Create godoc
// @Summary Onboard a tenant into a room
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateTenantRequest true "Tenant payload"
// @Success 201 {object} response.Envelope
// @Router /tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req service.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tenant, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tenant)
}

// Update godoc
// @Summary Update tenant details
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param payload body service.UpdateTenantRequest true "Tenant payload"
// @Success 200 {object} response.Envelope
// @Router /tenants/{id} [put]
func (h *TenantHandler) Update(c *gin.Context) {
	var req service.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tenant, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tenant, nil)
}

// AssignRoomRequest moves a tenant to another room.
type AssignRoomRequest struct {
	RoomID string `json:"room_id" binding:"required"`
}

// AssignRoom godoc
// @Summary Move a tenant to a different room
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param payload body AssignRoomRequest true "Target room"
// @Success 200 {object} response.Envelope
// @Router /tenants/{id}/room [put]
func (h *TenantHandler) AssignRoom(c *gin.Context) {
	var req AssignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tenant, err := h.service.AssignRoom(c.Request.Context(), c.Param("id"), req.RoomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tenant, nil)
}

// MoveOutRequest records a departure date.
type MoveOutRequest struct {
	MovedOutAt *time.Time `json:"moved_out_at"`
}

// MoveOut godoc
// @Summary Mark a tenant as moved out
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param payload body MoveOutRequest false "Departure date, defaults to now"
// @Success 204
// @Router /tenants/{id}/move-out [post]
func (h *TenantHandler) MoveOut(c *gin.Context) {
	var req MoveOutRequest
	_ = c.ShouldBindJSON(&req)
	movedOutAt := time.Now().UTC()
	if req.MovedOutAt != nil {
		movedOutAt = req.MovedOutAt.UTC()
	}
	if err := h.service.MoveOut(c.Request.Context(), c.Param("id"), movedOutAt); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
