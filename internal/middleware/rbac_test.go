package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
)

type userLoaderStub struct {
	users map[string]*models.User
}

func (s *userLoaderStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, errors.New("no such user")
	}
	return user, nil
}

func permissionRouter(loader *userLoaderStub, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, claims)
	})
	r.GET("/documents", Permission(models.PermissionDocuments, loader), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestPermissionLandlordPassesWithoutLookup(t *testing.T) {
	loader := &userLoaderStub{users: map[string]*models.User{}}
	r := permissionRouter(loader, &models.JWTClaims{UserID: "landlord-1", Role: models.RoleLandlord})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/documents", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPermissionManagerHasOperationalAccess(t *testing.T) {
	loader := &userLoaderStub{users: map[string]*models.User{
		"mgr-1": {ID: "mgr-1", Role: models.RoleManager, Active: true},
	}}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/documents", nil)
	permissionRouter(loader, &models.JWTClaims{UserID: "mgr-1", Role: models.RoleManager}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPermissionDeactivatedManagerForbidden(t *testing.T) {
	loader := &userLoaderStub{users: map[string]*models.User{
		"mgr-1": {ID: "mgr-1", Role: models.RoleManager, Active: false},
	}}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/documents", nil)
	permissionRouter(loader, &models.JWTClaims{UserID: "mgr-1", Role: models.RoleManager}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPermissionSubAdminCheckedAgainstGrants(t *testing.T) {
	loader := &userLoaderStub{users: map[string]*models.User{
		"sub-1": {ID: "sub-1", Role: models.RoleSubAdmin, Active: true, Permissions: []string{models.PermissionDocuments}},
		"sub-2": {ID: "sub-2", Role: models.RoleSubAdmin, Active: true, Permissions: []string{models.PermissionRooms}},
	}}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/documents", nil)
	permissionRouter(loader, &models.JWTClaims{UserID: "sub-1", Role: models.RoleSubAdmin}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/documents", nil)
	permissionRouter(loader, &models.JWTClaims{UserID: "sub-2", Role: models.RoleSubAdmin}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPermissionDeactivatedSubAdminForbidden(t *testing.T) {
	loader := &userLoaderStub{users: map[string]*models.User{
		"sub-1": {ID: "sub-1", Role: models.RoleSubAdmin, Active: false, Permissions: []string{models.PermissionDocuments}},
	}}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/documents", nil)
	permissionRouter(loader, &models.JWTClaims{UserID: "sub-1", Role: models.RoleSubAdmin}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPermissionTenantForbidden(t *testing.T) {
	loader := &userLoaderStub{users: map[string]*models.User{}}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/documents", nil)
	permissionRouter(loader, &models.JWTClaims{UserID: "tenant-1", Role: models.RoleTenant}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACSelfMatchesPathParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleTenant})
	})
	r.GET("/users/:id", RBAC("SELF"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/users/user-1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/users/user-2", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
