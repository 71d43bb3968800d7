package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/response"
)

// UserLoader resolves the current user for permission checks.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RBAC enforces role-based access control for routes.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		allowSelf := false
		allowedRoles := make(map[models.UserRole]struct{})

		for _, a := range allowed {
			if a == "SELF" {
				allowSelf = true
				continue
			}
			allowedRoles[models.UserRole(a)] = struct{}{}
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

// Permission gates a route on a staff permission key. Landlords and
// superadmins implicitly pass. Managers have full operational access but
// are re-checked against the users table so a deactivation locks them out
// immediately. Sub-admins are additionally checked against their stored
// grants, which the landlord can change at any time.
func Permission(key string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		switch claims.Role {
		case models.RoleSuperAdmin, models.RoleLandlord:
			c.Next()
			return
		case models.RoleManager:
			user, err := users.FindByID(c.Request.Context(), claims.UserID)
			if err != nil {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "unable to verify permissions"))
				c.Abort()
				return
			}
			if !user.Active {
				response.Error(c, appErrors.ErrForbidden)
				c.Abort()
				return
			}
			c.Next()
			return
		case models.RoleSubAdmin:
			user, err := users.FindByID(c.Request.Context(), claims.UserID)
			if err != nil {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "unable to verify permissions"))
				c.Abort()
				return
			}
			if !user.Active || !user.HasPermission(key) {
				response.Error(c, appErrors.ErrForbidden)
				c.Abort()
				return
			}
			c.Next()
			return
		default:
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
		}
	}
}
