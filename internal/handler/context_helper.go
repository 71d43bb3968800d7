package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/middleware"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// landlordScope resolves the landlord id the caller operates under. Sub-admins
// act on behalf of their landlord.
func landlordScope(claims *models.JWTClaims) string {
	if claims == nil {
		return ""
	}
	if claims.Role == models.RoleSubAdmin && claims.LandlordID != "" {
		return claims.LandlordID
	}
	return claims.UserID
}
