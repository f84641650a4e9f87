package middleware

import (
	"net/http"

	"churrasco/internal/domain"
	"churrasco/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures that the authenticated user has the specified role
func RequireRole(requiredRole domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		if r, _ := role.(string); r != string(requiredRole) {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

// ProfessionalOnly guards routes that manage services, bookings received and
// subscriptions.
func ProfessionalOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleProfessional)
}
