package middleware

import (
	"context"
	"net/http"
	"strings"

	"churrasco/internal/pkg/jwt"
	"churrasco/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RevocationChecker reports whether a token id was signed out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTAuth validates the bearer token and stores user_id, role, jti and
// token_exp in the gin context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return JWTAuthWithRevocation(jwtService, nil)
}

// JWTAuthWithRevocation additionally rejects tokens that were signed out.
func JWTAuthWithRevocation(jwtService *jwt.Service, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			return
		}

		if !strings.HasPrefix(header, "Bearer ") {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be: Bearer <token>")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if tokenStr == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Empty token")
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		if revoked != nil && claims.ID != "" {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				_ = c.Error(err)
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify token")
				return
			}
			if isRevoked {
				response.Abort(c, http.StatusUnauthorized, "TOKEN_REVOKED", "Token was signed out")
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}

		c.Next()
	}
}
