package middleware

import (
	"errors"
	"net/http"
	"strings"

	"notes-marketplace-api/internal/response"
	"notes-marketplace-api/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminSessionCookie carries the admin token for browser clients
const AdminSessionCookie = "admin_session"

const adminClaimsKey = "admin_claims"

// AdminAuthMiddleware requires a valid admin session, read from the
// Authorization bearer header or the session cookie.
func AdminAuthMiddleware(admins *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(AdminSessionCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			response.ErrorJSON(c, http.StatusUnauthorized, "Unauthorized: admin access required")
			c.Abort()
			return
		}

		claims, err := admins.ValidateToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrSessionExpired):
				response.ErrorJSON(c, http.StatusUnauthorized, "Session expired")
			case errors.Is(err, services.ErrSessionRevoked), errors.Is(err, services.ErrInvalidSession):
				response.ErrorJSON(c, http.StatusUnauthorized, "Invalid session")
			default:
				response.ErrorJSON(c, http.StatusInternalServerError, "Failed to verify session")
			}
			c.Abort()
			return
		}

		c.Set(adminClaimsKey, claims)
		c.Set("admin_id", claims.AdminID)
		c.Next()
	}
}

// AdminClaims returns the claims stored by AdminAuthMiddleware
func AdminClaims(c *gin.Context) (*services.AdminClaims, bool) {
	v, ok := c.Get(adminClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*services.AdminClaims)
	return claims, ok
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
