package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roombooking/internal/access"
	"roombooking/internal/domain"
	"roombooking/internal/pkg/jwt"
	"roombooking/internal/pkg/response"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth requires "Authorization: Bearer <token>" and stores the caller
// identity in the context.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be Bearer <token>")
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// CurrentCaller returns the authenticated caller, or a zero Caller.
func CurrentCaller(c *gin.Context) access.Caller {
	id := c.GetInt64(ctxUserID)
	if id == 0 {
		return access.Caller{}
	}
	role := c.GetString(ctxRole)
	if role == "" {
		return access.Caller{ID: id}
	}
	return access.NewCaller(id, domain.UserRole(role))
}
