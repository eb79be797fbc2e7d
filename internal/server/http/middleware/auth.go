package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/sweetsbybella/internal/pkg/auth"
	"github.com/polkiloo/sweetsbybella/internal/server/http/dto"
)

const (
	// AdminContextKey holds the authenticated admin login.
	AdminContextKey = "admin"
	adminCookieName = "sweets_admin_token"
)

// TokenParser validates admin bearer tokens.
type TokenParser interface {
	Authorize(token string) (string, error)
}

// AdminRequired rejects requests without a valid admin token.
func AdminRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authorization required"})
			return
		}

		subject, err := parser.Authorize(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
			return
		}

		c.Set(AdminContextKey, subject)
		c.Next()
	}
}

// CronSecretRequired guards scheduler routes with "Authorization: Bearer <secret>".
// An empty secret leaves the route open.
func CronSecretRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		if subtle.ConstantTimeCompare([]byte(bearerToken(c)), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func extractToken(c *gin.Context) string {
	if token := bearerToken(c); token != "" {
		return token
	}
	if cookie, err := c.Cookie(adminCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAdminCookie stores the admin token for dashboard sessions.
func SetAdminCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(adminCookieName, token, 0, "/api/admin", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
