package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// RequireAccessToken verifies an access token and injects identity into request context.
// It does not perform RBAC checks; those belong to internal/rbac.
func RequireAccessToken(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if !authenticate(c, m, strings.TrimPrefix(raw, bearerPrefix)) {
			return
		}
		c.Next()
	}
}

// OptionalAccessToken lets requests without a token through as anonymous.
// A token that is present but invalid is still rejected.
func OptionalAccessToken(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" {
			ctx := WithIdentity(c.Request.Context(), "", Anonymous)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			return
		}
		if !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}
		if !authenticate(c, m, strings.TrimPrefix(raw, bearerPrefix)) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, m *Manager, tok string) bool {
	claims, err := m.Verify(tok, TokenTypeAccess, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return false
	}

	ctx := WithIdentity(c.Request.Context(), claims.UserID, claims.Role)
	c.Request = c.Request.WithContext(ctx)

	// Also store on gin context for handler convenience.
	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)
	return true
}
