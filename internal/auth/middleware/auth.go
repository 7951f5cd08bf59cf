package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arch-iv/archiv-api/internal/auth"
)

// AdminChecker reports whether a user carries the admin flag.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

const CtxIsAdmin = "is_admin"

// RequireUser validates the bearer token and stores the identity in context.
func RequireUser(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			return
		}

		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			return
		}

		auth.SetIdentity(c, id)
		c.Next()
	}
}

// OptionalUser stores the identity when a valid token is present and never rejects.
func OptionalUser(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if id, err := verifier.Verify(c.Request.Context(), token); err == nil {
				auth.SetIdentity(c, id)
			}
		}
		c.Next()
	}
}

// LoadAdmin resolves the admin flag for the authenticated user. It must run after RequireUser.
func LoadAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := auth.UserID(c)
		if uid == "" {
			c.Set(CtxIsAdmin, false)
			c.Next()
			return
		}

		isAdmin, err := checker.IsAdmin(c.Request.Context(), uid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to resolve user role"})
			return
		}
		c.Set(CtxIsAdmin, isAdmin)
		c.Next()
	}
}

// IsAdmin reads the flag stored by LoadAdmin.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(CtxIsAdmin)
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
