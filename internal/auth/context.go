package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID   = "user_id"
	CtxEmail    = "email"
	CtxIdentity = "identity"
)

// Identity is the verified subject of a bearer token.
type Identity struct {
	UserID    string
	Email     string
	FullName  string
	AvatarURL string
}

// SetIdentity stores a verified identity on the Gin context.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(CtxUserID, id.UserID)
	c.Set(CtxEmail, id.Email)
	c.Set(CtxIdentity, id)
}

// UserID extracts the authenticated user ID from the Gin context.
// This is set by the auth middleware
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// CurrentIdentity returns the identity set by the auth middleware, if any.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}
