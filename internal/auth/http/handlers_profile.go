package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arch-iv/archiv-api/internal/auth"
	"github.com/arch-iv/archiv-api/internal/auth/domain"
)

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	p, err := h.profiles.GetProfile(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": p})
}

// UpdateProfile creates or updates the user's profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	p, err := h.profiles.SaveProfile(c.Request.Context(), id, &domain.UpdateProfileRequest{
		Username:    req.Username,
		FullName:    req.FullName,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
		SocialLinks: req.SocialLinks,
	})
	switch {
	case errors.Is(err, domain.ErrUsernameTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Username must be at least 3 characters."})
		return
	case errors.Is(err, domain.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "This username is already taken."})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": p})
}
