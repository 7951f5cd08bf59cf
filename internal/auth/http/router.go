package http

import "github.com/gin-gonic/gin"

// Register attaches profile routes; the group must already require a user.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/profile", h.GetProfile)
	rg.PUT("/profile", h.UpdateProfile)
}
