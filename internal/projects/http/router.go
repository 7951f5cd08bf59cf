package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the read-only gallery routes.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:slug", h.get)
}

// RegisterAuthed attaches mutating routes. The group must require a user and load the admin flag.
func (h *Handler) RegisterAuthed(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.DELETE("/:slug", h.delete)
}
