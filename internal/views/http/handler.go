package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arch-iv/archiv-api/internal/logging"
	"github.com/arch-iv/archiv-api/internal/views/domain"
)

// Tracker is implemented by service.ViewService.
type Tracker interface {
	Allow(ctx context.Context, ip string) bool
	Track(ctx context.Context, slug, ip string) (domain.Result, error)
}

type Handler struct {
	views  Tracker
	logger *zap.Logger
}

func New(views Tracker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{views: views, logger: logger}
}

// Register attaches POST /views. No authentication.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/views", h.track)
}

type trackReq struct {
	Slug string `json:"slug" binding:"required,slug"`
}

func (h *Handler) track(c *gin.Context) {
	ip := domain.ClientIP(c.Request.Header)

	// rate limit before parsing so malformed floods are capped too
	if !h.views.Allow(c.Request.Context(), ip) {
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "Too many requests"})
		return
	}

	var req trackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Missing or invalid slug"})
		return
	}

	res, err := h.views.Track(c.Request.Context(), req.Slug, ip)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "views": res.Views, "counted": res.Counted})
	case errors.Is(err, domain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Project not found"})
	default:
		logging.FromContext(c.Request.Context(), h.logger).Error("views.track", err, zap.String("slug", req.Slug))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to track view"})
	}
}
