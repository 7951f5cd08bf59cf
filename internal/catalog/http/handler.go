package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authmw "github.com/arch-iv/archiv-api/internal/auth/middleware"
	"github.com/arch-iv/archiv-api/internal/catalog/domain"
	"github.com/arch-iv/archiv-api/internal/logging"
)

type CatalogLoader interface {
	Load(ctx context.Context, includeUsers bool) (*domain.Catalog, error)
}

type Handler struct {
	catalog CatalogLoader
	logger  *zap.Logger
}

func New(catalog CatalogLoader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{catalog: catalog, logger: logger}
}

// Register attaches GET /catalog. Admin-only lists depend on LoadAdmin having run.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/catalog", h.get)
}

func (h *Handler) get(c *gin.Context) {
	cat, err := h.catalog.Load(c.Request.Context(), authmw.IsAdmin(c))
	if err != nil {
		logging.FromContext(c.Request.Context(), h.logger).Error("catalog.load", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load catalog"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "catalog": cat})
}
