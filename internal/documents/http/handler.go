package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arch-iv/archiv-api/internal/auth"
	"github.com/arch-iv/archiv-api/internal/documents/service"
	"github.com/arch-iv/archiv-api/internal/logging"
	"github.com/arch-iv/archiv-api/internal/pdfraster"
	uploaddomain "github.com/arch-iv/archiv-api/internal/uploads/domain"
)

// Converter is implemented by service.ConvertService.
type Converter interface {
	Convert(ctx context.Context, userID, filename string, data []byte) ([]service.StoredPage, error)
}

type Handler struct {
	converter Converter
	logger    *zap.Logger
}

func New(converter Converter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{converter: converter, logger: logger}
}

// Register attaches the conversion route; the group must require a user.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/documents/convert", h.convert)
}

func (h *Handler) convert(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "No file provided"})
		return
	}
	limit := uploaddomain.MaxSize(uploaddomain.FolderDocuments)
	if fh.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": service.ErrTooLarge.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "could not read upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "could not read upload"})
		return
	}

	pages, err := h.converter.Convert(c.Request.Context(), auth.UserID(c), fh.Filename, data)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "pages": pages})
	case errors.Is(err, service.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, service.ErrNotPDF):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, pdfraster.ErrUnreadablePDF), errors.Is(err, service.ErrNoPages):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, service.ErrNoStorage):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.FromContext(c.Request.Context(), h.logger).Error("documents.convert", err, zap.String("file", fh.Filename))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "conversion failed"})
	}
}
