package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arch-iv/archiv-api/internal/api/http/validation"
	"github.com/arch-iv/archiv-api/internal/auth"
	"github.com/arch-iv/archiv-api/internal/logging"
	"github.com/arch-iv/archiv-api/internal/uploads/domain"
	"github.com/arch-iv/archiv-api/internal/uploads/service"
)

// Uploader is implemented by service.UploadService.
type Uploader interface {
	Presign(ctx context.Context, userID string, req domain.UploadRequest) (*service.Presigned, error)
	Upload(ctx context.Context, userID string, req domain.UploadRequest, body io.Reader) (*service.Stored, error)
}

type Handler struct {
	uploads Uploader
	logger  *zap.Logger
}

func New(uploads Uploader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{uploads: uploads, logger: logger}
}

// Register attaches upload routes; the group must require a user.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/uploads/presign", h.presign)
	rg.POST("/uploads", h.upload)
}

type presignReq struct {
	Filename string `json:"filename" binding:"required"`
	Filetype string `json:"filetype"`
	Folder   string `json:"folder" binding:"required"`
	Filesize int64  `json:"filesize"`
}

func (h *Handler) presign(c *gin.Context) {
	var req presignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": validation.Message(err)})
		return
	}

	out, err := h.uploads.Presign(c.Request.Context(), auth.UserID(c), domain.UploadRequest{
		Filename:    req.Filename,
		ContentType: req.Filetype,
		Folder:      req.Folder,
		Size:        req.Filesize,
	})
	if err != nil {
		h.writeError(c, "uploads.presign", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"uploadUrl": out.UploadURL,
		"publicUrl": out.PublicURL,
		"key":       out.Key,
		"expiresAt": out.ExpiresAt,
	})
}

func (h *Handler) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "No file provided"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "could not read upload"})
		return
	}
	defer f.Close()

	out, err := h.uploads.Upload(c.Request.Context(), auth.UserID(c), domain.UploadRequest{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Folder:      c.PostForm("folder"),
		Size:        fh.Size,
	}, f)
	if err != nil {
		h.writeError(c, "uploads.direct", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "url": out.URL, "key": out.Key})
}

func (h *Handler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrUnknownFolder),
		errors.Is(err, domain.ErrMissingFilename),
		errors.Is(err, domain.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrContentType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.FromContext(c.Request.Context(), h.logger).Error(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "upload failed"})
	}
}
