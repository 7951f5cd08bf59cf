package waitlist

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/arch-iv/archiv-api/internal/logging"
)

// Store is implemented by Repository.
type Store interface {
	Add(ctx context.Context, email string) (bool, error)
}

type Handler struct {
	store  Store
	logger *zap.Logger
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/waitlist", h.join)
}

var (
	validate = validator.New()

	// the address must have a dotted domain
	reEmailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type joinReq struct {
	Email string `json:"email"`
}

func (h *Handler) join(c *gin.Context) {
	var req joinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Email is required"})
		return
	}
	if !validEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid email format"})
		return
	}

	added, err := h.store.Add(c.Request.Context(), email)
	if err != nil {
		logging.FromContext(c.Request.Context(), h.logger).Error("waitlist.join", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to join waitlist"})
		return
	}
	if added {
		logging.FromContext(c.Request.Context(), h.logger).Info("waitlist.join", "waitlist signup")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func validEmail(email string) bool {
	return reEmailShape.MatchString(email) && validate.Var(email, "email") == nil
}
