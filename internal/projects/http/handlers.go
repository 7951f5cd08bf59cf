package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arch-iv/archiv-api/internal/api/http/validation"
	"github.com/arch-iv/archiv-api/internal/auth"
	authmw "github.com/arch-iv/archiv-api/internal/auth/middleware"
	"github.com/arch-iv/archiv-api/internal/logging"
	"github.com/arch-iv/archiv-api/internal/projects/domain"
	"github.com/arch-iv/archiv-api/internal/projects/service"
)

func (h *Handler) list(c *gin.Context) {
	f := domain.Filter{
		Query:       c.Query("q"),
		TypologyID:  c.Query("typology"),
		LocationID:  c.Query("location"),
		TagIDs:      domain.SplitIDs(c.Query("tags")),
		SoftwareIDs: domain.SplitIDs(c.Query("software")),
		Sort:        c.Query("sort"),
		Limit:       atoiOr(c.Query("limit"), 0),
		Offset:      atoiOr(c.Query("offset"), 0),
	}

	items, err := h.projects.List(c.Request.Context(), f)
	if err != nil {
		logging.FromContext(c.Request.Context(), h.logger).Error("projects.list", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	slug := c.Param("slug")
	if !validation.IsSlug(slug) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	p, err := h.projects.Get(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		logging.FromContext(c.Request.Context(), h.logger).Error("projects.get", err, zap.String("slug", slug))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": validation.Message(err)})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	actor := service.Actor{UserID: auth.UserID(c), IsAdmin: authmw.IsAdmin(c)}
	created, err := h.projects.Create(c.Request.Context(), actor, in)
	if err != nil {
		h.writeError(c, "projects.create", err)
		return
	}

	logging.FromContext(c.Request.Context(), h.logger).Info("projects.create", "project created",
		zap.String("project_id", created.ID), zap.String("slug", created.Slug))
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": created})
}

func (h *Handler) delete(c *gin.Context) {
	slug := c.Param("slug")
	if !validation.IsSlug(slug) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	actor := service.Actor{UserID: auth.UserID(c), IsAdmin: authmw.IsAdmin(c)}
	if err := h.projects.Delete(c.Request.Context(), actor, slug); err != nil {
		h.writeError(c, "projects.delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) writeError(c *gin.Context, op string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": ve.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "forbidden"})
	default:
		logging.FromContext(c.Request.Context(), h.logger).Error(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
	}
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
