package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/arch-iv/archiv-api/internal/api/http"
	"github.com/arch-iv/archiv-api/internal/api/http/middleware"
	"github.com/arch-iv/archiv-api/internal/api/http/validation"
	"github.com/arch-iv/archiv-api/internal/auth"
	authhttp "github.com/arch-iv/archiv-api/internal/auth/http"
	authmw "github.com/arch-iv/archiv-api/internal/auth/middleware"
	cataloghttp "github.com/arch-iv/archiv-api/internal/catalog/http"
	documentshttp "github.com/arch-iv/archiv-api/internal/documents/http"
	projectshttp "github.com/arch-iv/archiv-api/internal/projects/http"
	uploadshttp "github.com/arch-iv/archiv-api/internal/uploads/http"
	viewshttp "github.com/arch-iv/archiv-api/internal/views/http"
	"github.com/arch-iv/archiv-api/internal/waitlist"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	Logger      *zap.Logger

	// Health probes; nil reports the dependency as disabled.
	DB    httpapi.Pinger
	Redis httpapi.Pinger

	Verifier auth.TokenVerifier
	Admins   authmw.AdminChecker

	Profiles  authhttp.ProfileService
	Catalog   cataloghttp.CatalogLoader
	Projects  projectshttp.ProjectService
	Uploads   uploadshttp.Uploader
	Documents documentshttp.Converter
	Views     viewshttp.Tracker
	Waitlist  waitlist.Store
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	if err := validation.Register(); err != nil {
		return nil, err
	}
	logger := dep.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestIDMiddleware(logger))
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	// The catalog is public, but an admin token adds the user list.
	catalog := api.Group("")
	catalog.Use(authmw.OptionalUser(dep.Verifier), authmw.LoadAdmin(dep.Admins))
	cataloghttp.New(dep.Catalog, logger).Register(catalog)

	public := api.Group("")
	viewshttp.New(dep.Views, logger).Register(public)
	waitlist.NewHandler(dep.Waitlist, logger).Register(public)

	projects := projectshttp.New(dep.Projects, logger)
	projects.RegisterPublic(public.Group("/projects"))

	authed := api.Group("")
	authed.Use(authmw.RequireUser(dep.Verifier), authmw.LoadAdmin(dep.Admins))
	authhttp.New(dep.Profiles).Register(authed)
	projects.RegisterAuthed(authed.Group("/projects"))
	uploadshttp.New(dep.Uploads, logger).Register(authed)
	documentshttp.New(dep.Documents, logger).Register(authed)

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}
