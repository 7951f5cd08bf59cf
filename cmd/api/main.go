package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arch-iv/archiv-api/config"
	httpapi "github.com/arch-iv/archiv-api/internal/api/http"
	authrepo "github.com/arch-iv/archiv-api/internal/auth/repository"
	authservice "github.com/arch-iv/archiv-api/internal/auth/service"
	"github.com/arch-iv/archiv-api/internal/bootstrap"
	catalogrepo "github.com/arch-iv/archiv-api/internal/catalog/repository"
	catalogservice "github.com/arch-iv/archiv-api/internal/catalog/service"
	documentsservice "github.com/arch-iv/archiv-api/internal/documents/service"
	"github.com/arch-iv/archiv-api/internal/logging"
	"github.com/arch-iv/archiv-api/internal/pdfraster"
	projectsrepo "github.com/arch-iv/archiv-api/internal/projects/repository"
	projectsservice "github.com/arch-iv/archiv-api/internal/projects/service"
	uploadsservice "github.com/arch-iv/archiv-api/internal/uploads/service"
	cronjob "github.com/arch-iv/archiv-api/internal/views/cron"
	"github.com/arch-iv/archiv-api/internal/views/ratelimit"
	viewsrepo "github.com/arch-iv/archiv-api/internal/views/repository"
	viewsservice "github.com/arch-iv/archiv-api/internal/views/service"
	"github.com/arch-iv/archiv-api/internal/waitlist"
)

const serviceName = "archiv-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(cfg.App.Environment)

	dbs, err := bootstrap.OpenDatabases(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer dbs.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		return err
	}

	var (
		limiter     ratelimit.Limiter
		redisPinger httpapi.Pinger
	)
	if rdb != nil {
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, "views", cfg.Views.RateLimit, cfg.Views.RateWindow)
		redisPinger = bootstrap.RedisPinger{Client: rdb}
	} else {
		logger.Warn("REDIS_ADDR not set, view rate limit is per instance")
		limiter = ratelimit.NewMemoryLimiter(cfg.Views.RateLimit, cfg.Views.RateWindow)
	}

	verifier, err := bootstrap.NewVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	stores, err := bootstrap.OpenStorage(ctx, &cfg.Storage)
	if err != nil {
		return err
	}
	if !cfg.Storage.Enabled() {
		logger.Warn("R2_BUCKET not set, uploads and document conversion are disabled")
	}

	users := authrepo.NewUserRepository(dbs.SQL, logger)
	views := viewsservice.NewViewService(
		viewsrepo.NewViewRepository(dbs.PG.Pool),
		limiter,
		viewsservice.Config{DedupWindow: cfg.Views.DedupWindow, Retention: cfg.Views.Retention},
		logger,
	)

	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
		DB:          dbs.PG.Pool,
		Redis:       redisPinger,
		Verifier:    verifier,
		Admins:      users,
		Profiles:    authservice.NewAuthService(users),
		Catalog:     catalogservice.NewCatalogService(catalogrepo.NewCatalogRepository(dbs.PG.Pool), users),
		Projects:    projectsservice.NewProjectService(projectsrepo.NewProjectRepository(dbs.PG.Pool)),
		Uploads:     uploadsservice.NewUploadService(stores.Uploads, cfg.Storage.UploadURLTTL),
		Documents:   documentsservice.NewConvertService(stores.Documents, pdfraster.Options{}, logger),
		Views:       views,
		Waitlist:    waitlist.NewRepository(dbs.PG.Pool),
	})
	if err != nil {
		return err
	}

	scheduler := cronjob.NewScheduler(views, cfg.Views.PruneSchedule, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
