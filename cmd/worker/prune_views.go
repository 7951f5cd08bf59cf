package main

import (
	"context"
	"fmt"
	"time"

	"github.com/arch-iv/archiv-api/config"
	"github.com/arch-iv/archiv-api/internal/db"
	viewsrepo "github.com/arch-iv/archiv-api/internal/views/repository"
	viewsservice "github.com/arch-iv/archiv-api/internal/views/service"
)

// RunPruneViews deletes view log rows older than VIEWS_RETENTION once and exits.
func RunPruneViews() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	conn, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	svc := viewsservice.NewViewService(
		viewsrepo.NewViewRepository(conn.Pool),
		nil,
		viewsservice.Config{DedupWindow: cfg.Views.DedupWindow, Retention: cfg.Views.Retention},
		nil,
	)
	n, err := svc.Prune(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %d view log rows\n", n)
	return nil
}
