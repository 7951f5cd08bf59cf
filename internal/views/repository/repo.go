package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arch-iv/archiv-api/internal/db"
	"github.com/arch-iv/archiv-api/internal/views/domain"
)

// ViewRepository records project views in project_views and projects.views.
type ViewRepository struct {
	pool *pgxpool.Pool
}

func NewViewRepository(pool *pgxpool.Pool) *ViewRepository {
	return &ViewRepository{pool: pool}
}

// Increment logs a view from ip unless the same ip viewed the project after dedupSince.
// The counter only moves when the view is logged.
func (r *ViewRepository) Increment(ctx context.Context, slug, ip string, now, dedupSince time.Time) (domain.Result, error) {
	var res domain.Result

	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		var projectID string
		err := tx.QueryRow(ctx, `
SELECT id::text, views FROM projects
WHERE slug = $1 AND deleted_at IS NULL;`, slug).Scan(&projectID, &res.Views)
		if err != nil {
			if db.IsNoRows(err) {
				return domain.ErrProjectNotFound
			}
			return fmt.Errorf("find project: %w", err)
		}

		// serialize concurrent hits from the same client on the same project
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || '|' || $2::text));`, projectID, ip); err != nil {
			return fmt.Errorf("lock view: %w", err)
		}

		tag, err := tx.Exec(ctx, `
INSERT INTO project_views (project_id, ip_address, viewed_at)
SELECT $1::uuid, $2::text, $3::timestamptz
WHERE NOT EXISTS (
    SELECT 1 FROM project_views
    WHERE project_id = $1::uuid AND ip_address = $2::text AND viewed_at > $4::timestamptz
);`, projectID, ip, now, dedupSince)
		if err != nil {
			return fmt.Errorf("log view: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		res.Counted = true
		err = tx.QueryRow(ctx, `
UPDATE projects SET views = views + 1
WHERE id = $1
RETURNING views;`, projectID).Scan(&res.Views)
		if err != nil {
			return fmt.Errorf("bump views: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Result{}, err
	}
	return res, nil
}

// Prune deletes view log rows older than cutoff.
func (r *ViewRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM project_views WHERE viewed_at < $1;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune views: %w", err)
	}
	return tag.RowsAffected(), nil
}
