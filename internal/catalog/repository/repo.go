package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arch-iv/archiv-api/internal/catalog/domain"
)

// CatalogRepository reads the reference tables behind the option lists.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) Typologies(ctx context.Context) ([]domain.Typology, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, name, description FROM building_typologies ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list typologies: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Typology, error) {
		var t domain.Typology
		err := row.Scan(&t.ID, &t.Name, &t.Description)
		return t, err
	})
}

func (r *CatalogRepository) Licenses(ctx context.Context) ([]domain.License, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, name, url FROM licenses ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.License, error) {
		var l domain.License
		err := row.Scan(&l.ID, &l.Name, &l.URL)
		return l, err
	})
}

func (r *CatalogRepository) Software(ctx context.Context) ([]domain.Software, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, name, vendor FROM software ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list software: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Software, error) {
		var s domain.Software
		err := row.Scan(&s.ID, &s.Name, &s.Vendor)
		return s, err
	})
}

func (r *CatalogRepository) Tags(ctx context.Context) ([]domain.Option, error) {
	return r.options(ctx, "tags")
}

func (r *CatalogRepository) Locations(ctx context.Context) ([]domain.Option, error) {
	return r.options(ctx, "locations")
}

// options lists a plain id/name table. table is always a package constant.
func (r *CatalogRepository) options(ctx context.Context, table string) ([]domain.Option, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, name FROM `+pgx.Identifier{table}.Sanitize()+` ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Option])
}
