package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arch-iv/archiv-api/config"
	"github.com/arch-iv/archiv-api/internal/db"
	"github.com/arch-iv/archiv-api/internal/storage/postgres"
)

// Databases holds both handles onto the same Postgres instance. The pgx pool
// serves the content repositories; the database/sql handle serves profiles.
type Databases struct {
	PG  *db.DB
	SQL *sql.DB
}

func OpenDatabases(ctx context.Context, cfg *config.DatabaseConfig) (*Databases, error) {
	pg, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgx: %w", err)
	}

	sqlDB, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("database/sql: %w", err)
	}

	return &Databases{PG: pg, SQL: sqlDB}, nil
}

func (d *Databases) Close() {
	if d == nil {
		return
	}
	d.PG.Close()
	if d.SQL != nil {
		_ = d.SQL.Close()
	}
}
