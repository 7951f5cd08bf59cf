package waitlist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Add stores email. Signing up twice is not an error.
func (r *Repository) Add(ctx context.Context, email string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
INSERT INTO waitlist (email) VALUES ($1)
ON CONFLICT (email) DO NOTHING;`, email)
	if err != nil {
		return false, fmt.Errorf("add to waitlist: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
