package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/arch-iv/archiv-api/internal/auth/domain"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserRepository{db: db, logger: logger}
}

// GetByID retrieves a profile by the auth subject
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, email, username, full_name, avatar_url, bio,
		       social_links, is_admin, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var p domain.Profile
	var email, username, fullName, avatarURL, bio sql.NullString
	var socialJSON []byte
	var createdAt, updatedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&email,
		&username,
		&fullName,
		&avatarURL,
		&bio,
		&socialJSON,
		&p.IsAdmin,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Email = nullable(email)
	p.Username = username.String
	p.FullName = nullable(fullName)
	p.AvatarURL = nullable(avatarURL)
	p.Bio = nullable(bio)
	if createdAt.Valid {
		p.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.Time
	}

	// Parse JSONB social links; a malformed value reads as empty
	if len(socialJSON) > 0 {
		if err := json.Unmarshal(socialJSON, &p.SocialLinks); err != nil {
			p.SocialLinks = domain.SocialLinks{}
			r.logger.Warn("malformed social_links", zap.String("user_id", p.ID), zap.Error(err))
		}
	}

	return &p, nil
}

// Upsert creates or updates the editable profile columns.
func (r *UserRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO users (id, email, username, full_name, avatar_url, bio, social_links)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    full_name = EXCLUDED.full_name,
		    avatar_url = EXCLUDED.avatar_url,
		    bio = EXCLUDED.bio,
		    social_links = EXCLUDED.social_links,
		    email = COALESCE(EXCLUDED.email, users.email),
		    updated_at = NOW()
		RETURNING is_admin, created_at, updated_at
	`

	socialJSON, err := json.Marshal(p.SocialLinks)
	if err != nil {
		socialJSON = []byte("{}")
	}

	var createdAt, updatedAt sql.NullTime
	err = r.db.QueryRowContext(
		ctx,
		query,
		p.ID,
		p.Email,
		p.Username,
		p.FullName,
		p.AvatarURL,
		p.Bio,
		socialJSON,
	).Scan(&p.IsAdmin, &createdAt, &updatedAt)

	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return err
	}

	if createdAt.Valid {
		p.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.Time
	}
	return nil
}

// IsAdmin reports the admin flag; unknown users are not admins.
func (r *UserRepository) IsAdmin(ctx context.Context, id string) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRowContext(ctx, `SELECT is_admin FROM users WHERE id = $1`, id).Scan(&isAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return isAdmin, nil
}

// ListOptions returns every user as an owner/contributor option, ordered by display name.
func (r *UserRepository) ListOptions(ctx context.Context) ([]domain.UserOption, error) {
	query := `
		SELECT id, COALESCE(NULLIF(full_name, ''), email, username, id::text), COALESCE(email, '')
		FROM users
		ORDER BY 2
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.UserOption, 0, 32)
	for rows.Next() {
		var u domain.UserOption
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
