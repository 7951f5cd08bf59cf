package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arch-iv/archiv-api/internal/auth"
	"github.com/arch-iv/archiv-api/internal/auth/domain"
)

type memUsers struct {
	rows      map[string]*domain.Profile
	upsertErr error
	saved     *domain.Profile
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	if p, ok := m.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Upsert(_ context.Context, p *domain.Profile) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.saved = p
	return nil
}

func ptr(s string) *string { return &s }

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	id := &auth.Identity{UserID: "u1", Email: "rina@arch-iv.app", FullName: "Rina G", AvatarURL: "https://g/p.png"}

	t.Run("new user is seeded from claims", func(t *testing.T) {
		svc := NewAuthService(&memUsers{rows: map[string]*domain.Profile{}})
		p, err := svc.GetProfile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "u1", p.ID)
		assert.Equal(t, "", p.Username)
		assert.Equal(t, "rina@arch-iv.app", *p.Email)
		assert.Equal(t, "Rina G", *p.FullName)
		assert.Equal(t, "https://g/p.png", *p.AvatarURL)
	})

	t.Run("stored values win over claims", func(t *testing.T) {
		svc := NewAuthService(&memUsers{rows: map[string]*domain.Profile{
			"u1": {ID: "u1", Username: "rina", FullName: ptr("Rina Studio"), AvatarURL: ptr("https://cdn/a.webp")},
		}})
		p, err := svc.GetProfile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "rina", p.Username)
		assert.Equal(t, "Rina Studio", *p.FullName)
		assert.Equal(t, "https://cdn/a.webp", *p.AvatarURL)
	})

	t.Run("blank avatar falls back to provider picture", func(t *testing.T) {
		svc := NewAuthService(&memUsers{rows: map[string]*domain.Profile{
			"u1": {ID: "u1", Username: "rina", AvatarURL: ptr("")},
		}})
		p, err := svc.GetProfile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "https://g/p.png", *p.AvatarURL)
	})
}

func TestSaveProfile(t *testing.T) {
	ctx := context.Background()
	id := &auth.Identity{UserID: "u1", Email: "rina@arch-iv.app"}

	t.Run("trims and saves", func(t *testing.T) {
		store := &memUsers{}
		svc := NewAuthService(store)

		p, err := svc.SaveProfile(ctx, id, &domain.UpdateProfileRequest{
			Username:    "  rina  ",
			FullName:    ptr(" Rina "),
			SocialLinks: domain.SocialLinks{GitHub: " rina "},
		})
		require.NoError(t, err)
		assert.Equal(t, "rina", p.Username)
		assert.Equal(t, "Rina", *p.FullName)
		assert.Equal(t, "rina", p.SocialLinks.GitHub)
		assert.Equal(t, "rina@arch-iv.app", *p.Email)
		assert.Same(t, p, store.saved)
	})

	t.Run("rejects short usernames", func(t *testing.T) {
		svc := NewAuthService(&memUsers{})
		_, err := svc.SaveProfile(ctx, id, &domain.UpdateProfileRequest{Username: " ab "})
		assert.ErrorIs(t, err, domain.ErrUsernameTooShort)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		svc := NewAuthService(&memUsers{upsertErr: domain.ErrUsernameTaken})
		_, err := svc.SaveProfile(ctx, id, &domain.UpdateProfileRequest{Username: "rina"})
		assert.True(t, errors.Is(err, domain.ErrUsernameTaken))
	})
}
