package service

import (
	"context"
	"errors"
	"strings"

	"github.com/arch-iv/archiv-api/internal/auth"
	"github.com/arch-iv/archiv-api/internal/auth/domain"
)

// UserStore is the persistence the profile service needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Upsert(ctx context.Context, p *domain.Profile) error
}

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// GetProfile returns the caller's profile. A caller without a row yet gets an
// unsaved profile seeded from the token claims.
func (s *AuthService) GetProfile(ctx context.Context, id *auth.Identity) (*domain.Profile, error) {
	p, err := s.users.GetByID(ctx, id.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		p = &domain.Profile{ID: id.UserID}
	} else if err != nil {
		return nil, err
	}

	if p.Email == nil && id.Email != "" {
		p.Email = strPtr(id.Email)
	}
	if isBlank(p.FullName) && id.FullName != "" {
		p.FullName = strPtr(id.FullName)
	}
	// Fall back to the identity provider picture when the row has none
	if isBlank(p.AvatarURL) && id.AvatarURL != "" {
		p.AvatarURL = strPtr(id.AvatarURL)
	}
	return p, nil
}

// SaveProfile validates and upserts the caller's profile.
func (s *AuthService) SaveProfile(ctx context.Context, id *auth.Identity, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	username := strings.TrimSpace(req.Username)
	if len([]rune(username)) < domain.MinUsernameLength {
		return nil, domain.ErrUsernameTooShort
	}

	p := &domain.Profile{
		ID:          id.UserID,
		Username:    username,
		FullName:    trimmed(req.FullName),
		AvatarURL:   trimmed(req.AvatarURL),
		Bio:         trimmed(req.Bio),
		SocialLinks: trimLinks(req.SocialLinks),
	}
	if id.Email != "" {
		p.Email = strPtr(id.Email)
	}

	if err := s.users.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func trimLinks(l domain.SocialLinks) domain.SocialLinks {
	return domain.SocialLinks{
		Website:  strings.TrimSpace(l.Website),
		Twitter:  strings.TrimSpace(l.Twitter),
		GitHub:   strings.TrimSpace(l.GitHub),
		LinkedIn: strings.TrimSpace(l.LinkedIn),
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func strPtr(s string) *string { return &s }
