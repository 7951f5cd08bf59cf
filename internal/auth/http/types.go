package http

import (
	"context"

	"github.com/arch-iv/archiv-api/internal/auth"
	"github.com/arch-iv/archiv-api/internal/auth/domain"
)

// ProfileService is implemented by service.AuthService.
type ProfileService interface {
	GetProfile(ctx context.Context, id *auth.Identity) (*domain.Profile, error)
	SaveProfile(ctx context.Context, id *auth.Identity, req *domain.UpdateProfileRequest) (*domain.Profile, error)
}

type Handler struct {
	profiles ProfileService
}

func New(profiles ProfileService) *Handler {
	return &Handler{profiles: profiles}
}

type updateProfileReq struct {
	Username    string             `json:"username"`
	FullName    *string            `json:"full_name,omitempty"`
	AvatarURL   *string            `json:"avatar_url,omitempty"`
	Bio         *string            `json:"bio,omitempty"`
	SocialLinks domain.SocialLinks `json:"social_links"`
}
