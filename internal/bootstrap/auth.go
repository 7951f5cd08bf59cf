package bootstrap

import (
	"context"
	"fmt"

	"github.com/arch-iv/archiv-api/config"
	"github.com/arch-iv/archiv-api/internal/auth"
)

// NewVerifier picks the token verifier for the configured provider.
func NewVerifier(ctx context.Context, cfg *config.Config) (auth.TokenVerifier, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderSupabase:
		return auth.NewSupabaseVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience), nil
	case config.AuthProviderFirebase:
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return nil, err
		}
		return auth.NewFirebaseVerifier(client), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}
