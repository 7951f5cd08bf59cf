package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	authdomain "github.com/arch-iv/archiv-api/internal/auth/domain"
	"github.com/arch-iv/archiv-api/internal/catalog/domain"
)

// Source reads the reference tables.
type Source interface {
	Typologies(ctx context.Context) ([]domain.Typology, error)
	Licenses(ctx context.Context) ([]domain.License, error)
	Software(ctx context.Context) ([]domain.Software, error)
	Tags(ctx context.Context) ([]domain.Option, error)
	Locations(ctx context.Context) ([]domain.Option, error)
}

// UserLister lists user accounts for admin pickers.
type UserLister interface {
	ListOptions(ctx context.Context) ([]authdomain.UserOption, error)
}

type CatalogService struct {
	source Source
	users  UserLister
}

func NewCatalogService(source Source, users UserLister) *CatalogService {
	return &CatalogService{source: source, users: users}
}

// Load fetches every list concurrently. The first failure cancels the rest.
func (s *CatalogService) Load(ctx context.Context, includeUsers bool) (*domain.Catalog, error) {
	out := &domain.Catalog{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Typologies, err = s.source.Typologies(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Licenses, err = s.source.Licenses(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Software, err = s.source.Software(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Tags, err = s.source.Tags(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Locations, err = s.source.Locations(gctx)
		return err
	})
	if includeUsers && s.users != nil {
		g.Go(func() (err error) {
			out.Users, err = s.users.ListOptions(gctx)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
