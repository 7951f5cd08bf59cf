package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arch-iv/archiv-api/internal/projects/domain"
)

const maxSlugAttempts = 5

// Store is the persistence contract used by ProjectService.
type Store interface {
	List(ctx context.Context, f domain.Filter) ([]domain.Card, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Detail, error)
	Create(ctx context.Context, in domain.CreateInput, slug string) (*domain.Created, error)
	OwnerOf(ctx context.Context, slug string) (string, error)
	SoftDelete(ctx context.Context, slug string, at time.Time) error
}

// Actor is the authenticated caller.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// ProjectService handles project-related business logic
type ProjectService struct {
	store Store
	now   func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(store Store) *ProjectService {
	return &ProjectService{store: store, now: time.Now}
}

// List returns gallery cards for the filter.
func (s *ProjectService) List(ctx context.Context, f domain.Filter) ([]domain.Card, error) {
	return s.store.List(ctx, f.Normalize())
}

// Get returns a project by slug.
func (s *ProjectService) Get(ctx context.Context, slug string) (*domain.Detail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	return s.store.GetBySlug(ctx, slug)
}

// Create validates the submission, resolves ownership and inserts the project.
// Slug collisions are retried with a fresh timestamp.
func (s *ProjectService) Create(ctx context.Context, actor Actor, in domain.CreateInput) (*domain.Created, error) {
	in, err := s.prepare(actor, in)
	if err != nil {
		return nil, err
	}

	for i := 0; i < maxSlugAttempts; i++ {
		slug := domain.GenerateSlug(in.Title, s.now())
		created, err := s.store.Create(ctx, in, slug)
		if err == nil {
			return created, nil
		}
		if errors.Is(err, domain.ErrSlugTaken) {
			// next attempt gets a later millisecond
			time.Sleep(time.Millisecond)
			continue
		}
		return nil, err
	}
	return nil, domain.ErrSlugExhausted
}

func (s *ProjectService) prepare(actor Actor, in domain.CreateInput) (domain.CreateInput, error) {
	if actor.UserID == "" {
		return in, domain.ErrForbidden
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.GLTFURL = strings.TrimSpace(in.GLTFURL)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	in.AuthorName = strings.TrimSpace(in.AuthorName)

	if in.Title == "" {
		return in, &domain.ValidationError{Field: "title", Message: "is required"}
	}
	if in.GLTFURL == "" {
		return in, &domain.ValidationError{Field: "gltf_url", Message: "is required"}
	}
	if in.ThumbnailURL == "" {
		return in, &domain.ValidationError{Field: "thumbnail_url", Message: "is required"}
	}

	in.Status = strings.TrimSpace(in.Status)
	if in.Status == "" {
		in.Status = domain.StatusPublished
	}
	if !domain.ValidStatus(in.Status) {
		return in, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", in.Status)}
	}

	switch {
	case !actor.IsAdmin:
		in.OwnerID = actor.UserID
		in.AuthorName = ""
	case in.OwnerID != "" && in.AuthorName != "":
		return in, &domain.ValidationError{Field: "owner_id", Message: "set either owner_id or author_name, not both"}
	case in.OwnerID == "" && in.AuthorName == "":
		return in, &domain.ValidationError{Field: "owner_id", Message: "owner_id or author_name is required"}
	}

	in.TagIDs = dedupe(in.TagIDs)
	in.SoftwareIDs = dedupe(in.SoftwareIDs)
	in.ContributorIDs = dedupe(in.ContributorIDs)

	manual := in.ManualContributors[:0:0]
	for _, mc := range in.ManualContributors {
		mc.Name = strings.TrimSpace(mc.Name)
		if mc.Name == "" {
			continue
		}
		mc.Role = strings.TrimSpace(mc.Role)
		if mc.Role == "" {
			mc.Role = domain.DefaultRole
		}
		manual = append(manual, mc)
	}
	in.ManualContributors = manual

	images := in.Images[:0:0]
	for _, img := range in.Images {
		img.URL = strings.TrimSpace(img.URL)
		if img.URL == "" {
			continue
		}
		images = append(images, img)
	}
	for i := range images {
		images[i].Caption = strings.TrimSpace(images[i].Caption)
		if images[i].Caption == "" {
			images[i].Caption = fmt.Sprintf("Gallery %d", i+1)
		}
	}
	in.Images = images

	return in, nil
}

// Delete soft-deletes a project owned by the actor. Admins may delete any project.
func (s *ProjectService) Delete(ctx context.Context, actor Actor, slug string) error {
	owner, err := s.store.OwnerOf(ctx, slug)
	if err != nil {
		return err
	}
	if !actor.IsAdmin && (owner == "" || owner != actor.UserID) {
		return domain.ErrForbidden
	}
	return s.store.SoftDelete(ctx, slug, s.now().UTC())
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
