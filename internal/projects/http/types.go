package http

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arch-iv/archiv-api/internal/projects/domain"
	"github.com/arch-iv/archiv-api/internal/projects/service"
)

// ProjectService is implemented by service.ProjectService.
type ProjectService interface {
	List(ctx context.Context, f domain.Filter) ([]domain.Card, error)
	Get(ctx context.Context, slug string) (*domain.Detail, error)
	Create(ctx context.Context, actor service.Actor, in domain.CreateInput) (*domain.Created, error)
	Delete(ctx context.Context, actor service.Actor, slug string) error
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	projects ProjectService
	logger   *zap.Logger
}

func New(projects ProjectService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{projects: projects, logger: logger}
}

type manualContributorReq struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type imageReq struct {
	URL     string `json:"url" binding:"required"`
	Caption string `json:"caption"`
}

type createReq struct {
	Title              string                 `json:"title" binding:"required,max=200"`
	Description        string                 `json:"description" binding:"max=10000"`
	BuildingTypologyID string                 `json:"building_typology_id"`
	LocationID         string                 `json:"location_id"`
	LicenseID          string                 `json:"license_id"`
	Status             string                 `json:"status" binding:"omitempty,oneof=published draft completed ongoing"`
	CompletionDate     string                 `json:"completion_date"`
	GLTFURL            string                 `json:"gltf_url" binding:"required,url"`
	ThumbnailURL       string                 `json:"thumbnail_url" binding:"required,url"`
	TagIDs             []string               `json:"tag_ids"`
	SoftwareIDs        []string               `json:"software_ids"`
	ContributorIDs     []string               `json:"contributor_ids"`
	ManualContributors []manualContributorReq `json:"manual_contributors"`
	Images             []imageReq             `json:"images" binding:"dive"`
	OwnerID            string                 `json:"owner_id"`
	AuthorName         string                 `json:"author_name"`
}

func (r createReq) toInput() (domain.CreateInput, error) {
	in := domain.CreateInput{
		Title:              r.Title,
		Description:        r.Description,
		BuildingTypologyID: r.BuildingTypologyID,
		LocationID:         r.LocationID,
		LicenseID:          r.LicenseID,
		Status:             r.Status,
		GLTFURL:            r.GLTFURL,
		ThumbnailURL:       r.ThumbnailURL,
		OwnerID:            r.OwnerID,
		AuthorName:         r.AuthorName,
		TagIDs:             r.TagIDs,
		SoftwareIDs:        r.SoftwareIDs,
		ContributorIDs:     r.ContributorIDs,
	}
	for _, mc := range r.ManualContributors {
		in.ManualContributors = append(in.ManualContributors, domain.ManualContributor{Name: mc.Name, Role: mc.Role})
	}
	for _, img := range r.Images {
		in.Images = append(in.Images, domain.NewImage{URL: img.URL, Caption: img.Caption})
	}

	if d := strings.TrimSpace(r.CompletionDate); d != "" {
		t, err := parseDate(d)
		if err != nil {
			return in, &domain.ValidationError{Field: "completion_date", Message: err.Error()}
		}
		in.CompletionDate = &t
	}
	return in, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
}
