package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/arch-iv/archiv-api/internal/db"
	"github.com/arch-iv/archiv-api/internal/projects/domain"
)

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// List returns gallery cards matching the filter.
func (r *ProjectRepository) List(ctx context.Context, f domain.Filter) ([]domain.Card, error) {
	f = f.Normalize()
	q, args := BuildGalleryQuery(f)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Card, 0, f.Limit)
	for rows.Next() {
		var c domain.Card
		var ownerName, ownerAvatar, manual *string
		var typology, license, location *string
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Slug, &c.Description, &c.ThumbnailURL, &c.GLTFURL,
			&c.Status, &c.Views, &c.CreatedAt,
			&ownerName, &ownerAvatar, &manual,
			&typology, &license, &location,
			&c.Tags, &c.Software,
		); err != nil {
			return nil, fmt.Errorf("scan project card: %w", err)
		}
		c.Author = domain.Author{Name: domain.AuthorName(ownerName, manual), AvatarURL: ownerAvatar}
		c.Typology = domain.OrDefault(typology, domain.DefaultTypology)
		c.License = domain.OrDefault(license, domain.DefaultLicense)
		c.Location = domain.OrDefault(location, domain.DefaultLocation)
		if c.Tags == nil {
			c.Tags = []string{}
		}
		if c.Software == nil {
			c.Software = []string{}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// GetBySlug loads a non-deleted project with all of its relations.
func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string) (*domain.Detail, error) {
	const q = `
SELECT p.id::text, p.title, p.slug, p.description, p.thumbnail_url, p.gltf_url,
       p.status, p.views, p.completion_date, p.created_at, p.updated_at,
       p.user_id::text, p.author_name,
       u.username, u.full_name, u.avatar_url,
       bt.name, bt.description, l.name, l.url, loc.name
FROM projects p
LEFT JOIN users u ON u.id = p.user_id
LEFT JOIN building_typologies bt ON bt.id = p.building_typology_id
LEFT JOIN licenses l ON l.id = p.license_id
LEFT JOIN locations loc ON loc.id = p.location_id
WHERE p.slug = $1 AND p.deleted_at IS NULL;
`
	var (
		d                                  domain.Detail
		manual, username, fullName, avatar *string
		typology, license, location        *string
	)
	err := r.pool.QueryRow(ctx, q, slug).Scan(
		&d.ID, &d.Title, &d.Slug, &d.Description, &d.ThumbnailURL, &d.GLTFURL,
		&d.Status, &d.Views, &d.CompletionDate, &d.CreatedAt, &d.UpdatedAt,
		&d.UserID, &manual,
		&username, &fullName, &avatar,
		&typology, &d.Typology.Description, &license, &d.License.URL, &location,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	d.Author = domain.Author{Name: domain.AuthorName(fullName, manual), AvatarURL: avatar}
	if d.UserID != nil {
		d.Owner = &domain.Owner{ID: *d.UserID, Username: username, FullName: fullName, AvatarURL: avatar}
	}
	d.Typology.Name = domain.OrDefault(typology, domain.DefaultTypology)
	d.License.Name = domain.OrDefault(license, domain.DefaultLicense)
	d.Location = domain.OrDefault(location, domain.DefaultLocation)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Tags, err = r.named(gctx, `
SELECT t.id::text, t.name FROM project_tags pt JOIN tags t ON t.id = pt.tag_id
WHERE pt.project_id = $1 ORDER BY t.name;`, d.ID)
		return err
	})
	g.Go(func() (err error) {
		d.Software, err = r.named(gctx, `
SELECT s.id::text, s.name FROM project_software ps JOIN software s ON s.id = ps.software_id
WHERE ps.project_id = $1 ORDER BY s.name;`, d.ID)
		return err
	})
	g.Go(func() (err error) {
		d.Contributors, err = r.contributors(gctx, d.ID)
		return err
	})
	g.Go(func() (err error) {
		d.Images, err = r.images(gctx, d.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get project relations: %w", err)
	}

	domain.SortImages(d.Images)
	return &d, nil
}

func (r *ProjectRepository) named(ctx context.Context, q, projectID string) ([]domain.Named, error) {
	rows, err := r.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Named, error) {
		var n domain.Named
		err := row.Scan(&n.ID, &n.Name)
		return n, err
	})
}

func (r *ProjectRepository) contributors(ctx context.Context, projectID string) ([]domain.Contributor, error) {
	const q = `
SELECT pc.user_id::text,
       COALESCE(NULLIF(u.full_name, ''), u.username, pc.name, ''),
       COALESCE(NULLIF(pc.role, ''), $2)
FROM project_contributors pc
LEFT JOIN users u ON u.id = pc.user_id
WHERE pc.project_id = $1
ORDER BY pc.id;
`
	rows, err := r.pool.Query(ctx, q, projectID, domain.DefaultRole)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Contributor, error) {
		var c domain.Contributor
		err := row.Scan(&c.UserID, &c.Name, &c.Role)
		return c, err
	})
}

func (r *ProjectRepository) images(ctx context.Context, projectID string) ([]domain.Image, error) {
	const q = `
SELECT id, image_url, caption, position, created_at
FROM project_images
WHERE project_id = $1;
`
	rows, err := r.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Image, error) {
		var img domain.Image
		err := row.Scan(&img.ID, &img.URL, &img.Caption, &img.Position, &img.CreatedAt)
		return img, err
	})
}

// Create inserts the project and all of its relations in one transaction.
// A slug collision is reported as domain.ErrSlugTaken so the caller can retry.
func (r *ProjectRepository) Create(ctx context.Context, in domain.CreateInput, slug string) (*domain.Created, error) {
	out := &domain.Created{Slug: slug}

	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `
INSERT INTO projects (title, slug, description, user_id, author_name,
                      building_typology_id, location_id, license_id, status,
                      completion_date, gltf_url, thumbnail_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id::text;
`
		err := tx.QueryRow(ctx, q,
			in.Title, slug, nullIfEmpty(in.Description), nullIfEmpty(in.OwnerID), nullIfEmpty(in.AuthorName),
			nullIfEmpty(in.BuildingTypologyID), nullIfEmpty(in.LocationID), nullIfEmpty(in.LicenseID), in.Status,
			in.CompletionDate, in.GLTFURL, in.ThumbnailURL,
		).Scan(&out.ID)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return domain.ErrSlugTaken
			}
			if ve := referenceError(err, "id"); ve != nil {
				return ve
			}
			return fmt.Errorf("insert project: %w", err)
		}

		b, fields := relationBatch(out.ID, in)
		if b.Len() == 0 {
			return nil
		}
		br := tx.SendBatch(ctx, b)
		for i := 0; i < b.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				if ve := referenceError(err, fields[i]); ve != nil {
					return ve
				}
				return fmt.Errorf("insert project relations: %w", err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// relationBatch queues one insert per relation row. fields[i] names the
// request field that fed the i-th queued query.
func relationBatch(projectID string, in domain.CreateInput) (*pgx.Batch, []string) {
	b := &pgx.Batch{}
	var fields []string
	queue := func(field, sql string, args ...any) {
		b.Queue(sql, args...)
		fields = append(fields, field)
	}

	for _, id := range in.TagIDs {
		queue("tag_ids", `INSERT INTO project_tags (project_id, tag_id) VALUES ($1, $2);`, projectID, id)
	}
	for _, id := range in.SoftwareIDs {
		queue("software_ids", `INSERT INTO project_software (project_id, software_id) VALUES ($1, $2);`, projectID, id)
	}
	for _, id := range in.ContributorIDs {
		queue("contributor_ids", `INSERT INTO project_contributors (project_id, user_id, role) VALUES ($1, $2, $3);`,
			projectID, id, domain.DefaultRole)
	}
	for _, mc := range in.ManualContributors {
		queue("manual_contributors", `INSERT INTO project_contributors (project_id, name, role) VALUES ($1, $2, $3);`,
			projectID, mc.Name, mc.Role)
	}
	for i, img := range in.Images {
		queue("images", `INSERT INTO project_images (project_id, image_url, caption, position) VALUES ($1, $2, $3, $4);`,
			projectID, img.URL, img.Caption, i)
	}
	return b, fields
}

// projectColumnFields maps projects foreign key columns to request fields.
var projectColumnFields = map[string]string{
	"user_id":              "owner_id",
	"building_typology_id": "building_typology_id",
	"location_id":          "location_id",
	"license_id":           "license_id",
}

// referenceError turns a malformed or dangling client-supplied id into a
// validation error. It returns nil for any other error.
func referenceError(err error, field string) *domain.ValidationError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch {
	case db.IsForeignKeyViolation(err):
		if pgErr.TableName == "projects" {
			col := strings.TrimSuffix(strings.TrimPrefix(pgErr.ConstraintName, "projects_"), "_fkey")
			if f, ok := projectColumnFields[col]; ok {
				field = f
			}
		}
		return &domain.ValidationError{Field: field, Message: "unknown reference"}
	case db.IsInvalidText(err):
		return &domain.ValidationError{Field: field, Message: "malformed id"}
	}
	return nil
}

// OwnerOf returns the owning user id, empty when the project has a manual author.
func (r *ProjectRepository) OwnerOf(ctx context.Context, slug string) (string, error) {
	const q = `
SELECT COALESCE(user_id::text, '')
FROM projects
WHERE slug = $1 AND deleted_at IS NULL;
`
	var owner string
	if err := r.pool.QueryRow(ctx, q, slug).Scan(&owner); err != nil {
		if db.IsNoRows(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get project owner: %w", err)
	}
	return owner, nil
}

// SoftDelete marks a project as deleted.
func (r *ProjectRepository) SoftDelete(ctx context.Context, slug string, at time.Time) error {
	const q = `
UPDATE projects
SET deleted_at = $2, updated_at = $2
WHERE slug = $1 AND deleted_at IS NULL;
`
	tag, err := r.pool.Exec(ctx, q, slug, at)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
