package repository

import (
	"strconv"
	"strings"

	"github.com/arch-iv/archiv-api/internal/projects/domain"
)

const galleryColumns = `
SELECT p.id::text, p.title, p.slug, p.description, p.thumbnail_url, p.gltf_url,
       p.status, p.views, p.created_at,
       u.full_name, u.avatar_url, p.author_name,
       bt.name, l.name, loc.name,
       ARRAY(SELECT t.name FROM project_tags pt JOIN tags t ON t.id = pt.tag_id
             WHERE pt.project_id = p.id ORDER BY t.name) AS tags,
       ARRAY(SELECT s.name FROM project_software ps JOIN software s ON s.id = ps.software_id
             WHERE ps.project_id = p.id ORDER BY s.name) AS software
FROM projects p
LEFT JOIN users u ON u.id = p.user_id
LEFT JOIN building_typologies bt ON bt.id = p.building_typology_id
LEFT JOIN licenses l ON l.id = p.license_id
LEFT JOIN locations loc ON loc.id = p.location_id`

// queryBuilder accumulates WHERE clauses with positional args.
type queryBuilder struct {
	where []string
	args  []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *queryBuilder) add(clause string) {
	b.where = append(b.where, clause)
}

// BuildGalleryQuery renders the gallery SELECT for a normalized filter.
func BuildGalleryQuery(f domain.Filter) (string, []any) {
	b := &queryBuilder{}
	b.add("p.status = " + b.arg(domain.StatusPublished))
	b.add("p.deleted_at IS NULL")

	if f.Query != "" {
		b.add(`p.title ILIKE ` + b.arg("%"+escapeLike(f.Query)+"%") + ` ESCAPE '\'`)
	}
	if f.TypologyID != "" {
		b.add("p.building_typology_id::text = " + b.arg(f.TypologyID))
	}
	if f.LocationID != "" {
		b.add("p.location_id::text = " + b.arg(f.LocationID))
	}
	if len(f.TagIDs) > 0 {
		b.add(`EXISTS (SELECT 1 FROM project_tags ft WHERE ft.project_id = p.id AND ft.tag_id::text = ANY(` +
			b.arg(f.TagIDs) + `::text[]))`)
	}
	if len(f.SoftwareIDs) > 0 {
		b.add(`EXISTS (SELECT 1 FROM project_software fs WHERE fs.project_id = p.id AND fs.software_id::text = ANY(` +
			b.arg(f.SoftwareIDs) + `::text[]))`)
	}

	var sb strings.Builder
	sb.WriteString(galleryColumns)
	sb.WriteString("\nWHERE ")
	sb.WriteString(strings.Join(b.where, "\n  AND "))
	sb.WriteString("\nORDER BY ")
	sb.WriteString(orderBy(f.Sort))
	sb.WriteString("\nLIMIT ")
	sb.WriteString(b.arg(f.Limit))
	sb.WriteString(" OFFSET ")
	sb.WriteString(b.arg(f.Offset))
	return sb.String(), b.args
}

func orderBy(sort string) string {
	switch sort {
	case domain.SortOldest:
		return "p.created_at ASC, p.id ASC"
	case domain.SortViews:
		return "p.views DESC, p.created_at DESC"
	case domain.SortAZ:
		return "lower(p.title) ASC, p.created_at DESC"
	case domain.SortZA:
		return "lower(p.title) DESC, p.created_at DESC"
	default:
		return "p.created_at DESC, p.id DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
