package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arch-iv/archiv-api/internal/projects/domain"
)

func TestBuildGalleryQuery_Defaults(t *testing.T) {
	q, args := BuildGalleryQuery(domain.Filter{}.Normalize())

	assert.Contains(t, q, "p.status = $1")
	assert.Contains(t, q, "p.deleted_at IS NULL")
	assert.Contains(t, q, "ORDER BY p.created_at DESC")
	assert.Contains(t, q, "LIMIT $2 OFFSET $3")
	assert.NotContains(t, q, "ILIKE")
	assert.Equal(t, []any{domain.StatusPublished, domain.DefaultLimit, 0}, args)
}

func TestBuildGalleryQuery_AllFilters(t *testing.T) {
	f := domain.Filter{
		Query:       "50%_off",
		TypologyID:  "typ-1",
		LocationID:  "loc-1",
		TagIDs:      []string{"t1", "t2"},
		SoftwareIDs: []string{"s1"},
		Sort:        domain.SortViews,
		Limit:       10,
		Offset:      20,
	}.Normalize()

	q, args := BuildGalleryQuery(f)

	assert.Contains(t, q, `p.title ILIKE $2 ESCAPE '\'`)
	assert.Contains(t, q, "p.building_typology_id::text = $3")
	assert.Contains(t, q, "p.location_id::text = $4")
	assert.Contains(t, q, "ft.tag_id::text = ANY($5::text[])")
	assert.Contains(t, q, "fs.software_id::text = ANY($6::text[])")
	assert.Contains(t, q, "ORDER BY p.views DESC")
	assert.Contains(t, q, "LIMIT $7 OFFSET $8")

	assert.Equal(t, []any{
		domain.StatusPublished,
		`%50\%\_off%`,
		"typ-1",
		"loc-1",
		[]string{"t1", "t2"},
		[]string{"s1"},
		10,
		20,
	}, args)
}

func TestBuildGalleryQuery_SortOrders(t *testing.T) {
	cases := map[string]string{
		domain.SortNewest: "p.created_at DESC",
		domain.SortOldest: "p.created_at ASC",
		domain.SortViews:  "p.views DESC",
		domain.SortAZ:     "lower(p.title) ASC",
		domain.SortZA:     "lower(p.title) DESC",
	}
	for sort, want := range cases {
		q, _ := BuildGalleryQuery(domain.Filter{Sort: sort}.Normalize())
		orderLine := q[strings.Index(q, "ORDER BY"):]
		assert.Contains(t, orderLine, want, sort)
	}
}

func TestRelationBatch(t *testing.T) {
	in := domain.CreateInput{
		TagIDs:             []string{"t1", "t2"},
		SoftwareIDs:        []string{"s1"},
		ContributorIDs:     []string{"u2"},
		ManualContributors: []domain.ManualContributor{{Name: "Ayu", Role: "Drafter"}},
		Images:             []domain.NewImage{{URL: "a", Caption: "Gallery 1"}, {URL: "b", Caption: "Gallery 2"}},
	}
	b, fields := relationBatch("p1", in)
	assert.Equal(t, 7, b.Len())
	assert.Equal(t, []string{
		"tag_ids", "tag_ids", "software_ids", "contributor_ids",
		"manual_contributors", "images", "images",
	}, fields)

	last := b.QueuedQueries[6]
	assert.Contains(t, last.SQL, "INSERT INTO project_images")
	assert.Equal(t, []any{"p1", "b", "Gallery 2", 1}, last.Arguments)

	contrib := b.QueuedQueries[3]
	assert.Equal(t, []any{"p1", "u2", domain.DefaultRole}, contrib.Arguments)
}

func TestReferenceError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		field     string
		wantField string
		wantMsg   string
	}{
		{
			name:      "unknown typology",
			err:       &pgconn.PgError{Code: "23503", TableName: "projects", ConstraintName: "projects_building_typology_id_fkey"},
			field:     "id",
			wantField: "building_typology_id",
			wantMsg:   "unknown reference",
		},
		{
			name:      "unknown owner",
			err:       fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503", TableName: "projects", ConstraintName: "projects_user_id_fkey"}),
			field:     "id",
			wantField: "owner_id",
			wantMsg:   "unknown reference",
		},
		{
			name:      "unknown tag",
			err:       &pgconn.PgError{Code: "23503", TableName: "project_tags", ConstraintName: "project_tags_tag_id_fkey"},
			field:     "tag_ids",
			wantField: "tag_ids",
			wantMsg:   "unknown reference",
		},
		{
			name:      "malformed software id",
			err:       &pgconn.PgError{Code: "22P02"},
			field:     "software_ids",
			wantField: "software_ids",
			wantMsg:   "malformed id",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ve := referenceError(tc.err, tc.field)
			require.NotNil(t, ve)
			assert.Equal(t, tc.wantField, ve.Field)
			assert.Equal(t, tc.wantMsg, ve.Message)
		})
	}

	assert.Nil(t, referenceError(&pgconn.PgError{Code: "23505"}, "id"))
	assert.Nil(t, referenceError(errors.New("conn reset"), "id"))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "x", nullIfEmpty("x"))
}
