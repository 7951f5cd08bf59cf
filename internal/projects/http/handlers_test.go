package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arch-iv/archiv-api/internal/api/http/validation"
	"github.com/arch-iv/archiv-api/internal/auth"
	authmw "github.com/arch-iv/archiv-api/internal/auth/middleware"
	"github.com/arch-iv/archiv-api/internal/projects/domain"
	"github.com/arch-iv/archiv-api/internal/projects/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeProjects struct {
	filter    domain.Filter
	actor     service.Actor
	input     domain.CreateInput
	getErr    error
	createErr error
	deleteErr error
	listErr   error
}

func (f *fakeProjects) List(_ context.Context, flt domain.Filter) ([]domain.Card, error) {
	f.filter = flt
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []domain.Card{{Slug: "a-1", Tags: []string{}, Software: []string{}}}, nil
}

func (f *fakeProjects) Get(_ context.Context, slug string) (*domain.Detail, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &domain.Detail{Slug: slug}, nil
}

func (f *fakeProjects) Create(_ context.Context, actor service.Actor, in domain.CreateInput) (*domain.Created, error) {
	f.actor, f.input = actor, in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Created{ID: "p1", Slug: "rumah-1"}, nil
}

func (f *fakeProjects) Delete(_ context.Context, actor service.Actor, _ string) error {
	f.actor = actor
	return f.deleteErr
}

func newRouter(svc ProjectService, userID string, admin bool) *gin.Engine {
	r := gin.New()
	h := New(svc, nil)
	h.RegisterPublic(r.Group("/api/v1/projects"))
	authed := r.Group("/api/v1/projects", func(c *gin.Context) {
		auth.SetIdentity(c, &auth.Identity{UserID: userID})
		c.Set(authmw.CtxIsAdmin, admin)
	})
	h.RegisterAuthed(authed)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestListParsesQuery(t *testing.T) {
	svc := &fakeProjects{}
	rr := do(newRouter(svc, "u1", false), http.MethodGet,
		"/api/v1/projects?q=kaca&typology=t1&location=all&tags=a,b&software=s1&sort=az&limit=12&offset=24", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "kaca", svc.filter.Query)
	assert.Equal(t, "t1", svc.filter.TypologyID)
	assert.Equal(t, "all", svc.filter.LocationID)
	assert.Equal(t, []string{"a", "b"}, svc.filter.TagIDs)
	assert.Equal(t, []string{"s1"}, svc.filter.SoftwareIDs)
	assert.Equal(t, "az", svc.filter.Sort)
	assert.Equal(t, 12, svc.filter.Limit)
	assert.Equal(t, 24, svc.filter.Offset)

	body := decode(t, rr)
	assert.Equal(t, true, body["ok"])
	assert.Len(t, body["projects"], 1)
}

func TestListBadLimitFallsBack(t *testing.T) {
	svc := &fakeProjects{}
	rr := do(newRouter(svc, "u1", false), http.MethodGet, "/api/v1/projects?limit=abc", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, svc.filter.Limit)
}

func TestListError(t *testing.T) {
	rr := do(newRouter(&fakeProjects{listErr: errors.New("db down")}, "u1", false), http.MethodGet, "/api/v1/projects", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "db down")
}

func TestGetProject(t *testing.T) {
	rr := do(newRouter(&fakeProjects{}, "", false), http.MethodGet, "/api/v1/projects/rumah-kaca-1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(newRouter(&fakeProjects{getErr: domain.ErrNotFound}, "", false), http.MethodGet, "/api/v1/projects/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(newRouter(&fakeProjects{}, "", false), http.MethodGet, "/api/v1/projects/bad%20slug", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

const validBody = `{
  "title": "Rumah Kaca",
  "gltf_url": "https://cdn.arch-iv.app/models/u1/m.glb",
  "thumbnail_url": "https://cdn.arch-iv.app/images/u1/t.webp",
  "completion_date": "2023-08-17",
  "tag_ids": ["t1"],
  "manual_contributors": [{"name": "Ayu", "role": "Drafter"}],
  "images": [{"url": "https://cdn.arch-iv.app/images/u1/a.webp"}],
  "owner_id": "u9"
}`

func TestCreateProject(t *testing.T) {
	svc := &fakeProjects{}
	rr := do(newRouter(svc, "u1", true), http.MethodPost, "/api/v1/projects", validBody)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, service.Actor{UserID: "u1", IsAdmin: true}, svc.actor)
	assert.Equal(t, "Rumah Kaca", svc.input.Title)
	assert.Equal(t, "u9", svc.input.OwnerID)
	require.NotNil(t, svc.input.CompletionDate)
	assert.Equal(t, 2023, svc.input.CompletionDate.Year())
	assert.Equal(t, []domain.ManualContributor{{Name: "Ayu", Role: "Drafter"}}, svc.input.ManualContributors)
	require.Len(t, svc.input.Images, 1)

	body := decode(t, rr)
	project := body["project"].(map[string]any)
	assert.Equal(t, "rumah-1", project["slug"])
}

func TestCreateProjectValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"gltf_url":"https://x/m.glb","thumbnail_url":"https://x/t.webp"}`, "title is required"},
		{"bad url", `{"title":"a","gltf_url":"nope","thumbnail_url":"https://x/t.webp"}`, "gltf_url must be a valid URL"},
		{"bad status", `{"title":"a","gltf_url":"https://x/m.glb","thumbnail_url":"https://x/t.webp","status":"gone"}`, "status must be one of"},
		{"bad date", `{"title":"a","gltf_url":"https://x/m.glb","thumbnail_url":"https://x/t.webp","completion_date":"17/08/2023"}`, "completion_date"},
		{"not json", `{`, "invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(newRouter(&fakeProjects{}, "u1", false), http.MethodPost, "/api/v1/projects", tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, decode(t, rr)["error"], tc.want)
		})
	}
}

func TestCreateProjectServiceErrors(t *testing.T) {
	svc := &fakeProjects{createErr: &domain.ValidationError{Field: "owner_id", Message: "owner_id or author_name is required"}}
	rr := do(newRouter(svc, "u1", true), http.MethodPost, "/api/v1/projects", validBody)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	svc = &fakeProjects{createErr: &domain.ValidationError{Field: "tag_ids", Message: "unknown reference"}}
	rr = do(newRouter(svc, "u1", false), http.MethodPost, "/api/v1/projects", validBody)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "tag_ids: unknown reference", decode(t, rr)["error"])

	svc = &fakeProjects{createErr: domain.ErrSlugExhausted}
	rr = do(newRouter(svc, "u1", false), http.MethodPost, "/api/v1/projects", validBody)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestDeleteProject(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"missing", domain.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeProjects{deleteErr: tc.err}
			rr := do(newRouter(svc, "u1", false), http.MethodDelete, "/api/v1/projects/rumah-1", "")
			assert.Equal(t, tc.want, rr.Code)
			assert.Equal(t, "u1", svc.actor.UserID)
		})
	}
}
