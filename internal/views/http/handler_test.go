package http

import (
	"context"
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
	"github.com/arch-iv/archiv-api/internal/views/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeTracker struct {
	deny     bool
	err      error
	slug, ip string
}

func (f *fakeTracker) Allow(context.Context, string) bool { return !f.deny }

func (f *fakeTracker) Track(_ context.Context, slug, ip string) (domain.Result, error) {
	f.slug, f.ip = slug, ip
	if f.err != nil {
		return domain.Result{}, f.err
	}
	return domain.Result{Views: 42, Counted: true}, nil
}

func post(tr Tracker, body string, headers map[string]string) *httptest.ResponseRecorder {
	r := gin.New()
	New(tr, nil).Register(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/views", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestTrackView(t *testing.T) {
	tr := &fakeTracker{}
	rr := post(tr, `{"slug":"rumah-kaca-1712345678901"}`, map[string]string{"X-Forwarded-For": "9.9.9.9, 10.0.0.1"})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"views":42,"counted":true}`, rr.Body.String())
	assert.Equal(t, "rumah-kaca-1712345678901", tr.slug)
	assert.Equal(t, "9.9.9.9", tr.ip)
}

func TestTrackViewInvalidSlug(t *testing.T) {
	for _, body := range []string{`{}`, `{"slug":""}`, `{"slug":"../etc"}`, `{"slug":42}`, `not json`} {
		rr := post(&fakeTracker{}, body, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Contains(t, rr.Body.String(), "Missing or invalid slug", body)
	}
}

func TestTrackViewRateLimited(t *testing.T) {
	tr := &fakeTracker{deny: true}
	rr := post(tr, `{"slug":"a"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "Too many requests")
	assert.Empty(t, tr.slug)
}

func TestTrackViewErrors(t *testing.T) {
	rr := post(&fakeTracker{err: domain.ErrProjectNotFound}, `{"slug":"gone"}`, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = post(&fakeTracker{err: errors.New("db down")}, `{"slug":"a"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to track view")
}
