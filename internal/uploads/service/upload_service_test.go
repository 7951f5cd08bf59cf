package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arch-iv/archiv-api/internal/uploads/domain"
)

type fakeStore struct {
	key, contentType string
	size             int64
	ttl              time.Duration
	body             string
	err              error
}

func (f *fakeStore) PresignPut(_ context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	f.key, f.contentType, f.size, f.ttl = key, contentType, size, ttl
	if f.err != nil {
		return "", f.err
	}
	return "https://signed.example/" + key, nil
}

func (f *fakeStore) Put(_ context.Context, key, contentType string, body io.Reader, size int64) error {
	f.key, f.contentType, f.size = key, contentType, size
	b, _ := io.ReadAll(body)
	f.body = string(b)
	return f.err
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

func newService(store ObjectStore) *UploadService {
	s := NewUploadService(store, 0)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	s.newID = func() string { return "uuid-1" }
	return s
}

func TestPresign(t *testing.T) {
	store := &fakeStore{}
	out, err := newService(store).Presign(context.Background(), "u1", domain.UploadRequest{
		Filename: "Rumah Kaca.glb",
		Folder:   domain.FolderModels,
		Size:     4096,
	})
	require.NoError(t, err)

	assert.Equal(t, "models/u1/uuid-1-Rumah_Kaca.glb", out.Key)
	assert.Equal(t, "https://signed.example/models/u1/uuid-1-Rumah_Kaca.glb", out.UploadURL)
	assert.Equal(t, "https://cdn.example/models/u1/uuid-1-Rumah_Kaca.glb", out.PublicURL)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 19, 5, 0, time.UTC), out.ExpiresAt)
	assert.Equal(t, domain.TypeGLB, store.contentType)
	assert.EqualValues(t, 4096, store.size)
	assert.Equal(t, 15*time.Minute, store.ttl)
}

func TestPresignValidation(t *testing.T) {
	store := &fakeStore{}
	_, err := newService(store).Presign(context.Background(), "u1", domain.UploadRequest{
		Filename: "a.png", Folder: domain.FolderImages, Size: 21 * domain.MiB,
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Empty(t, store.key)
}

func TestPresignStoreError(t *testing.T) {
	boom := errors.New("sign failed")
	_, err := newService(&fakeStore{err: boom}).Presign(context.Background(), "u1", domain.UploadRequest{
		Filename: "a.png", Folder: domain.FolderImages, Size: 1,
	})
	assert.ErrorIs(t, err, boom)
}

func TestStorageDisabled(t *testing.T) {
	s := NewUploadService(nil, time.Minute)
	_, err := s.Presign(context.Background(), "u1", domain.UploadRequest{})
	assert.ErrorIs(t, err, domain.ErrStorageDisabled)
	_, err = s.Upload(context.Background(), "u1", domain.UploadRequest{}, strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrStorageDisabled)
}

func TestUploadDefaultsToLegacyFolder(t *testing.T) {
	store := &fakeStore{}
	out, err := newService(store).Upload(context.Background(), "u1", domain.UploadRequest{
		Filename: "notes.txt", Size: 5,
	}, strings.NewReader("hello"))
	require.NoError(t, err)

	assert.Equal(t, "uploads/u1/uuid-1-notes.txt", out.Key)
	assert.Equal(t, "https://cdn.example/uploads/u1/uuid-1-notes.txt", out.URL)
	assert.Equal(t, domain.TypeOctetStream, store.contentType)
	assert.Equal(t, "hello", store.body)
}
