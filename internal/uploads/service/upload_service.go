package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/arch-iv/archiv-api/internal/uploads/domain"
)

// ObjectStore is implemented by r2.Client.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error)
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PublicURL(key string) string
}

// Presigned is handed back to the browser, which PUTs the file itself.
type Presigned struct {
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"publicUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Stored describes an object written by the server.
type Stored struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type UploadService struct {
	store ObjectStore
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

func NewUploadService(store ObjectStore, ttl time.Duration) *UploadService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &UploadService{store: store, ttl: ttl, now: time.Now, newID: uuid.NewString}
}

// Presign validates the request and signs a single PUT for the caller's key.
func (s *UploadService) Presign(ctx context.Context, userID string, req domain.UploadRequest) (*Presigned, error) {
	if s.store == nil {
		return nil, domain.ErrStorageDisabled
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := domain.ObjectKey(req.Folder, userID, s.newID(), req.Filename)
	expires := s.now().Add(s.ttl).UTC()

	u, err := s.store.PresignPut(ctx, key, req.ContentType, req.Size, s.ttl)
	if err != nil {
		return nil, err
	}
	return &Presigned{
		UploadURL: u,
		PublicURL: s.store.PublicURL(key),
		Key:       key,
		ExpiresAt: expires,
	}, nil
}

// Upload streams body to storage on the caller's behalf.
func (s *UploadService) Upload(ctx context.Context, userID string, req domain.UploadRequest, body io.Reader) (*Stored, error) {
	if s.store == nil {
		return nil, domain.ErrStorageDisabled
	}
	if req.Folder == "" {
		req.Folder = domain.FolderLegacy
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := domain.ObjectKey(req.Folder, userID, s.newID(), req.Filename)
	if err := s.store.Put(ctx, key, req.ContentType, body, req.Size); err != nil {
		return nil, err
	}
	return &Stored{URL: s.store.PublicURL(key), Key: key}, nil
}
