package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arch-iv/archiv-api/internal/pdfraster"
	uploaddomain "github.com/arch-iv/archiv-api/internal/uploads/domain"
)

const defaultUploadWorkers = 4

var (
	ErrNotPDF    = errors.New("file is not a PDF")
	ErrTooLarge  = errors.New("PDF exceeds the documents size limit")
	ErrNoPages   = errors.New("no page of the PDF could be rendered")
	ErrNoStorage = uploaddomain.ErrStorageDisabled
)

// ObjectStore is the write side of r2.Client.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PublicURL(key string) string
}

// StoredPage is one uploaded page image.
type StoredPage struct {
	Page int    `json:"page"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Key  string `json:"key"`
}

type ConvertService struct {
	store   ObjectStore
	opts    pdfraster.Options
	workers int
	logger  *zap.Logger

	open  func([]byte) (pdfraster.Document, error)
	newID func() string
}

func NewConvertService(store ObjectStore, opts pdfraster.Options, logger *zap.Logger) *ConvertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConvertService{
		store:   store,
		opts:    opts,
		workers: defaultUploadWorkers,
		logger:  logger,
		open:    pdfraster.Open,
		newID:   uuid.NewString,
	}
}

// Convert rasterizes a PDF and uploads every page under the caller's documents folder.
// Pages come back in page order.
func (s *ConvertService) Convert(ctx context.Context, userID, filename string, data []byte) ([]StoredPage, error) {
	if s.store == nil {
		return nil, ErrNoStorage
	}
	if int64(len(data)) > uploaddomain.MaxSize(uploaddomain.FolderDocuments) {
		return nil, ErrTooLarge
	}
	if !pdfraster.IsPDF(data) {
		return nil, ErrNotPDF
	}

	doc, err := s.open(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	name := pdfraster.BaseName(filename)
	started := time.Now()
	pages, err := pdfraster.Convert(ctx, doc, name, s.opts, func(cur, total int) {
		s.logger.Debug("rendering page", zap.String("file", name), zap.Int("page", cur), zap.Int("total", total))
	})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	prefix := uploaddomain.FolderDocuments + "/" + userID + "/" + s.newID() + "/"
	out := make([]StoredPage, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range pages {
		g.Go(func() error {
			key := prefix + p.Name
			if err := s.store.Put(gctx, key, uploaddomain.TypeWebP, bytes.NewReader(p.Data), int64(len(p.Data))); err != nil {
				return fmt.Errorf("upload page %d: %w", p.Number, err)
			}
			out[i] = StoredPage{Page: p.Number, Name: p.Name, URL: s.store.PublicURL(key), Key: key}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("pdf converted",
		zap.String("file", name),
		zap.Int("pages", len(out)),
		zap.Duration("took", time.Since(started)),
	)
	return out, nil
}
