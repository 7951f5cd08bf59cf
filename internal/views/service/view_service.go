package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/arch-iv/archiv-api/internal/views/domain"
	"github.com/arch-iv/archiv-api/internal/views/ratelimit"
)

// Store is implemented by repository.ViewRepository.
type Store interface {
	Increment(ctx context.Context, slug, ip string, now, dedupSince time.Time) (domain.Result, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

type Config struct {
	DedupWindow time.Duration
	Retention   time.Duration
}

type ViewService struct {
	store   Store
	limiter ratelimit.Limiter
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time

	// Limits limiter outage warnings to one per minute.
	outageLog rate.Sometimes
}

func NewViewService(store Store, limiter ratelimit.Limiter, cfg Config, logger *zap.Logger) *ViewService {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = 24 * time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewService{
		store:     store,
		limiter:   limiter,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		outageLog: rate.Sometimes{First: 1, Interval: time.Minute},
	}
}

// Allow applies the per-IP rate limit. A limiter outage lets the request through.
func (s *ViewService) Allow(ctx context.Context, ip string) bool {
	if s.limiter == nil {
		return true
	}
	ok, err := s.limiter.Allow(ctx, ip)
	if err != nil {
		s.outageLog.Do(func() {
			s.logger.Warn("rate limiter unavailable, allowing requests", zap.Error(err))
		})
		return true
	}
	return ok
}

// Track records a view of slug from ip. Callers apply Allow first.
func (s *ViewService) Track(ctx context.Context, slug, ip string) (domain.Result, error) {
	now := s.now().UTC()
	return s.store.Increment(ctx, slug, ip, now, now.Add(-s.cfg.DedupWindow))
}

// Prune removes view log rows past the retention period.
func (s *ViewService) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.cfg.Retention)
	n, err := s.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.Info("pruned project views", zap.Int64("rows", n), zap.Time("cutoff", cutoff))
	return n, nil
}
