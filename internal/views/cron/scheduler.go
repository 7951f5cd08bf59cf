package cronjob

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPruneSchedule runs at 03:00 every night (seconds field first).
const DefaultPruneSchedule = "0 0 3 * * *"

// Pruner deletes expired view log rows.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	pruner  Pruner
	spec    string
	timeout time.Duration
	logger  *zap.Logger
}

func NewScheduler(pruner Pruner, spec string, logger *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultPruneSchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		pruner:  pruner,
		spec:    spec,
		timeout: 5 * time.Minute,
		logger:  logger,
	}
}

// Start registers the nightly prune and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return err
	}
	s.logger.Info("cron scheduler started", zap.String("schedule", s.spec))
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce prunes immediately.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	n, err := s.pruner.Prune(ctx)
	if err != nil {
		s.logger.Error("view prune failed", zap.Error(err))
		return
	}
	s.logger.Info("view prune completed", zap.Int64("rows", n), zap.Duration("took", time.Since(started)))
}
