// Package scheduler runs the periodic appointment sync loop.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/inkhaus/studio/internal/clock"
	syncsvc "github.com/inkhaus/studio/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependencies")

// Config controls the sync loop interval and per-run timeout.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 15 * time.Minute,
		JobTimeout:  5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	SyncSvc *syncsvc.Service
	Config  Config `optional:"true"`
}

type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	clock   clock.Clock
	syncSvc *syncsvc.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.SyncSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		clock:   p.Clock,
		syncSvc: p.SyncSvc,
	}, nil
}

// RunOnce performs one sync pass under the job timeout.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	start := s.clock.Now()
	result, err := s.syncSvc.SyncAppointments(ctx, syncsvc.Options{})
	if err != nil {
		return err
	}
	s.log.Info("scheduled sync finished",
		zap.Int("processed", result.Processed),
		zap.Int("errors", result.Errors),
		zap.String("status", result.Status),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// RunForever loops until ctx is cancelled, syncing at every interval tick.
// The first pass runs immediately on start.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
