// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// refreshTimeout bounds one refresh run, including the reload of every
// workbook the warm-up touches.
const refreshTimeout = 5 * time.Minute

// Refresher drops cached views and reloads the expensive ones
type Refresher interface {
	ResetCache()
	Warm(ctx context.Context) error
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	target Refresher
	logger *slog.Logger
}

// NewScheduler creates a job scheduler that refreshes target on spec.
// An empty spec disables the job.
func NewScheduler(spec string, target Refresher, logger *slog.Logger) *Scheduler {
	// Standard 5-field format, no seconds
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:   c,
		spec:   spec,
		target: target,
		logger: logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.logger.Info("cache refresh job disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.refresh); err != nil {
		return fmt.Errorf("failed to schedule cache refresh %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("spec", s.spec),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop stops the scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow triggers a refresh outside the schedule.
func (s *Scheduler) RunNow() {
	go s.refresh()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	s.target.ResetCache()

	if err := s.target.Warm(ctx); err != nil {
		s.logger.Warn("cache refresh failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("error", err),
		)
		return
	}

	s.logger.Info("cache refresh completed",
		slog.Duration("elapsed", time.Since(start)),
	)
}
