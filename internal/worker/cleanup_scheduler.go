// Package worker runs background jobs next to the HTTP server.
package worker

import (
	"context"
	"time"

	"lola-discovery-be/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Cleaner removes sessions idle for longer than the threshold.
type Cleaner interface {
	CleanupStale(ctx context.Context, thresholdMinutes int) (int64, error)
}

// CleanupScheduler triggers the stale-session sweep on a cron schedule.
type CleanupScheduler struct {
	cron             *cron.Cron
	cleaner          Cleaner
	thresholdMinutes int
	timeout          time.Duration
	logger           logger.ILogger
}

func NewCleanupScheduler(cleaner Cleaner, thresholdMinutes int, logger logger.ILogger) *CleanupScheduler {
	// standard 5-field expressions plus descriptors such as "@every 10m"
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	return &CleanupScheduler{
		cron:             c,
		cleaner:          cleaner,
		thresholdMinutes: thresholdMinutes,
		timeout:          time.Minute,
		logger:           logger,
	}
}

// Schedule registers the sweep. It returns an error if expr is invalid.
func (s *CleanupScheduler) Schedule(expr string) error {
	_, err := s.cron.AddFunc(expr, s.RunOnce)
	return err
}

// RunOnce performs a single sweep.
func (s *CleanupScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	removed, err := s.cleaner.CleanupStale(ctx, s.thresholdMinutes)
	if err != nil {
		s.logger.Error("CLEANUP", "Stale session cleanup failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if removed > 0 {
		s.logger.Info("CLEANUP", "Stale sessions removed", map[string]interface{}{
			"removed":           removed,
			"threshold_minutes": s.thresholdMinutes,
		})
	}
}

func (s *CleanupScheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *CleanupScheduler) Stop() {
	<-s.cron.Stop().Done()
}
