package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/dcastillo/tasktrail-api/internal/config"
)

// Scheduler owns the cron loop and ties the maintenance jobs to their
// configured schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a Scheduler and registers the three maintenance jobs on their
// configured cron expressions. Returns an error if an expression does not
// parse.
func New(
	cfg config.SchedulerConfig,
	sweeper *OverdueSweeper,
	summarizer *DailySummarizer,
	purger *ArchivePurger,
	logger *slog.Logger,
) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "scheduler")

	c := cron.New()

	if _, err := c.AddFunc(cfg.OverdueSweepSpec, func() {
		if _, err := sweeper.SweepOverdue(context.Background()); err != nil {
			log.Error("overdue sweep failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid overdue sweep schedule %q: %w", cfg.OverdueSweepSpec, err)
	}

	if _, err := c.AddFunc(cfg.DailySummarySpec, func() {
		if _, err := summarizer.SummarizeDaily(context.Background()); err != nil {
			log.Error("daily summary failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid daily summary schedule %q: %w", cfg.DailySummarySpec, err)
	}

	if _, err := c.AddFunc(cfg.ArchivePurgeSpec, func() {
		if _, err := purger.PurgeOldArchived(context.Background()); err != nil {
			log.Error("archive purge failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid archive purge schedule %q: %w", cfg.ArchivePurgeSpec, err)
	}

	return &Scheduler{
		cron:   c,
		logger: log,
	}, nil
}

// Start begins running the scheduled jobs in their own goroutines.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler starting")
	s.cron.Start()
}

// Stop stops the cron loop and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
