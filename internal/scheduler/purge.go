package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/dcastillo/tasktrail-api/internal/store"
)

// ArchivePurger permanently deletes archived tasks whose last update is
// older than the retention period. Comments, assignments, and history go
// with them through the delete cascade. No notifications are sent; the
// tasks were already archived and out of sight.
type ArchivePurger struct {
	tasks         store.TaskStore
	retentionDays int
	timeFunc      func() time.Time
	logger        *slog.Logger
}

// NewArchivePurger creates an ArchivePurger with the given retention in days.
func NewArchivePurger(tasks store.TaskStore, retentionDays int, logger *slog.Logger) *ArchivePurger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchivePurger{
		tasks:         tasks,
		retentionDays: retentionDays,
		timeFunc:      time.Now,
		logger:        logger.With("component", "archive_purger"),
	}
}

// PurgeOldArchived deletes archived tasks untouched for longer than the
// retention period. Returns the number of tasks deleted.
func (p *ArchivePurger) PurgeOldArchived(ctx context.Context) (int64, error) {
	cutoff := p.timeFunc().UTC().AddDate(0, 0, -p.retentionDays)

	deleted, err := p.tasks.DeleteArchivedBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to purge archived tasks",
			"error", err,
			"cutoff", cutoff)
		return 0, err
	}

	p.logger.Info("archived task purge finished",
		"deleted", deleted,
		"cutoff", cutoff)
	return deleted, nil
}
