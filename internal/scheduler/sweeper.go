package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/events"
	"github.com/dcastillo/tasktrail-api/internal/history"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// OverdueSweeper flips past-due tasks to overdue status. Each flip goes
// through the same change-tracking path as a user edit, with a nil actor,
// so the transition shows up in the task's history. Tasks already marked
// overdue are skipped, which makes repeated sweeps idempotent.
type OverdueSweeper struct {
	db       *sql.DB
	tasks    store.TaskStore
	recorder *history.Recorder
	emitter  events.EventEmitter
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewOverdueSweeper creates an OverdueSweeper.
func NewOverdueSweeper(
	db *sql.DB,
	tasks store.TaskStore,
	recorder *history.Recorder,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *OverdueSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &OverdueSweeper{
		db:       db,
		tasks:    tasks,
		recorder: recorder,
		emitter:  emitter,
		timeFunc: time.Now,
		logger:   logger.With("component", "overdue_sweeper"),
	}
}

// SweepOverdue finds unarchived, not-done tasks whose due date has passed
// and marks them overdue. Per-task failures are logged and counted but do
// not stop the sweep; the first error is returned after all tasks were
// attempted. Returns the number of tasks flipped.
func (s *OverdueSweeper) SweepOverdue(ctx context.Context) (int, error) {
	now := s.timeFunc().UTC()

	candidates, err := s.tasks.FindOverdue(ctx, now)
	if err != nil {
		s.logger.Error("failed to find overdue tasks", "error", err)
		return 0, err
	}

	var (
		flipped  int
		firstErr error
	)

	for _, task := range candidates {
		if task.Status == domain.TaskStatusOverdue {
			continue
		}

		if err := s.flipTask(ctx, task); err != nil {
			s.logger.Error("failed to mark task overdue",
				"error", err,
				"task_id", task.ID)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		flipped++
	}

	s.logger.Info("overdue sweep finished",
		"candidates", len(candidates),
		"flipped", flipped)

	return flipped, firstErr
}

// flipTask transitions one task to overdue inside a transaction and emits
// the overdue notification event after the commit.
func (s *OverdueSweeper) flipTask(ctx context.Context, task *domain.Task) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		next := task.Clone()
		next.Status = domain.TaskStatusOverdue

		// Nil actor: the sweep is a system mutation.
		if _, err := s.recorder.WithTx(tx).RecordIfChanged(ctx, task, next, nil); err != nil {
			return err
		}

		return s.tasks.WithTx(tx).UpdateStatus(ctx, task.ID, domain.TaskStatusOverdue)
	})
	if err != nil {
		return err
	}

	event, err := events.NewNotificationEvent(events.NotificationPayload{
		TaskID: task.ID,
		Event:  events.EventKindOverdue,
	})
	if err != nil {
		return err
	}
	return s.emitter.EmitEvent(ctx, event)
}
