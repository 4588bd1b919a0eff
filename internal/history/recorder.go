package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/platform/logger"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// Recorder turns tracked-field diffs into persisted change records.
//
// RecordIfChanged must run synchronously in the same unit of work as the
// task write it describes: the task-mutation path binds the recorder to its
// transaction via WithTx, so either the mutation and its history land
// together or neither does.
type Recorder struct {
	records store.ChangeRecordStore
	logger  *slog.Logger
}

// NewRecorder creates a Recorder on top of the given change-record store.
func NewRecorder(records store.ChangeRecordStore, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		records: records,
		logger:  logger.With(slog.String("component", "history_recorder")),
	}
}

// WithTx returns a Recorder whose appends run inside the given transaction.
func (r *Recorder) WithTx(tx *sql.Tx) *Recorder {
	return &Recorder{
		records: r.records.WithTx(tx),
		logger:  r.logger,
	}
}

// RecordIfChanged diffs the stored state of a task against the state about
// to be persisted and appends one change record per differing tracked field,
// attributed to the given actor (nil for system mutations like the overdue
// sweeper). It returns the records written.
//
// A nil prev (task creation) appends nothing. Storage errors propagate to
// the caller; nothing is swallowed here.
func (r *Recorder) RecordIfChanged(
	ctx context.Context,
	prev, next *domain.Task,
	actor *uuid.UUID,
) ([]*domain.ChangeRecord, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	changes := Diff(prev, next)
	if len(changes) == 0 {
		return nil, nil
	}

	records := make([]*domain.ChangeRecord, 0, len(changes))
	for _, change := range changes {
		record, err := domain.NewChangeRecord(next.ID, actor, change.Field, change.Old, change.New)
		if err != nil {
			return nil, fmt.Errorf("failed to build change record for field %q: %w", change.Field, err)
		}
		records = append(records, record)
	}

	if err := r.records.Append(ctx, records); err != nil {
		log.Error("failed to append change records",
			slog.String("task_id", next.ID.String()),
			slog.Int("record_count", len(records)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to append change records: %w", err)
	}

	log.Debug("change records appended",
		slog.String("task_id", next.ID.String()),
		slog.Int("record_count", len(records)))

	return records, nil
}
