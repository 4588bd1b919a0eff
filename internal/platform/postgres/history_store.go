package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/platform/logger"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// PostgresChangeRecordStore implements the store.ChangeRecordStore interface
// using a PostgreSQL database as the storage backend. The task_history table
// is append-only; rows leave it only through the task-delete cascade.
type PostgresChangeRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChangeRecordStore creates a new PostgreSQL implementation of the
// ChangeRecordStore interface. If logger is nil, a default logger will be used.
func NewPostgresChangeRecordStore(db store.DBTX, logger *slog.Logger) *PostgresChangeRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresChangeRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "change_record_store")),
	}
}

// Ensure PostgresChangeRecordStore implements store.ChangeRecordStore interface
var _ store.ChangeRecordStore = (*PostgresChangeRecordStore)(nil)

// WithTx implements store.ChangeRecordStore.WithTx
func (s *PostgresChangeRecordStore) WithTx(tx *sql.Tx) store.ChangeRecordStore {
	return &PostgresChangeRecordStore{
		db:     tx,
		logger: s.logger,
	}
}

// Append implements store.ChangeRecordStore.Append
// Records are written in slice order; the seq column preserves that order
// for records sharing a timestamp.
func (s *PostgresChangeRecordStore) Append(
	ctx context.Context,
	records []*domain.ChangeRecord,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO task_history (id, task_id, changed_by, field_changed,
			old_value, new_value, changed_at, seq)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, record := range records {
		if err := record.Validate(); err != nil {
			log.Warn("change record validation failed during append",
				slog.String("error", err.Error()),
				slog.String("record_id", record.ID.String()))
			return err
		}

		if record.ChangedAt.IsZero() {
			record.ChangedAt = time.Now().UTC()
		}

		_, err := s.db.ExecContext(
			ctx,
			query,
			record.ID,
			record.TaskID,
			record.ChangedBy,
			record.Field,
			record.OldValue,
			record.NewValue,
			record.ChangedAt,
			i,
		)
		if err != nil {
			log.Error("failed to append change record",
				slog.String("error", err.Error()),
				slog.String("record_id", record.ID.String()),
				slog.String("task_id", record.TaskID.String()),
				slog.String("field", record.Field))
			return MapError(MapForeignKeyViolation(err, "task"))
		}
	}

	log.Debug("appended change records",
		slog.String("task_id", records[0].TaskID.String()),
		slog.Int("count", len(records)))
	return nil
}

// ListByTask implements store.ChangeRecordStore.ListByTask
// Records come back in insertion order.
func (s *PostgresChangeRecordStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.ChangeRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, changed_by, field_changed, old_value, new_value, changed_at
		FROM task_history
		WHERE task_id = $1
		ORDER BY changed_at ASC, seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to query change records",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	records := []*domain.ChangeRecord{}
	for rows.Next() {
		var record domain.ChangeRecord
		var changedBy uuid.NullUUID

		err := rows.Scan(
			&record.ID,
			&record.TaskID,
			&changedBy,
			&record.Field,
			&record.OldValue,
			&record.NewValue,
			&record.ChangedAt,
		)
		if err != nil {
			log.Error("failed to scan change record row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		if changedBy.Valid {
			id := changedBy.UUID
			record.ChangedBy = &id
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("listed change records",
		slog.String("task_id", taskID.String()),
		slog.Int("count", len(records)))
	return records, nil
}
