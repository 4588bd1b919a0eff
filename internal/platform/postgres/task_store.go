package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/platform/logger"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// defaultListLimit bounds List results when the caller does not set one.
const defaultListLimit = 50

// taskColumns is the column list shared by every task SELECT.
const taskColumns = `id, title, description, status, priority, due_date,
	estimated_hours, actual_hours, created_by, parent_task_id, metadata,
	is_archived, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task plus its assignee and tag references.
// Returns store.ErrInvalidEntity if a referenced user, parent task, or tag
// does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, status, priority, due_date,
			estimated_hours, actual_hours, created_by, parent_task_id, metadata,
			is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.EstimatedHours,
		task.ActualHours,
		task.CreatedBy,
		task.ParentTaskID,
		[]byte(task.Metadata),
		task.IsArchived,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := s.insertAssignments(ctx, task.ID, task.AssigneeIDs, &task.CreatedBy); err != nil {
		return err
	}

	if err := s.insertTags(ctx, task.ID, task.TagIDs); err != nil {
		return err
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	if err := s.loadRelations(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// It persists all mutable fields and replaces the task's assignee and tag
// reference sets. Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4,
			due_date = $5, estimated_hours = $6, actual_hours = $7,
			parent_task_id = $8, metadata = $9, is_archived = $10,
			updated_at = $11
		WHERE id = $12
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.EstimatedHours,
		task.ActualHours,
		task.ParentTaskID,
		[]byte(task.Metadata),
		task.IsArchived,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	if err := s.syncAssignments(ctx, task.ID, task.AssigneeIDs); err != nil {
		return err
	}

	if err := s.syncTags(ctx, task.ID, task.TagIDs); err != nil {
		return err
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.TaskStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		return domain.ErrTaskStatusInvalid
	}

	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Debug("task not found for status update", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete implements store.TaskStore.Delete
// Comments, change records, and assignments go with the task via
// ON DELETE CASCADE. Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// List implements store.TaskStore.List
// Returns tasks matching the filter, newest first.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	var args []interface{}

	if !filter.IncludeArchived {
		query += ` AND is_archived = FALSE`
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		query += fmt.Sprintf(" AND created_by = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	tasks, err := s.queryTasks(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// FindOverdue implements store.TaskStore.FindOverdue
// Unarchived, not-done tasks due before the given instant, oldest due first.
func (s *PostgresTaskStore) FindOverdue(
	ctx context.Context,
	now time.Time,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE is_archived = FALSE AND status <> $1 AND due_date < $2
		ORDER BY due_date ASC`

	tasks, err := s.queryTasks(ctx, query, domain.TaskStatusDone, now)
	if err != nil {
		log.Error("failed to find overdue tasks", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("found overdue tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// ListUpdatedSince implements store.TaskStore.ListUpdatedSince
func (s *PostgresTaskStore) ListUpdatedSince(
	ctx context.Context,
	since time.Time,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE is_archived = FALSE AND updated_at >= $1
		ORDER BY updated_at DESC`

	tasks, err := s.queryTasks(ctx, query, since)
	if err != nil {
		log.Error("failed to list recently updated tasks", slog.String("error", err.Error()))
		return nil, err
	}

	return tasks, nil
}

// DeleteArchivedBefore implements store.TaskStore.DeleteArchivedBefore
func (s *PostgresTaskStore) DeleteArchivedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE is_archived = TRUE AND updated_at < $1`, cutoff)
	if err != nil {
		log.Error("failed to purge archived tasks", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if deleted > 0 {
		log.Info("purged archived tasks", slog.Int64("count", deleted))
	}
	return deleted, nil
}

// queryTasks runs a SELECT over taskColumns and loads relations for every row.
func (s *PostgresTaskStore) queryTasks(
	ctx context.Context,
	query string,
	args ...interface{},
) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	for _, task := range tasks {
		if err := s.loadRelations(ctx, task); err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTask reads one task row into a domain.Task.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status, priority string
	var actualHours sql.NullFloat64
	var parentTaskID uuid.NullUUID
	var metadata []byte

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.DueDate,
		&task.EstimatedHours,
		&actualHours,
		&task.CreatedBy,
		&parentTaskID,
		&metadata,
		&task.IsArchived,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	if actualHours.Valid {
		task.ActualHours = &actualHours.Float64
	}
	if parentTaskID.Valid {
		id := parentTaskID.UUID
		task.ParentTaskID = &id
	}
	task.Metadata = metadata

	return &task, nil
}

// loadRelations populates AssigneeIDs and TagIDs for the task.
func (s *PostgresTaskStore) loadRelations(ctx context.Context, task *domain.Task) error {
	assignees, err := s.queryIDs(ctx,
		`SELECT user_id FROM task_assignments WHERE task_id = $1 ORDER BY assigned_at ASC`,
		task.ID)
	if err != nil {
		return fmt.Errorf("failed to load task assignees: %w", err)
	}
	task.AssigneeIDs = assignees

	tags, err := s.queryIDs(ctx,
		`SELECT tag_id FROM task_tags WHERE task_id = $1 ORDER BY tag_id ASC`,
		task.ID)
	if err != nil {
		return fmt.Errorf("failed to load task tags: %w", err)
	}
	task.TagIDs = tags

	return nil
}

// queryIDs returns the single-uuid-column result of the given query.
func (s *PostgresTaskStore) queryIDs(
	ctx context.Context,
	query string,
	args ...interface{},
) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// insertAssignments creates assignment rows with the default role for each
// assignee. assignedBy records who made the assignment; the task creator for
// rows written during task creation.
func (s *PostgresTaskStore) insertAssignments(
	ctx context.Context,
	taskID uuid.UUID,
	userIDs []uuid.UUID,
	assignedBy *uuid.UUID,
) error {
	query := `
		INSERT INTO task_assignments (id, task_id, user_id, assigned_by, role, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (task_id, user_id) DO NOTHING
	`
	now := time.Now().UTC()
	for _, userID := range userIDs {
		_, err := s.db.ExecContext(ctx, query,
			uuid.New(), taskID, userID, assignedBy, domain.DefaultAssignmentRole, now)
		if err != nil {
			return MapError(MapForeignKeyViolation(err, "user"))
		}
	}
	return nil
}

// syncAssignments reconciles the task_assignments rows with the given set,
// keeping existing rows (and their roles) for users that remain assigned.
func (s *PostgresTaskStore) syncAssignments(
	ctx context.Context,
	taskID uuid.UUID,
	userIDs []uuid.UUID,
) error {
	existing, err := s.queryIDs(ctx,
		`SELECT user_id FROM task_assignments WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to load current assignees: %w", err)
	}

	wanted := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	current := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		current[id] = struct{}{}
	}

	for _, id := range existing {
		if _, keep := wanted[id]; !keep {
			_, err := s.db.ExecContext(ctx,
				`DELETE FROM task_assignments WHERE task_id = $1 AND user_id = $2`,
				taskID, id)
			if err != nil {
				return MapError(err)
			}
		}
	}

	var added []uuid.UUID
	for _, id := range userIDs {
		if _, have := current[id]; !have {
			added = append(added, id)
		}
	}
	return s.insertAssignments(ctx, taskID, added, nil)
}

// insertTags creates task_tags junction rows.
func (s *PostgresTaskStore) insertTags(
	ctx context.Context,
	taskID uuid.UUID,
	tagIDs []uuid.UUID,
) error {
	query := `
		INSERT INTO task_tags (task_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (task_id, tag_id) DO NOTHING
	`
	for _, tagID := range tagIDs {
		if _, err := s.db.ExecContext(ctx, query, taskID, tagID); err != nil {
			return MapError(MapForeignKeyViolation(err, "tag"))
		}
	}
	return nil
}

// syncTags replaces the task_tags rows with the given set.
func (s *PostgresTaskStore) syncTags(
	ctx context.Context,
	taskID uuid.UUID,
	tagIDs []uuid.UUID,
) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		return MapError(err)
	}
	return s.insertTags(ctx, taskID, tagIDs)
}
