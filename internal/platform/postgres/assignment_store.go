package postgres

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

// PostgresAssignmentStore implements the store.AssignmentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAssignmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAssignmentStore creates a new PostgreSQL implementation of the
// AssignmentStore interface. If logger is nil, a default logger will be used.
func NewPostgresAssignmentStore(db store.DBTX, logger *slog.Logger) *PostgresAssignmentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAssignmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "assignment_store")),
	}
}

// Ensure PostgresAssignmentStore implements store.AssignmentStore interface
var _ store.AssignmentStore = (*PostgresAssignmentStore)(nil)

// WithTx implements store.AssignmentStore.WithTx
func (s *PostgresAssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore {
	return &PostgresAssignmentStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.AssignmentStore.Create
// Returns store.ErrAlreadyAssigned if the (task, user) pair already exists
// and store.ErrInvalidEntity if the task or user does not exist.
func (s *PostgresAssignmentStore) Create(
	ctx context.Context,
	assignment *domain.TaskAssignment,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := assignment.Validate(); err != nil {
		log.Warn("assignment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("assignment_id", assignment.ID.String()))
		return err
	}

	query := `
		INSERT INTO task_assignments (id, task_id, user_id, assigned_by, role, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		assignment.ID,
		assignment.TaskID,
		assignment.UserID,
		assignment.AssignedBy,
		assignment.Role,
		assignment.AssignedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("user already assigned to task",
				slog.String("task_id", assignment.TaskID.String()),
				slog.String("user_id", assignment.UserID.String()))
			return fmt.Errorf("%w: %v", store.ErrAlreadyAssigned, err)
		}
		log.Error("failed to create assignment",
			slog.String("error", err.Error()),
			slog.String("assignment_id", assignment.ID.String()))
		return MapError(MapForeignKeyViolation(err, "task or user"))
	}

	log.Info("assignment created successfully",
		slog.String("assignment_id", assignment.ID.String()),
		slog.String("task_id", assignment.TaskID.String()),
		slog.String("user_id", assignment.UserID.String()))
	return nil
}

// ListByTask implements store.AssignmentStore.ListByTask
// Assignments come back in creation order.
func (s *PostgresAssignmentStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.TaskAssignment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, user_id, assigned_by, role, assigned_at
		FROM task_assignments
		WHERE task_id = $1
		ORDER BY assigned_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to query assignments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	assignments := []*domain.TaskAssignment{}
	for rows.Next() {
		var assignment domain.TaskAssignment
		var assignedBy uuid.NullUUID

		err := rows.Scan(
			&assignment.ID,
			&assignment.TaskID,
			&assignment.UserID,
			&assignedBy,
			&assignment.Role,
			&assignment.AssignedAt,
		)
		if err != nil {
			log.Error("failed to scan assignment row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		if assignedBy.Valid {
			id := assignedBy.UUID
			assignment.AssignedBy = &id
		}
		assignments = append(assignments, &assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return assignments, nil
}
