package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
)

// TaskFilter narrows List results. Zero values mean "no constraint".
type TaskFilter struct {
	Status          *domain.TaskStatus
	Priority        *domain.TaskPriority
	CreatedBy       *uuid.UUID
	Search          string // matches title or description, case-insensitive
	IncludeArchived bool
	Limit           int
	Offset          int
}

// TaskStore defines the interface for task data persistence.
// Version: 1.0
type TaskStore interface {
	// Create saves a new task to the store, including its assignee and tag
	// references. Returns validation errors if the task data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID, with assignee and tag ids
	// populated. Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists all mutable fields of the task, replacing assignee and
	// tag references with the task's current sets, and refreshes the
	// updated_at timestamp. Returns ErrTaskNotFound if the task does not
	// exist.
	Update(ctx context.Context, task *domain.Task) error

	// UpdateStatus persists only the task's status field (plus updated_at).
	// Used by the overdue sweeper. Returns ErrTaskNotFound if the task does
	// not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	//
	// Comments, change records, and assignments owned by the task are removed
	// by ON DELETE CASCADE constraints in the schema; this method does not
	// delete them in application code.
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves tasks matching the filter, newest first.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// FindOverdue retrieves unarchived tasks whose due date is before the
	// given instant and whose status is not done, oldest due date first.
	// Already-overdue tasks are included so callers can decide idempotently.
	FindOverdue(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// ListUpdatedSince retrieves unarchived tasks whose updated_at is at or
	// after the given instant. Used by the daily summary job.
	ListUpdatedSince(ctx context.Context, since time.Time) ([]*domain.Task, error)

	// DeleteArchivedBefore removes every archived task whose updated_at is
	// before the cutoff. Returns the number of tasks deleted.
	DeleteArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}
