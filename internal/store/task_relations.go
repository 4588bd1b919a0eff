package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
)

// CommentStore defines the interface for task comment persistence.
// Comments are append-only; they are removed only by the task-delete cascade.
// Version: 1.0
type CommentStore interface {
	// Create saves a new comment.
	// Returns ErrInvalidEntity if the task or author does not exist.
	Create(ctx context.Context, comment *domain.Comment) error

	// ListByTask returns all comments for a task in insertion order.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)
}

// AssignmentStore defines the interface for task assignment persistence.
// Version: 1.0
type AssignmentStore interface {
	// Create saves a new assignment.
	// Returns ErrAlreadyAssigned if the (task, user) pair already exists and
	// ErrInvalidEntity if the task or user does not exist.
	Create(ctx context.Context, assignment *domain.TaskAssignment) error

	// ListByTask returns all assignments for a task in creation order.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAssignment, error)

	// WithTx returns a new AssignmentStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) AssignmentStore
}

// TagStore defines the interface for tag persistence.
// Version: 1.0
type TagStore interface {
	// Create saves a new tag. Returns ErrTagNameExists if the name is taken.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetByID retrieves a tag by its unique ID.
	// Returns ErrTagNotFound if the tag does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error)

	// List returns all tags ordered by name.
	List(ctx context.Context) ([]*domain.Tag, error)
}

// TemplateStore defines the interface for task template persistence.
// Version: 1.0
type TemplateStore interface {
	// Create saves a new template. Returns ErrTemplateNameExists if the name
	// is taken.
	Create(ctx context.Context, template *domain.TaskTemplate) error

	// GetByName retrieves a template by its unique name.
	// Returns ErrTemplateNotFound if the template does not exist.
	GetByName(ctx context.Context, name string) (*domain.TaskTemplate, error)

	// List returns all templates ordered by name.
	List(ctx context.Context) ([]*domain.TaskTemplate, error)
}
