package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultAssignmentRole is applied when an assignment is created without an
// explicit role.
const DefaultAssignmentRole = "contributor"

// TaskAssignment-specific validation errors
var (
	// ErrAssignmentIDEmpty is returned when an assignment ID is empty or nil.
	ErrAssignmentIDEmpty = errors.New("assignment ID cannot be empty")

	// ErrAssignmentTaskIDEmpty is returned when an assignment's task ID is empty or nil.
	ErrAssignmentTaskIDEmpty = errors.New("assignment task ID cannot be empty")

	// ErrAssignmentUserIDEmpty is returned when an assignment's user ID is empty or nil.
	ErrAssignmentUserIDEmpty = errors.New("assignment user ID cannot be empty")
)

// TaskAssignment links a user to a task. The (task, user) pair is unique.
// Assignments are never mutated after creation and are cascade-deleted with
// either side of the pair.
//
// AssignedBy is nil when the assigning user has since been deleted.
type TaskAssignment struct {
	ID         uuid.UUID  `json:"id"`
	TaskID     uuid.UUID  `json:"task"`
	UserID     uuid.UUID  `json:"user"`
	AssignedBy *uuid.UUID `json:"assigned_by,omitempty"`
	Role       string     `json:"role"`
	AssignedAt time.Time  `json:"assigned_at"`
}

// NewTaskAssignment creates a new TaskAssignment for the given task and user.
// An empty role defaults to DefaultAssignmentRole.
// Returns an error if validation fails.
func NewTaskAssignment(
	taskID, userID uuid.UUID,
	assignedBy *uuid.UUID,
	role string,
) (*TaskAssignment, error) {
	if role == "" {
		role = DefaultAssignmentRole
	}

	assignment := &TaskAssignment{
		ID:         uuid.New(),
		TaskID:     taskID,
		UserID:     userID,
		AssignedBy: assignedBy,
		Role:       role,
		AssignedAt: time.Now().UTC(),
	}

	if err := assignment.Validate(); err != nil {
		return nil, err
	}

	return assignment, nil
}

// Validate checks if the TaskAssignment has valid data.
// Returns an error if any field fails validation.
func (a *TaskAssignment) Validate() error {
	if a.ID == uuid.Nil {
		return ErrAssignmentIDEmpty
	}

	if a.TaskID == uuid.Nil {
		return ErrAssignmentTaskIDEmpty
	}

	if a.UserID == uuid.Nil {
		return ErrAssignmentUserIDEmpty
	}

	return nil
}
