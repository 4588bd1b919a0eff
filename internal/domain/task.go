package domain

import (
	"encoding/json"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusOverdue    TaskStatus = "overdue"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskTitleTooLong is returned when a task title exceeds 200 characters.
	ErrTaskTitleTooLong = errors.New("task title cannot exceed 200 characters")

	// ErrTaskCreatorEmpty is returned when a task's creator ID is empty or nil.
	ErrTaskCreatorEmpty = errors.New("task creator ID cannot be empty")

	// ErrTaskDueDateZero is returned when a task has no due date.
	ErrTaskDueDateZero = errors.New("task due date cannot be zero")

	// ErrTaskStatusInvalid is returned when a task status is not one of the
	// recognized values.
	ErrTaskStatusInvalid = errors.New("invalid task status")

	// ErrTaskPriorityInvalid is returned when a task priority is not one of
	// the recognized values.
	ErrTaskPriorityInvalid = errors.New("invalid task priority")

	// ErrTaskHoursNegative is returned when estimated or actual hours are
	// negative.
	ErrTaskHoursNegative = errors.New("task hours cannot be negative")

	// ErrTaskMetadataInvalid is returned when task metadata is not valid JSON.
	ErrTaskMetadataInvalid = errors.New("task metadata must be valid JSON")
)

// IsValid reports whether the status is one of the recognized values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusOverdue:
		return true
	}
	return false
}

// IsValid reports whether the priority is one of the recognized values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

// Task represents a unit of work tracked by the system.
//
// AssigneeIDs and TagIDs are many-to-many references resolved by the storage
// layer; they participate in change tracking as id sets. ParentTaskID is a
// nullable self-reference. The data model does not prevent parent cycles.
type Task struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Status         TaskStatus      `json:"status"`
	Priority       TaskPriority    `json:"priority"`
	DueDate        time.Time       `json:"due_date"`
	EstimatedHours float64         `json:"estimated_hours"`
	ActualHours    *float64        `json:"actual_hours,omitempty"`
	CreatedBy      uuid.UUID       `json:"created_by"`
	AssigneeIDs    []uuid.UUID     `json:"assigned_to"`
	TagIDs         []uuid.UUID     `json:"tags"`
	ParentTaskID   *uuid.UUID      `json:"parent_task,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	IsArchived     bool            `json:"is_archived"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewTask creates a new Task with the given attributes.
// It generates a new UUID for the task ID, sets the creation/update
// timestamps, and applies the default status (todo) and priority (medium).
// Returns an error if validation fails.
func NewTask(
	title, description string,
	priority TaskPriority,
	dueDate time.Time,
	estimatedHours float64,
	createdBy uuid.UUID,
) (*Task, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:             uuid.New(),
		Title:          title,
		Description:    description,
		Status:         TaskStatusTodo,
		Priority:       priority,
		DueDate:        dueDate,
		EstimatedHours: estimatedHours,
		CreatedBy:      createdBy,
		Metadata:       json.RawMessage("{}"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if utf8.RuneCountInString(t.Title) > 200 {
		return ErrTaskTitleTooLong
	}

	if t.CreatedBy == uuid.Nil {
		return ErrTaskCreatorEmpty
	}

	if t.DueDate.IsZero() {
		return ErrTaskDueDateZero
	}

	if !t.Status.IsValid() {
		return ErrTaskStatusInvalid
	}

	if !t.Priority.IsValid() {
		return ErrTaskPriorityInvalid
	}

	if t.EstimatedHours < 0 {
		return ErrTaskHoursNegative
	}

	if t.ActualHours != nil && *t.ActualHours < 0 {
		return ErrTaskHoursNegative
	}

	if len(t.Metadata) > 0 {
		var js json.RawMessage
		if err := json.Unmarshal(t.Metadata, &js); err != nil {
			return ErrTaskMetadataInvalid
		}
	}

	return nil
}

// HasAssignee reports whether the given user is currently assigned to the task.
func (t *Task) HasAssignee(userID uuid.UUID) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task. The copy shares no mutable state
// with the original, so callers can snapshot the stored state before
// applying a mutation.
func (t *Task) Clone() *Task {
	clone := *t

	if t.ActualHours != nil {
		hours := *t.ActualHours
		clone.ActualHours = &hours
	}

	if t.ParentTaskID != nil {
		parentID := *t.ParentTaskID
		clone.ParentTaskID = &parentID
	}

	clone.AssigneeIDs = append([]uuid.UUID(nil), t.AssigneeIDs...)
	clone.TagIDs = append([]uuid.UUID(nil), t.TagIDs...)
	clone.Metadata = append(json.RawMessage(nil), t.Metadata...)

	return &clone
}
