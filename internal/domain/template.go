package domain

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// TaskTemplate-specific validation errors
var (
	// ErrTemplateIDEmpty is returned when a template ID is empty or nil.
	ErrTemplateIDEmpty = errors.New("template ID cannot be empty")

	// ErrTemplateNameEmpty is returned when a template name is empty.
	ErrTemplateNameEmpty = errors.New("template name cannot be empty")

	// ErrTemplateHoursNegative is returned when a template's default
	// estimated hours are negative.
	ErrTemplateHoursNegative = errors.New("template default estimated hours cannot be negative")
)

// TaskTemplate is a named preset for task creation. Templates are not linked
// to the tasks created from them.
type TaskTemplate struct {
	ID                    uuid.UUID       `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	DefaultPriority       TaskPriority    `json:"default_priority"`
	DefaultEstimatedHours float64         `json:"default_estimated_hours"`
	Metadata              json.RawMessage `json:"metadata,omitempty"`
}

// NewTaskTemplate creates a new TaskTemplate. An empty priority defaults to
// medium; default estimated hours default to 1.
// Returns an error if validation fails.
func NewTaskTemplate(name, description string, priority TaskPriority, estimatedHours float64) (*TaskTemplate, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}
	if estimatedHours == 0 {
		estimatedHours = 1
	}

	template := &TaskTemplate{
		ID:                    uuid.New(),
		Name:                  name,
		Description:           description,
		DefaultPriority:       priority,
		DefaultEstimatedHours: estimatedHours,
		Metadata:              json.RawMessage("{}"),
	}

	if err := template.Validate(); err != nil {
		return nil, err
	}

	return template, nil
}

// Validate checks if the TaskTemplate has valid data.
// Returns an error if any field fails validation.
func (t *TaskTemplate) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTemplateIDEmpty
	}

	if t.Name == "" {
		return ErrTemplateNameEmpty
	}

	if !t.DefaultPriority.IsValid() {
		return ErrTaskPriorityInvalid
	}

	if t.DefaultEstimatedHours < 0 {
		return ErrTemplateHoursNegative
	}

	return nil
}
