package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ChangeRecord-specific validation errors
var (
	// ErrChangeRecordIDEmpty is returned when a change record ID is empty or nil.
	ErrChangeRecordIDEmpty = errors.New("change record ID cannot be empty")

	// ErrChangeRecordTaskIDEmpty is returned when a change record's task ID is empty or nil.
	ErrChangeRecordTaskIDEmpty = errors.New("change record task ID cannot be empty")

	// ErrChangeRecordFieldEmpty is returned when a change record's field name is empty.
	ErrChangeRecordFieldEmpty = errors.New("change record field name cannot be empty")
)

// ChangeRecord is one entry in a task's append-only change history.
// One record is written per changed tracked field per mutation. Records are
// immutable once written and are removed only when their task is deleted.
//
// ChangedBy is nil when the mutation had no acting user (for example the
// overdue sweeper). Old and new values are stored in their string rendering;
// the history package defines the format per field type.
type ChangeRecord struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"task"`
	ChangedBy *uuid.UUID `json:"changed_by,omitempty"`
	Field     string     `json:"field_changed"`
	OldValue  string     `json:"old_value"`
	NewValue  string     `json:"new_value"`
	ChangedAt time.Time  `json:"changed_at"`
}

// NewChangeRecord creates a new ChangeRecord for the given task and field.
// It generates a new UUID for the record ID and sets the change timestamp.
// Returns an error if validation fails.
func NewChangeRecord(
	taskID uuid.UUID,
	changedBy *uuid.UUID,
	field, oldValue, newValue string,
) (*ChangeRecord, error) {
	record := &ChangeRecord{
		ID:        uuid.New(),
		TaskID:    taskID,
		ChangedBy: changedBy,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		ChangedAt: time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the ChangeRecord has valid data.
// Returns an error if any field fails validation.
func (r *ChangeRecord) Validate() error {
	if r.ID == uuid.Nil {
		return ErrChangeRecordIDEmpty
	}

	if r.TaskID == uuid.Nil {
		return ErrChangeRecordTaskIDEmpty
	}

	if r.Field == "" {
		return ErrChangeRecordFieldEmpty
	}

	return nil
}
