package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventTypeNotification identifies task-notification request events.
const EventTypeNotification = "task_notification"

// EventKind is the task lifecycle trigger for a notification.
type EventKind string

// Possible event kinds.
const (
	EventKindCreated EventKind = "created"
	EventKindUpdated EventKind = "updated"
	EventKindDeleted EventKind = "deleted"
	EventKindOverdue EventKind = "overdue"
)

// IsValid reports whether the kind is one of the recognized values.
func (k EventKind) IsValid() bool {
	switch k {
	case EventKindCreated, EventKindUpdated, EventKindDeleted, EventKindOverdue:
		return true
	}
	return false
}

// NotificationPayload is the payload of an EventTypeNotification event.
//
// Title and Recipients are a snapshot taken at emit time. The worker prefers
// a fresh lookup of the task; the snapshot is the fallback for the deleted
// case, where the task row (and its assignments) are gone before the job
// runs.
type NotificationPayload struct {
	TaskID     uuid.UUID `json:"task_id"`
	Event      EventKind `json:"event"`
	Title      string    `json:"title,omitempty"`
	Recipients []string  `json:"recipients,omitempty"`
}

// TaskRequestEvent represents a request to create a background job.
// It contains the necessary information for job creation without
// direct dependencies on the task package.
type TaskRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the job type that should be created
	Type string `json:"type"`

	// Payload contains the job-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent creates a new TaskRequestEvent with the specified type and payload.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// NewNotificationEvent creates a TaskRequestEvent carrying a notification
// payload for the given task and event kind.
func NewNotificationEvent(payload NotificationPayload) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(EventTypeNotification, payload)
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
