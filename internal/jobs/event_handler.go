package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dcastillo/tasktrail-api/internal/events"
)

// JobSubmitter accepts jobs for background execution. *JobRunner
// satisfies it; tests substitute their own.
type JobSubmitter interface {
	Submit(ctx context.Context, job Job) error
}

// NotificationEventHandler implements the events.EventHandler interface.
// It turns notification request events emitted by the service layer into
// queued notification jobs.
type NotificationEventHandler struct {
	factory *NotificationJobFactory
	runner  JobSubmitter
	logger  *slog.Logger
}

// NewNotificationEventHandler creates an event handler that builds
// notification jobs with the given factory and submits them to the runner.
func NewNotificationEventHandler(
	factory *NotificationJobFactory,
	runner JobSubmitter,
	logger *slog.Logger,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "notification_event_handler"),
	}
}

// HandleEvent processes notification request events by creating and
// submitting notification jobs. Events of other types are ignored.
func (h *NotificationEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != events.EventTypeNotification {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.NotificationPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	job, err := h.factory.NewJob(payload)
	if err != nil {
		h.logger.Error("failed to create notification job",
			"error", err,
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create notification job: %w", err)
	}

	if err := h.runner.Submit(ctx, job); err != nil {
		h.logger.Error("failed to submit notification job",
			"error", err,
			"job_id", job.ID(),
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit notification job: %w", err)
	}

	h.logger.Info("notification job created and submitted",
		"job_id", job.ID(),
		"task_id", payload.TaskID,
		"trigger", payload.Event,
		"event_id", event.ID)
	return nil
}

// Ensure NotificationEventHandler implements events.EventHandler
var _ events.EventHandler = (*NotificationEventHandler)(nil)
