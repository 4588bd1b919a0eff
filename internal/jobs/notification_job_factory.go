package jobs

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dcastillo/tasktrail-api/internal/events"
	"github.com/dcastillo/tasktrail-api/internal/platform/mail"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// NotificationJobFactory creates NotificationJob instances with their
// dependencies pre-wired. It also serves as the runner's reconstructor
// for notification jobs recovered from the database.
type NotificationJobFactory struct {
	tasks  store.TaskStore
	users  store.UserStore
	mailer mail.Mailer
	logger *slog.Logger
}

// NewNotificationJobFactory creates a new factory for notification jobs.
func NewNotificationJobFactory(
	tasks store.TaskStore,
	users store.UserStore,
	mailer mail.Mailer,
	logger *slog.Logger,
) (*NotificationJobFactory, error) {
	if tasks == nil {
		return nil, ErrNilTaskStore
	}
	if users == nil {
		return nil, ErrNilUserStore
	}
	if mailer == nil {
		return nil, ErrNilMailer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &NotificationJobFactory{
		tasks:  tasks,
		users:  users,
		mailer: mailer,
		logger: logger,
	}, nil
}

// NewJob creates a notification job for the given payload.
func (f *NotificationJobFactory) NewJob(payload events.NotificationPayload) (*NotificationJob, error) {
	return NewNotificationJob(payload, f.tasks, f.users, f.mailer, f.logger)
}

// Reconstruct rebuilds a notification job from a persisted record so the
// runner can requeue it after a restart. Register it with the runner via
// RegisterReconstructor(JobTypeNotification, factory.Reconstruct).
func (f *NotificationJobFactory) Reconstruct(record *JobRecord) (Job, error) {
	var payload events.NotificationPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification payload: %w", err)
	}

	job, err := f.NewJob(payload)
	if err != nil {
		return nil, err
	}

	// Keep the persisted identity so status updates hit the same row
	job.id = record.ID
	job.status = record.Status
	return job, nil
}
