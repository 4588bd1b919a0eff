package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/events"
	"github.com/dcastillo/tasktrail-api/internal/platform/mail"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// Subject and body format for task notification emails.
const (
	notificationSubject    = "Task notification"
	notificationBodyFormat = "Notification: task %s %s"
)

// Common errors
var (
	ErrNilTaskStore   = errors.New("task store cannot be nil")
	ErrNilUserStore   = errors.New("user store cannot be nil")
	ErrNilMailer      = errors.New("mailer cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrEmptyTaskID    = errors.New("task ID cannot be empty")
	ErrInvalidTrigger = errors.New("invalid notification trigger")
)

// NotificationJob implements the Job interface for delivering a task
// email notification. It prefers a fresh lookup of the task so that
// recipients and title reflect the current state; the payload snapshot
// is the fallback for deleted tasks.
type NotificationJob struct {
	id      uuid.UUID
	payload events.NotificationPayload
	tasks   store.TaskStore
	users   store.UserStore
	mailer  mail.Mailer
	logger  *slog.Logger
	status  JobStatus
}

// NewNotificationJob creates a new notification job for the given payload.
func NewNotificationJob(
	payload events.NotificationPayload,
	tasks store.TaskStore,
	users store.UserStore,
	mailer mail.Mailer,
	logger *slog.Logger,
) (*NotificationJob, error) {
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

	if payload.TaskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}
	if !payload.Event.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrigger, payload.Event)
	}

	return &NotificationJob{
		id:      uuid.New(),
		payload: payload,
		tasks:   tasks,
		users:   users,
		mailer:  mailer,
		logger:  logger.With("job_type", JobTypeNotification, "task_id", payload.TaskID),
		status:  JobStatusPending,
	}, nil
}

// ID returns the job's unique identifier
func (j *NotificationJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *NotificationJob) Type() string {
	return JobTypeNotification
}

// Payload returns the job data as a byte slice
func (j *NotificationJob) Payload() []byte {
	data, err := json.Marshal(j.payload)
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		j.logger.Error("failed to marshal job payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current job status
func (j *NotificationJob) Status() JobStatus {
	return j.status
}

// Execute resolves the recipients for the notification and sends one
// email covering all of them. A task that no longer exists falls back
// to the snapshot captured at emit time; an empty recipient set is a
// logged no-op, not an error, so redelivery of such a job stays safe.
func (j *NotificationJob) Execute(ctx context.Context) error {
	j.status = JobStatusProcessing

	if err := ctx.Err(); err != nil {
		j.status = JobStatusFailed
		return fmt.Errorf("job cancelled by context: %w", err)
	}

	title := j.payload.Title
	recipients := j.payload.Recipients

	task, err := j.tasks.GetByID(ctx, j.payload.TaskID)
	switch {
	case err == nil:
		title = task.Title
		recipients, err = ResolveRecipients(ctx, j.users, task)
		if err != nil {
			j.status = JobStatusFailed
			j.logger.Error("failed to resolve notification recipients", "error", err)
			return fmt.Errorf("failed to resolve notification recipients: %w", err)
		}
	case errors.Is(err, store.ErrTaskNotFound):
		// Task row is gone. For deleted-task notifications the snapshot
		// carries everything needed; anything else has nothing to say.
		if len(recipients) == 0 {
			j.logger.Info("task no longer exists and no snapshot recipients, skipping notification",
				"event", j.payload.Event)
			j.status = JobStatusCompleted
			return nil
		}
	default:
		j.status = JobStatusFailed
		j.logger.Error("failed to load task for notification", "error", err)
		return fmt.Errorf("failed to load task for notification: %w", err)
	}

	if len(recipients) == 0 {
		j.logger.Info("no recipients for task notification, skipping send",
			"event", j.payload.Event)
		j.status = JobStatusCompleted
		return nil
	}

	body := fmt.Sprintf(notificationBodyFormat, title, j.payload.Event)

	if err := j.mailer.Send(ctx, notificationSubject, body, recipients); err != nil {
		j.status = JobStatusFailed
		j.logger.Error("failed to send notification email",
			"event", j.payload.Event,
			"recipient_count", len(recipients),
			"error", err)
		return fmt.Errorf("failed to send notification email: %w", err)
	}

	j.status = JobStatusCompleted
	j.logger.Info("notification sent",
		"event", j.payload.Event,
		"recipient_count", len(recipients))
	return nil
}

// ResolveRecipients returns the deduplicated email addresses that should
// be notified about the given task: every assignee plus the creator.
// Users that no longer exist are silently skipped.
func ResolveRecipients(ctx context.Context, users store.UserStore, task *domain.Task) ([]string, error) {
	ids := make([]uuid.UUID, 0, len(task.AssigneeIDs)+1)
	seenIDs := make(map[uuid.UUID]struct{}, len(task.AssigneeIDs)+1)

	for _, id := range task.AssigneeIDs {
		if _, ok := seenIDs[id]; ok {
			continue
		}
		seenIDs[id] = struct{}{}
		ids = append(ids, id)
	}

	if task.CreatedBy != uuid.Nil {
		if _, ok := seenIDs[task.CreatedBy]; !ok {
			ids = append(ids, task.CreatedBy)
		}
	}

	if len(ids) == 0 {
		return nil, nil
	}

	emails, err := users.GetEmailsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up recipient emails: %w", err)
	}

	// Two users sharing an address still get one email
	seen := make(map[string]struct{}, len(emails))
	recipients := make([]string, 0, len(emails))
	for _, email := range emails {
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		recipients = append(recipients, email)
	}

	return recipients, nil
}
