package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/events"
	"github.com/dcastillo/tasktrail-api/internal/history"
	"github.com/dcastillo/tasktrail-api/internal/jobs"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	Title          string
	Description    string
	Priority       domain.TaskPriority
	DueDate        time.Time
	EstimatedHours float64
	CreatedBy      uuid.UUID
	AssigneeIDs    []uuid.UUID
	TagIDs         []uuid.UUID
	ParentTaskID   *uuid.UUID
	Metadata       json.RawMessage
}

// UpdateTaskInput carries a partial update. Nil pointers leave the field
// unchanged; ClearParent removes the parent reference.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *domain.TaskStatus
	Priority       *domain.TaskPriority
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	AssigneeIDs    *[]uuid.UUID
	TagIDs         *[]uuid.UUID
	ParentTaskID   *uuid.UUID
	ClearParent    bool
	Metadata       json.RawMessage
	IsArchived     *bool
}

// TaskService provides task-related operations: CRUD, assignment, comments,
// change history, and the notification side effects they trigger.
type TaskService interface {
	// CreateTask creates a new task with its assignee and tag references and
	// emits a "created" notification event.
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)

	// CreateTaskFromTemplate creates a task using a named template for
	// defaults. Explicit input values win over template defaults.
	CreateTaskFromTemplate(
		ctx context.Context,
		templateName string,
		input CreateTaskInput,
	) (*domain.Task, error)

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// ListTasks retrieves tasks matching the filter, newest first.
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)

	// UpdateTask applies a partial update inside a transaction, records one
	// change entry per tracked field that actually changed, and emits an
	// "updated" notification event when anything changed. A no-op update
	// writes no history and emits nothing.
	UpdateTask(
		ctx context.Context,
		taskID uuid.UUID,
		input UpdateTaskInput,
		actorID uuid.UUID,
	) (*domain.Task, error)

	// DeleteTask removes a task. Recipients are resolved before the delete so
	// the "deleted" notification can be delivered after the task row and its
	// assignments are gone.
	DeleteTask(ctx context.Context, taskID uuid.UUID, actorID uuid.UUID) error

	// AssignUser adds a user to the task's assignee set, records the change,
	// and emits an "updated" notification event.
	AssignUser(
		ctx context.Context,
		taskID, userID uuid.UUID,
		role string,
		actorID uuid.UUID,
	) (*domain.TaskAssignment, error)

	// ListAssignments returns the task's assignments in creation order.
	ListAssignments(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAssignment, error)

	// AddComment appends a comment to the task.
	AddComment(
		ctx context.Context,
		taskID, authorID uuid.UUID,
		text string,
	) (*domain.Comment, error)

	// ListComments returns the task's comments in insertion order.
	ListComments(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)

	// ListHistory returns the task's change records in insertion order.
	ListHistory(ctx context.Context, taskID uuid.UUID) ([]*domain.ChangeRecord, error)
}

// TaskServiceConfig collects the dependencies of the task service.
type TaskServiceConfig struct {
	DB          *sql.DB
	Tasks       store.TaskStore
	Comments    store.CommentStore
	Assignments store.AssignmentStore
	History     store.ChangeRecordStore
	Users       store.UserStore
	Templates   store.TemplateStore
	Recorder    *history.Recorder
	Emitter     events.EventEmitter
	Logger      *slog.Logger
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	db          *sql.DB
	tasks       store.TaskStore
	comments    store.CommentStore
	assignments store.AssignmentStore
	history     store.ChangeRecordStore
	users       store.UserStore
	templates   store.TemplateStore
	recorder    *history.Recorder
	emitter     events.EventEmitter
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any required dependency is nil.
func NewTaskService(cfg TaskServiceConfig) (TaskService, error) {
	required := map[string]bool{
		"DB":          cfg.DB == nil,
		"Tasks":       cfg.Tasks == nil,
		"Comments":    cfg.Comments == nil,
		"Assignments": cfg.Assignments == nil,
		"History":     cfg.History == nil,
		"Users":       cfg.Users == nil,
		"Templates":   cfg.Templates == nil,
		"Recorder":    cfg.Recorder == nil,
		"Emitter":     cfg.Emitter == nil,
	}
	for name, missing := range required {
		if missing {
			return nil, &ServiceError{
				Service:   "task_service",
				Operation: "create_service",
				Message:   name + " cannot be nil",
			}
		}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &taskServiceImpl{
		db:          cfg.DB,
		tasks:       cfg.Tasks,
		comments:    cfg.Comments,
		assignments: cfg.Assignments,
		history:     cfg.History,
		users:       cfg.Users,
		templates:   cfg.Templates,
		recorder:    cfg.Recorder,
		emitter:     cfg.Emitter,
		logger:      log.With("component", "task_service"),
	}, nil
}

// newTaskServiceError maps store sentinels to service sentinels and wraps
// everything else. Sentinels pass through unwrapped so callers can match
// them with errors.Is.
func newTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrAlreadyAssigned):
		return ErrAlreadyAssigned
	case errors.Is(err, store.ErrTemplateNotFound):
		return ErrTemplateNotFound
	case errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrAlreadyAssigned),
		errors.Is(err, ErrTemplateNotFound):
		return err
	}

	return &ServiceError{
		Service:   "task_service",
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	input CreateTaskInput,
) (*domain.Task, error) {
	task, err := domain.NewTask(
		input.Title,
		input.Description,
		input.Priority,
		input.DueDate,
		input.EstimatedHours,
		input.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	task.AssigneeIDs = append([]uuid.UUID(nil), input.AssigneeIDs...)
	task.TagIDs = append([]uuid.UUID(nil), input.TagIDs...)
	task.ParentTaskID = input.ParentTaskID
	if len(input.Metadata) > 0 {
		task.Metadata = input.Metadata
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			s.logger.Error("failed to create task",
				"error", err,
				"task_id", task.ID,
				"created_by", input.CreatedBy)
			return newTaskServiceError("create_task", "failed to save task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"created_by", input.CreatedBy)

	if err := s.emitTaskEvent(ctx, task, events.EventKindCreated, nil); err != nil {
		return nil, newTaskServiceError("create_task", "failed to emit event", err)
	}

	return task, nil
}

func (s *taskServiceImpl) CreateTaskFromTemplate(
	ctx context.Context,
	templateName string,
	input CreateTaskInput,
) (*domain.Task, error) {
	template, err := s.templates.GetByName(ctx, templateName)
	if err != nil {
		return nil, newTaskServiceError(
			"create_task_from_template", "failed to load template", err)
	}

	if input.Priority == "" {
		input.Priority = template.DefaultPriority
	}
	if input.EstimatedHours == 0 {
		input.EstimatedHours = template.DefaultEstimatedHours
	}
	if input.Description == "" {
		input.Description = template.Description
	}
	if len(input.Metadata) == 0 && len(template.Metadata) > 0 {
		input.Metadata = template.Metadata
	}

	return s.CreateTask(ctx, input)
}

func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, newTaskServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, newTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	taskID uuid.UUID,
	input UpdateTaskInput,
	actorID uuid.UUID,
) (*domain.Task, error) {
	var (
		next    *domain.Task
		changed bool
	)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		prev, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return newTaskServiceError("update_task", "failed to retrieve task", err)
		}

		next = prev.Clone()
		applyTaskUpdate(next, input)
		if err := next.Validate(); err != nil {
			return err
		}

		records, err := s.recorder.WithTx(tx).RecordIfChanged(ctx, prev, next, &actorID)
		if err != nil {
			return newTaskServiceError("update_task", "failed to record changes", err)
		}
		changed = len(records) > 0

		if err := txTasks.Update(ctx, next); err != nil {
			return newTaskServiceError("update_task", "failed to save task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !changed {
		s.logger.Debug("task update was a no-op", "task_id", taskID)
		return next, nil
	}

	s.logger.Info("task updated",
		"task_id", taskID,
		"actor_id", actorID)

	if err := s.emitTaskEvent(ctx, next, events.EventKindUpdated, nil); err != nil {
		return nil, newTaskServiceError("update_task", "failed to emit event", err)
	}

	return next, nil
}

func (s *taskServiceImpl) DeleteTask(
	ctx context.Context,
	taskID uuid.UUID,
	actorID uuid.UUID,
) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return newTaskServiceError("delete_task", "failed to retrieve task", err)
	}

	// Resolve recipients while the assignment rows still exist. The delete
	// cascade removes them, so the notification job cannot look them up later.
	recipients, err := jobs.ResolveRecipients(ctx, s.users, task)
	if err != nil {
		s.logger.Warn("failed to resolve recipients before delete",
			"error", err,
			"task_id", taskID)
		recipients = nil
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return newTaskServiceError("delete_task", "failed to delete task", err)
	}

	s.logger.Info("task deleted",
		"task_id", taskID,
		"actor_id", actorID)

	if err := s.emitTaskEvent(ctx, task, events.EventKindDeleted, recipients); err != nil {
		return newTaskServiceError("delete_task", "failed to emit event", err)
	}

	return nil
}

func (s *taskServiceImpl) AssignUser(
	ctx context.Context,
	taskID, userID uuid.UUID,
	role string,
	actorID uuid.UUID,
) (*domain.TaskAssignment, error) {
	var (
		assignment *domain.TaskAssignment
		next       *domain.Task
	)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		prev, err := s.tasks.WithTx(tx).GetByID(ctx, taskID)
		if err != nil {
			return newTaskServiceError("assign_user", "failed to retrieve task", err)
		}
		if prev.HasAssignee(userID) {
			return ErrAlreadyAssigned
		}

		assignment, err = domain.NewTaskAssignment(taskID, userID, &actorID, role)
		if err != nil {
			return err
		}
		if err := s.assignments.WithTx(tx).Create(ctx, assignment); err != nil {
			return newTaskServiceError("assign_user", "failed to save assignment", err)
		}

		next = prev.Clone()
		next.AssigneeIDs = append(next.AssigneeIDs, userID)

		if _, err := s.recorder.WithTx(tx).RecordIfChanged(ctx, prev, next, &actorID); err != nil {
			return newTaskServiceError("assign_user", "failed to record changes", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user assigned to task",
		"task_id", taskID,
		"user_id", userID,
		"actor_id", actorID)

	if err := s.emitTaskEvent(ctx, next, events.EventKindUpdated, nil); err != nil {
		return nil, newTaskServiceError("assign_user", "failed to emit event", err)
	}

	return assignment, nil
}

func (s *taskServiceImpl) ListAssignments(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.TaskAssignment, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, newTaskServiceError("list_assignments", "failed to retrieve task", err)
	}

	assignments, err := s.assignments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, newTaskServiceError("list_assignments", "failed to list assignments", err)
	}
	return assignments, nil
}

func (s *taskServiceImpl) AddComment(
	ctx context.Context,
	taskID, authorID uuid.UUID,
	text string,
) (*domain.Comment, error) {
	comment, err := domain.NewComment(taskID, authorID, text)
	if err != nil {
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, ErrTaskNotFound
		}
		return nil, newTaskServiceError("add_comment", "failed to save comment", err)
	}

	s.logger.Info("comment added",
		"task_id", taskID,
		"comment_id", comment.ID,
		"author_id", authorID)

	return comment, nil
}

func (s *taskServiceImpl) ListComments(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.Comment, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, newTaskServiceError("list_comments", "failed to retrieve task", err)
	}

	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, newTaskServiceError("list_comments", "failed to list comments", err)
	}
	return comments, nil
}

func (s *taskServiceImpl) ListHistory(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.ChangeRecord, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, newTaskServiceError("list_history", "failed to retrieve task", err)
	}

	records, err := s.history.ListByTask(ctx, taskID)
	if err != nil {
		return nil, newTaskServiceError("list_history", "failed to list change records", err)
	}
	return records, nil
}

// emitTaskEvent builds and emits a notification event for the task. The
// recipients snapshot is only carried for deletes, where the worker can no
// longer resolve them from storage.
func (s *taskServiceImpl) emitTaskEvent(
	ctx context.Context,
	task *domain.Task,
	kind events.EventKind,
	recipients []string,
) error {
	payload := events.NotificationPayload{
		TaskID: task.ID,
		Event:  kind,
	}
	if kind == events.EventKindDeleted {
		payload.Title = task.Title
		payload.Recipients = recipients
	}

	event, err := events.NewNotificationEvent(payload)
	if err != nil {
		s.logger.Error("failed to create notification event",
			"error", err,
			"task_id", task.ID,
			"event_kind", kind)
		return err
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit notification event",
			"error", err,
			"task_id", task.ID,
			"event_id", event.ID,
			"event_kind", kind)
		return err
	}

	s.logger.Debug("notification event emitted",
		"task_id", task.ID,
		"event_id", event.ID,
		"event_kind", kind)
	return nil
}

// applyTaskUpdate copies the set fields of the input onto the task.
func applyTaskUpdate(task *domain.Task, input UpdateTaskInput) {
	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = *input.EstimatedHours
	}
	if input.ActualHours != nil {
		hours := *input.ActualHours
		task.ActualHours = &hours
	}
	if input.AssigneeIDs != nil {
		task.AssigneeIDs = append([]uuid.UUID(nil), (*input.AssigneeIDs)...)
	}
	if input.TagIDs != nil {
		task.TagIDs = append([]uuid.UUID(nil), (*input.TagIDs)...)
	}
	if input.ClearParent {
		task.ParentTaskID = nil
	} else if input.ParentTaskID != nil {
		parentID := *input.ParentTaskID
		task.ParentTaskID = &parentID
	}
	if len(input.Metadata) > 0 {
		task.Metadata = append(json.RawMessage(nil), input.Metadata...)
	}
	if input.IsArchived != nil {
		task.IsArchived = *input.IsArchived
	}
}
