package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/events"
	"github.com/dcastillo/tasktrail-api/internal/history"
)

type taskServiceFixture struct {
	svc         TaskService
	tasks       *fakeTaskStore
	comments    *fakeCommentStore
	assignments *fakeAssignmentStore
	records     *fakeChangeRecordStore
	users       *fakeUserStore
	templates   *fakeTemplateStore
	emitter     *captureEmitter
	dbmock      sqlmock.Sqlmock
}

func newTaskServiceFixture(t *testing.T) *taskServiceFixture {
	t.Helper()

	db, dbmock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	f := &taskServiceFixture{
		tasks:       newFakeTaskStore(),
		comments:    &fakeCommentStore{},
		assignments: &fakeAssignmentStore{},
		records:     &fakeChangeRecordStore{},
		users:       newFakeUserStore(),
		templates:   newFakeTemplateStore(),
		emitter:     &captureEmitter{},
		dbmock:      dbmock,
	}

	svc, err := NewTaskService(TaskServiceConfig{
		DB:          db,
		Tasks:       f.tasks,
		Comments:    f.comments,
		Assignments: f.assignments,
		History:     f.records,
		Users:       f.users,
		Templates:   f.templates,
		Recorder:    history.NewRecorder(f.records, discardLogger()),
		Emitter:     f.emitter,
		Logger:      discardLogger(),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *taskServiceFixture) expectTx() {
	f.dbmock.ExpectBegin()
	f.dbmock.ExpectCommit()
}

func (f *taskServiceFixture) expectTxRollback() {
	f.dbmock.ExpectBegin()
	f.dbmock.ExpectRollback()
}

func (f *taskServiceFixture) addUser(email string) uuid.UUID {
	id := uuid.New()
	f.users.users[id] = &domain.User{
		ID:    id,
		Email: email,
		Role:  domain.DefaultUserRole,
	}
	return id
}

func (f *taskServiceFixture) seedTask(t *testing.T, creator uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(
		"Prepare release notes",
		"Collect changes since the last tag",
		domain.TaskPriorityMedium,
		time.Now().Add(24*time.Hour).UTC(),
		3,
		creator,
	)
	require.NoError(t, err)
	f.tasks.tasks[task.ID] = task
	return task
}

func decodeNotification(t *testing.T, event *events.TaskRequestEvent) events.NotificationPayload {
	t.Helper()
	var payload events.NotificationPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	return payload
}

func TestTaskService_CreateTask(t *testing.T) {
	t.Parallel()

	t.Run("creates task and emits created event", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)
		f.expectTx()
		creator := f.addUser("creator@example.com")
		assignee := uuid.New()

		task, err := f.svc.CreateTask(context.Background(), CreateTaskInput{
			Title:          "Write onboarding guide",
			Description:    "First draft for the new hires",
			Priority:       domain.TaskPriorityHigh,
			DueDate:        time.Now().Add(72 * time.Hour).UTC(),
			EstimatedHours: 4,
			CreatedBy:      creator,
			AssigneeIDs:    []uuid.UUID{assignee},
		})

		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, domain.TaskStatusTodo, task.Status)
		assert.Contains(t, f.tasks.tasks, task.ID)

		require.Len(t, f.emitter.events, 1)
		payload := decodeNotification(t, f.emitter.events[0])
		assert.Equal(t, task.ID, payload.TaskID)
		assert.Equal(t, events.EventKindCreated, payload.Event)
		assert.Empty(t, payload.Recipients)
		assert.NoError(t, f.dbmock.ExpectationsWereMet())
	})

	t.Run("rejects invalid input without emitting", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)

		_, err := f.svc.CreateTask(context.Background(), CreateTaskInput{
			Title:     "",
			DueDate:   time.Now().Add(time.Hour),
			CreatedBy: uuid.New(),
		})

		assert.ErrorIs(t, err, domain.ErrTaskTitleEmpty)
		assert.Empty(t, f.emitter.events)
	})
}

func TestTaskService_CreateTaskFromTemplate(t *testing.T) {
	t.Parallel()

	t.Run("applies template defaults", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)
		f.expectTx()
		creator := f.addUser("creator@example.com")

		template, err := domain.NewTaskTemplate(
			"bug-report", "Standard bug triage", domain.TaskPriorityCritical, 2)
		require.NoError(t, err)
		f.templates.templates[template.Name] = template

		task, err := f.svc.CreateTaskFromTemplate(context.Background(), "bug-report",
			CreateTaskInput{
				Title:     "Login page 500s",
				DueDate:   time.Now().Add(8 * time.Hour).UTC(),
				CreatedBy: creator,
			})

		require.NoError(t, err)
		assert.Equal(t, domain.TaskPriorityCritical, task.Priority)
		assert.Equal(t, 2.0, task.EstimatedHours)
		assert.Equal(t, "Standard bug triage", task.Description)
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)

		_, err := f.svc.CreateTaskFromTemplate(context.Background(), "nope",
			CreateTaskInput{
				Title:     "Anything",
				DueDate:   time.Now().Add(time.Hour),
				CreatedBy: uuid.New(),
			})

		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("records changes and emits updated event", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)
		f.expectTx()
		creator := f.addUser("creator@example.com")
		task := f.seedTask(t, creator)
		actor := uuid.New()

		newTitle := "Prepare and publish release notes"
		newStatus := domain.TaskStatusInProgress

		updated, err := f.svc.UpdateTask(context.Background(), task.ID, UpdateTaskInput{
			Title:  &newTitle,
			Status: &newStatus,
		}, actor)

		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
		assert.Equal(t, newStatus, updated.Status)

		require.Len(t, f.records.records, 2)
		fields := []string{f.records.records[0].Field, f.records.records[1].Field}
		assert.ElementsMatch(t, []string{history.FieldTitle, history.FieldStatus}, fields)
		for _, record := range f.records.records {
			require.NotNil(t, record.ChangedBy)
			assert.Equal(t, actor, *record.ChangedBy)
		}

		require.Len(t, f.emitter.events, 1)
		payload := decodeNotification(t, f.emitter.events[0])
		assert.Equal(t, events.EventKindUpdated, payload.Event)
		assert.NoError(t, f.dbmock.ExpectationsWereMet())
	})

	t.Run("no-op update writes no history and emits nothing", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)
		f.expectTx()
		creator := f.addUser("creator@example.com")
		task := f.seedTask(t, creator)

		sameTitle := task.Title
		updated, err := f.svc.UpdateTask(context.Background(), task.ID, UpdateTaskInput{
			Title: &sameTitle,
		}, uuid.New())

		require.NoError(t, err)
		assert.Equal(t, task.Title, updated.Title)
		assert.Empty(t, f.records.records)
		assert.Empty(t, f.emitter.events)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)
		f.expectTxRollback()

		title := "whatever"
		_, err := f.svc.UpdateTask(context.Background(), uuid.New(), UpdateTaskInput{
			Title: &title,
		}, uuid.New())

		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("snapshots recipients into the deleted event", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)
		creator := f.addUser("creator@example.com")
		assignee := f.addUser("assignee@example.com")

		task := f.seedTask(t, creator)
		task.AssigneeIDs = []uuid.UUID{assignee}

		err := f.svc.DeleteTask(context.Background(), task.ID, creator)

		require.NoError(t, err)
		assert.NotContains(t, f.tasks.tasks, task.ID)

		require.Len(t, f.emitter.events, 1)
		payload := decodeNotification(t, f.emitter.events[0])
		assert.Equal(t, events.EventKindDeleted, payload.Event)
		assert.Equal(t, task.Title, payload.Title)
		assert.ElementsMatch(t,
			[]string{"assignee@example.com", "creator@example.com"},
			payload.Recipients)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)

		err := f.svc.DeleteTask(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, ErrTaskNotFound)
		assert.Empty(t, f.emitter.events)
	})
}

func TestTaskService_AssignUser(t *testing.T) {
	t.Parallel()

	t.Run("assigns, records, and emits", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)
		f.expectTx()
		creator := f.addUser("creator@example.com")
		assignee := f.addUser("assignee@example.com")
		task := f.seedTask(t, creator)

		assignment, err := f.svc.AssignUser(
			context.Background(), task.ID, assignee, "reviewer", creator)

		require.NoError(t, err)
		assert.Equal(t, "reviewer", assignment.Role)
		require.NotNil(t, assignment.AssignedBy)
		assert.Equal(t, creator, *assignment.AssignedBy)
		require.Len(t, f.assignments.assignments, 1)

		require.Len(t, f.records.records, 1)
		assert.Equal(t, history.FieldAssignedTo, f.records.records[0].Field)

		require.Len(t, f.emitter.events, 1)
		payload := decodeNotification(t, f.emitter.events[0])
		assert.Equal(t, events.EventKindUpdated, payload.Event)
	})

	t.Run("duplicate assignment", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)
		f.expectTxRollback()
		creator := f.addUser("creator@example.com")
		assignee := f.addUser("assignee@example.com")

		task := f.seedTask(t, creator)
		task.AssigneeIDs = []uuid.UUID{assignee}

		_, err := f.svc.AssignUser(
			context.Background(), task.ID, assignee, "", creator)

		assert.ErrorIs(t, err, ErrAlreadyAssigned)
		assert.Empty(t, f.emitter.events)
	})
}

func TestTaskService_Comments(t *testing.T) {
	t.Parallel()

	t.Run("adds and lists comments", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)
		creator := f.addUser("creator@example.com")
		task := f.seedTask(t, creator)

		comment, err := f.svc.AddComment(
			context.Background(), task.ID, creator, "Looks good so far")
		require.NoError(t, err)
		assert.Equal(t, task.ID, comment.TaskID)

		comments, err := f.svc.ListComments(context.Background(), task.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "Looks good so far", comments[0].Text)
	})

	t.Run("listing comments of a missing task", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)

		_, err := f.svc.ListComments(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_ListHistory(t *testing.T) {
	t.Parallel()

	t.Run("returns records for the task", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)
		f.expectTx()
		creator := f.addUser("creator@example.com")
		task := f.seedTask(t, creator)

		newStatus := domain.TaskStatusDone
		_, err := f.svc.UpdateTask(context.Background(), task.ID, UpdateTaskInput{
			Status: &newStatus,
		}, creator)
		require.NoError(t, err)

		records, err := f.svc.ListHistory(context.Background(), task.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, history.FieldStatus, records[0].Field)
		assert.Equal(t, string(domain.TaskStatusTodo), records[0].OldValue)
		assert.Equal(t, string(domain.TaskStatusDone), records[0].NewValue)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()

		f := newTaskServiceFixture(t)

		_, err := f.svc.ListHistory(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}
