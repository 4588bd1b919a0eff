package scheduler

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/events"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTaskStore is an in-memory TaskStore for scheduler tests.
type fakeTaskStore struct {
	tasks   map[uuid.UUID]*domain.Task
	findErr error
	listErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	f.tasks[task.ID] = task.Clone()
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (f *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	f.tasks[task.ID] = task.Clone()
	return nil
}

func (f *fakeTaskStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.TaskStatus,
) error {
	task, ok := f.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	result := make([]*domain.Task, 0, len(f.tasks))
	for _, task := range f.tasks {
		result = append(result, task.Clone())
	}
	return result, nil
}

func (f *fakeTaskStore) FindOverdue(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var result []*domain.Task
	for _, task := range f.tasks {
		if !task.IsArchived && task.Status != domain.TaskStatusDone && task.DueDate.Before(now) {
			result = append(result, task.Clone())
		}
	}
	return result, nil
}

func (f *fakeTaskStore) ListUpdatedSince(
	ctx context.Context,
	since time.Time,
) ([]*domain.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var result []*domain.Task
	for _, task := range f.tasks {
		if !task.IsArchived && !task.UpdatedAt.Before(since) {
			result = append(result, task.Clone())
		}
	}
	return result, nil
}

func (f *fakeTaskStore) DeleteArchivedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	var deleted int64
	for id, task := range f.tasks {
		if task.IsArchived && task.UpdatedAt.Before(cutoff) {
			delete(f.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return f }

// fakeChangeRecordStore collects appended change records.
type fakeChangeRecordStore struct {
	records []*domain.ChangeRecord
}

func (f *fakeChangeRecordStore) Append(
	ctx context.Context,
	records []*domain.ChangeRecord,
) error {
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeChangeRecordStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.ChangeRecord, error) {
	var result []*domain.ChangeRecord
	for _, record := range f.records {
		if record.TaskID == taskID {
			result = append(result, record)
		}
	}
	return result, nil
}

func (f *fakeChangeRecordStore) WithTx(tx *sql.Tx) store.ChangeRecordStore { return f }

// fakeUserStore serves GetByID lookups for the summarizer.
type fakeUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserStore) addUser(email string) uuid.UUID {
	id := uuid.New()
	f.users[id] = &domain.User{ID: id, Email: email, Role: domain.DefaultUserRole}
	return id
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) GetEmailsByIDs(
	ctx context.Context,
	ids []uuid.UUID,
) ([]string, error) {
	var emails []string
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			emails = append(emails, user.Email)
		}
	}
	return emails, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

// captureEmitter records emitted events.
type captureEmitter struct {
	events []*events.TaskRequestEvent
}

func (c *captureEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	c.events = append(c.events, event)
	return nil
}

// capturedMail is one recorded Send call.
type capturedMail struct {
	subject string
	body    string
	to      []string
}

// captureMailer records sent mail.
type captureMailer struct {
	sends   []capturedMail
	sendErr error
}

func (c *captureMailer) Send(ctx context.Context, subject, body string, to []string) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sends = append(c.sends, capturedMail{subject: subject, body: body, to: to})
	return nil
}
