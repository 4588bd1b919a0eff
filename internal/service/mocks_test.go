package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/events"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTaskStore is an in-memory TaskStore. WithTx returns the same instance;
// transactional semantics are covered by the postgres store tests.
type fakeTaskStore struct {
	tasks     map[uuid.UUID]*domain.Task
	createErr error
	getErr    error
	updateErr error
	deleteErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tasks[task.ID] = task.Clone()
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	task, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (f *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}
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
	if f.deleteErr != nil {
		return f.deleteErr
	}
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
		if !filter.IncludeArchived && task.IsArchived {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(task.Title), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, task.Clone())
	}
	return result, nil
}

func (f *fakeTaskStore) FindOverdue(ctx context.Context, now time.Time) ([]*domain.Task, error) {
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

// fakeCommentStore is an in-memory CommentStore.
type fakeCommentStore struct {
	comments  []*domain.Comment
	createErr error
}

func (f *fakeCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeCommentStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.Comment, error) {
	var result []*domain.Comment
	for _, comment := range f.comments {
		if comment.TaskID == taskID {
			result = append(result, comment)
		}
	}
	return result, nil
}

// fakeAssignmentStore is an in-memory AssignmentStore.
type fakeAssignmentStore struct {
	assignments []*domain.TaskAssignment
	createErr   error
}

func (f *fakeAssignmentStore) Create(
	ctx context.Context,
	assignment *domain.TaskAssignment,
) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.assignments = append(f.assignments, assignment)
	return nil
}

func (f *fakeAssignmentStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.TaskAssignment, error) {
	var result []*domain.TaskAssignment
	for _, assignment := range f.assignments {
		if assignment.TaskID == taskID {
			result = append(result, assignment)
		}
	}
	return result, nil
}

func (f *fakeAssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore { return f }

// fakeChangeRecordStore is an in-memory ChangeRecordStore.
type fakeChangeRecordStore struct {
	records   []*domain.ChangeRecord
	appendErr error
}

func (f *fakeChangeRecordStore) Append(
	ctx context.Context,
	records []*domain.ChangeRecord,
) error {
	if f.appendErr != nil {
		return f.appendErr
	}
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

// fakeUserStore is an in-memory UserStore keyed by id and email.
type fakeUserStore struct {
	users     map[uuid.UUID]*domain.User
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	user.HashedPassword = "hashed:" + user.Password
	user.Password = ""
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	// Fresh struct per lookup, like a row scan.
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
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
	if _, ok := f.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for id, existing := range f.users {
		if id != user.ID && existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	f.users[user.ID] = user
	return nil
}

// fakeTeamStore is an in-memory TeamStore.
type fakeTeamStore struct {
	teams     map[uuid.UUID]*domain.Team
	createErr error
	deleteErr error
}

func newFakeTeamStore() *fakeTeamStore {
	return &fakeTeamStore{teams: make(map[uuid.UUID]*domain.Team)}
}

func (f *fakeTeamStore) Create(ctx context.Context, team *domain.Team) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, store.ErrTeamNotFound
	}
	return team, nil
}

func (f *fakeTeamStore) List(ctx context.Context) ([]*domain.Team, error) {
	var teams []*domain.Team
	for _, team := range f.teams {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].CreatedAt.Before(teams[j].CreatedAt)
	})
	return teams, nil
}

func (f *fakeTeamStore) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.teams[id]; !ok {
		return store.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

// fakeTagStore is an in-memory TagStore.
type fakeTagStore struct {
	tags      map[uuid.UUID]*domain.Tag
	createErr error
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{tags: make(map[uuid.UUID]*domain.Tag)}
}

func (f *fakeTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.tags {
		if existing.Name == tag.Name {
			return store.ErrTagNameExists
		}
	}
	f.tags[tag.ID] = tag
	return nil
}

func (f *fakeTagStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	tag, ok := f.tags[id]
	if !ok {
		return nil, store.ErrTagNotFound
	}
	return tag, nil
}

func (f *fakeTagStore) List(ctx context.Context) ([]*domain.Tag, error) {
	result := make([]*domain.Tag, 0, len(f.tags))
	for _, tag := range f.tags {
		result = append(result, tag)
	}
	return result, nil
}

// fakeTemplateStore is an in-memory TemplateStore keyed by name.
type fakeTemplateStore struct {
	templates map[string]*domain.TaskTemplate
	createErr error
}

func newFakeTemplateStore() *fakeTemplateStore {
	return &fakeTemplateStore{templates: make(map[string]*domain.TaskTemplate)}
}

func (f *fakeTemplateStore) Create(ctx context.Context, template *domain.TaskTemplate) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.templates[template.Name]; ok {
		return store.ErrTemplateNameExists
	}
	f.templates[template.Name] = template
	return nil
}

func (f *fakeTemplateStore) GetByName(
	ctx context.Context,
	name string,
) (*domain.TaskTemplate, error) {
	template, ok := f.templates[name]
	if !ok {
		return nil, store.ErrTemplateNotFound
	}
	return template, nil
}

func (f *fakeTemplateStore) List(ctx context.Context) ([]*domain.TaskTemplate, error) {
	result := make([]*domain.TaskTemplate, 0, len(f.templates))
	for _, template := range f.templates {
		result = append(result, template)
	}
	return result, nil
}

// captureEmitter records emitted events.
type captureEmitter struct {
	events  []*events.TaskRequestEvent
	emitErr error
}

func (c *captureEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if c.emitErr != nil {
		return c.emitErr
	}
	c.events = append(c.events, event)
	return nil
}
