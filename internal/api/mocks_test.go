package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/api/shared"
	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/service"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// withUserID simulates the authentication middleware by injecting the user
// ID into the request context.
func withUserID(userID uuid.UUID, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// fakeTaskService is a configurable TaskService implementation for handler
// tests. Unset functions fail the request with a generic error.
type fakeTaskService struct {
	CreateTaskFn             func(ctx context.Context, input service.CreateTaskInput) (*domain.Task, error)
	CreateTaskFromTemplateFn func(ctx context.Context, templateName string, input service.CreateTaskInput) (*domain.Task, error)
	GetTaskFn                func(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
	ListTasksFn              func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateTaskFn             func(ctx context.Context, taskID uuid.UUID, input service.UpdateTaskInput, actorID uuid.UUID) (*domain.Task, error)
	DeleteTaskFn             func(ctx context.Context, taskID, actorID uuid.UUID) error
	AssignUserFn             func(ctx context.Context, taskID, userID uuid.UUID, role string, actorID uuid.UUID) (*domain.TaskAssignment, error)
	ListAssignmentsFn        func(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAssignment, error)
	AddCommentFn             func(ctx context.Context, taskID, authorID uuid.UUID, text string) (*domain.Comment, error)
	ListCommentsFn           func(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)
	ListHistoryFn            func(ctx context.Context, taskID uuid.UUID) ([]*domain.ChangeRecord, error)
}

var _ service.TaskService = (*fakeTaskService)(nil)

var errFakeUnset = &service.ServiceError{
	Service:   "fake_task_service",
	Operation: "unset",
	Message:   "test hook not configured",
}

func (f *fakeTaskService) CreateTask(
	ctx context.Context,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	if f.CreateTaskFn != nil {
		return f.CreateTaskFn(ctx, input)
	}
	return nil, errFakeUnset
}

func (f *fakeTaskService) CreateTaskFromTemplate(
	ctx context.Context,
	templateName string,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	if f.CreateTaskFromTemplateFn != nil {
		return f.CreateTaskFromTemplateFn(ctx, templateName, input)
	}
	return nil, errFakeUnset
}

func (f *fakeTaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	if f.GetTaskFn != nil {
		return f.GetTaskFn(ctx, taskID)
	}
	return nil, errFakeUnset
}

func (f *fakeTaskService) ListTasks(
	ctx context.Context,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	if f.ListTasksFn != nil {
		return f.ListTasksFn(ctx, filter)
	}
	return nil, errFakeUnset
}

func (f *fakeTaskService) UpdateTask(
	ctx context.Context,
	taskID uuid.UUID,
	input service.UpdateTaskInput,
	actorID uuid.UUID,
) (*domain.Task, error) {
	if f.UpdateTaskFn != nil {
		return f.UpdateTaskFn(ctx, taskID, input, actorID)
	}
	return nil, errFakeUnset
}

func (f *fakeTaskService) DeleteTask(ctx context.Context, taskID, actorID uuid.UUID) error {
	if f.DeleteTaskFn != nil {
		return f.DeleteTaskFn(ctx, taskID, actorID)
	}
	return errFakeUnset
}

func (f *fakeTaskService) AssignUser(
	ctx context.Context,
	taskID, userID uuid.UUID,
	role string,
	actorID uuid.UUID,
) (*domain.TaskAssignment, error) {
	if f.AssignUserFn != nil {
		return f.AssignUserFn(ctx, taskID, userID, role, actorID)
	}
	return nil, errFakeUnset
}

func (f *fakeTaskService) ListAssignments(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.TaskAssignment, error) {
	if f.ListAssignmentsFn != nil {
		return f.ListAssignmentsFn(ctx, taskID)
	}
	return nil, errFakeUnset
}

func (f *fakeTaskService) AddComment(
	ctx context.Context,
	taskID, authorID uuid.UUID,
	text string,
) (*domain.Comment, error) {
	if f.AddCommentFn != nil {
		return f.AddCommentFn(ctx, taskID, authorID, text)
	}
	return nil, errFakeUnset
}

func (f *fakeTaskService) ListComments(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.Comment, error) {
	if f.ListCommentsFn != nil {
		return f.ListCommentsFn(ctx, taskID)
	}
	return nil, errFakeUnset
}

func (f *fakeTaskService) ListHistory(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.ChangeRecord, error) {
	if f.ListHistoryFn != nil {
		return f.ListHistoryFn(ctx, taskID)
	}
	return nil, errFakeUnset
}

// fakeUserService is a configurable UserService implementation.
type fakeUserService struct {
	RegisterFn      func(ctx context.Context, email, password, role string) (*domain.User, *service.TokenPair, error)
	LoginFn         func(ctx context.Context, email, password string) (*domain.User, *service.TokenPair, error)
	RefreshTokensFn func(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	GetUserFn       func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListUsersFn     func(ctx context.Context) ([]*domain.User, error)
	UpdateUserFn    func(ctx context.Context, userID uuid.UUID, input service.UpdateUserInput) (*domain.User, error)
}

var _ service.UserService = (*fakeUserService)(nil)

func (f *fakeUserService) Register(
	ctx context.Context,
	email, password, role string,
) (*domain.User, *service.TokenPair, error) {
	if f.RegisterFn != nil {
		return f.RegisterFn(ctx, email, password, role)
	}
	return nil, nil, errFakeUnset
}

func (f *fakeUserService) Login(
	ctx context.Context,
	email, password string,
) (*domain.User, *service.TokenPair, error) {
	if f.LoginFn != nil {
		return f.LoginFn(ctx, email, password)
	}
	return nil, nil, errFakeUnset
}

func (f *fakeUserService) RefreshTokens(
	ctx context.Context,
	refreshToken string,
) (*service.TokenPair, error) {
	if f.RefreshTokensFn != nil {
		return f.RefreshTokensFn(ctx, refreshToken)
	}
	return nil, errFakeUnset
}

func (f *fakeUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if f.GetUserFn != nil {
		return f.GetUserFn(ctx, userID)
	}
	return nil, errFakeUnset
}

func (f *fakeUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if f.ListUsersFn != nil {
		return f.ListUsersFn(ctx)
	}
	return nil, errFakeUnset
}

func (f *fakeUserService) UpdateUser(
	ctx context.Context,
	userID uuid.UUID,
	input service.UpdateUserInput,
) (*domain.User, error) {
	if f.UpdateUserFn != nil {
		return f.UpdateUserFn(ctx, userID, input)
	}
	return nil, errFakeUnset
}

// fakeTeamService is a configurable TeamService implementation.
type fakeTeamService struct {
	CreateTeamFn func(ctx context.Context, name string) (*domain.Team, error)
	GetTeamFn    func(ctx context.Context, teamID uuid.UUID) (*domain.Team, error)
	ListTeamsFn  func(ctx context.Context) ([]*domain.Team, error)
	DeleteTeamFn func(ctx context.Context, teamID uuid.UUID) error
}

var _ service.TeamService = (*fakeTeamService)(nil)

func (f *fakeTeamService) CreateTeam(ctx context.Context, name string) (*domain.Team, error) {
	if f.CreateTeamFn != nil {
		return f.CreateTeamFn(ctx, name)
	}
	return nil, errFakeUnset
}

func (f *fakeTeamService) GetTeam(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	if f.GetTeamFn != nil {
		return f.GetTeamFn(ctx, teamID)
	}
	return nil, errFakeUnset
}

func (f *fakeTeamService) ListTeams(ctx context.Context) ([]*domain.Team, error) {
	if f.ListTeamsFn != nil {
		return f.ListTeamsFn(ctx)
	}
	return nil, errFakeUnset
}

func (f *fakeTeamService) DeleteTeam(ctx context.Context, teamID uuid.UUID) error {
	if f.DeleteTeamFn != nil {
		return f.DeleteTeamFn(ctx, teamID)
	}
	return errFakeUnset
}

// fakeCatalogService is a configurable CatalogService implementation.
type fakeCatalogService struct {
	CreateTagFn      func(ctx context.Context, name, description string) (*domain.Tag, error)
	GetTagFn         func(ctx context.Context, tagID uuid.UUID) (*domain.Tag, error)
	ListTagsFn       func(ctx context.Context) ([]*domain.Tag, error)
	CreateTemplateFn func(ctx context.Context, template *domain.TaskTemplate) error
	GetTemplateFn    func(ctx context.Context, name string) (*domain.TaskTemplate, error)
	ListTemplatesFn  func(ctx context.Context) ([]*domain.TaskTemplate, error)
}

var _ service.CatalogService = (*fakeCatalogService)(nil)

func (f *fakeCatalogService) CreateTag(
	ctx context.Context,
	name, description string,
) (*domain.Tag, error) {
	if f.CreateTagFn != nil {
		return f.CreateTagFn(ctx, name, description)
	}
	return nil, errFakeUnset
}

func (f *fakeCatalogService) GetTag(ctx context.Context, tagID uuid.UUID) (*domain.Tag, error) {
	if f.GetTagFn != nil {
		return f.GetTagFn(ctx, tagID)
	}
	return nil, errFakeUnset
}

func (f *fakeCatalogService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	if f.ListTagsFn != nil {
		return f.ListTagsFn(ctx)
	}
	return nil, errFakeUnset
}

func (f *fakeCatalogService) CreateTemplate(
	ctx context.Context,
	template *domain.TaskTemplate,
) error {
	if f.CreateTemplateFn != nil {
		return f.CreateTemplateFn(ctx, template)
	}
	return errFakeUnset
}

func (f *fakeCatalogService) GetTemplate(
	ctx context.Context,
	name string,
) (*domain.TaskTemplate, error) {
	if f.GetTemplateFn != nil {
		return f.GetTemplateFn(ctx, name)
	}
	return nil, errFakeUnset
}

func (f *fakeCatalogService) ListTemplates(ctx context.Context) ([]*domain.TaskTemplate, error) {
	if f.ListTemplatesFn != nil {
		return f.ListTemplatesFn(ctx)
	}
	return nil, errFakeUnset
}
