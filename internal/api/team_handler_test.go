package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/service"
)

func newTeamRouter(svc service.TeamService) http.Handler {
	handler := NewTeamHandler(svc)

	r := chi.NewRouter()
	r.Post("/teams", handler.Create)
	r.Get("/teams", handler.List)
	r.Get("/teams/{id}", handler.Get)
	r.Delete("/teams/{id}", handler.Delete)

	return r
}

func TestTeamHandler_Create(t *testing.T) {
	t.Parallel()

	svc := &fakeTeamService{
		CreateTeamFn: func(ctx context.Context, name string) (*domain.Team, error) {
			assert.Equal(t, "Platform", name)
			return domain.NewTeam(name)
		},
	}
	router := newTeamRouter(svc)

	body := `{"name":"Platform"}`
	req := httptest.NewRequest(http.MethodPost, "/teams", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var team domain.Team
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &team))
	assert.Equal(t, "Platform", team.Name)
	assert.NotEqual(t, uuid.Nil, team.ID)
}

func TestTeamHandler_Create_MissingName(t *testing.T) {
	t.Parallel()

	router := newTeamRouter(&fakeTeamService{})

	req := httptest.NewRequest(http.MethodPost, "/teams", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTeamHandler_Get(t *testing.T) {
	t.Parallel()

	team, err := domain.NewTeam("Support")
	require.NoError(t, err)

	svc := &fakeTeamService{
		GetTeamFn: func(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
			require.Equal(t, team.ID, teamID)
			return team, nil
		},
	}
	router := newTeamRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/teams/"+team.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Support")
}

func TestTeamHandler_Get_NotFound(t *testing.T) {
	t.Parallel()

	svc := &fakeTeamService{
		GetTeamFn: func(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
			return nil, service.ErrTeamNotFound
		},
	}
	router := newTeamRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/teams/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Team not found")
}

func TestTeamHandler_Get_InvalidID(t *testing.T) {
	t.Parallel()

	router := newTeamRouter(&fakeTeamService{})

	req := httptest.NewRequest(http.MethodGet, "/teams/not-a-uuid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTeamHandler_List(t *testing.T) {
	t.Parallel()

	first, err := domain.NewTeam("Platform")
	require.NoError(t, err)
	second, err := domain.NewTeam("Support")
	require.NoError(t, err)

	svc := &fakeTeamService{
		ListTeamsFn: func(ctx context.Context) ([]*domain.Team, error) {
			return []*domain.Team{first, second}, nil
		},
	}
	router := newTeamRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/teams", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var teams []*domain.Team
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &teams))
	assert.Len(t, teams, 2)
}

func TestTeamHandler_Delete(t *testing.T) {
	t.Parallel()

	teamID := uuid.New()
	svc := &fakeTeamService{
		DeleteTeamFn: func(ctx context.Context, id uuid.UUID) error {
			require.Equal(t, teamID, id)
			return nil
		},
	}
	router := newTeamRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/teams/"+teamID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTeamHandler_Delete_NotFound(t *testing.T) {
	t.Parallel()

	svc := &fakeTeamService{
		DeleteTeamFn: func(ctx context.Context, id uuid.UUID) error {
			return service.ErrTeamNotFound
		},
	}
	router := newTeamRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/teams/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
