package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// TeamService manages teams. Teams are reference data for users; deleting
// one clears its members' team reference without touching their accounts.
type TeamService interface {
	// CreateTeam creates a new team with the given name.
	CreateTeam(ctx context.Context, name string) (*domain.Team, error)

	// GetTeam retrieves a team by its ID.
	GetTeam(ctx context.Context, teamID uuid.UUID) (*domain.Team, error)

	// ListTeams returns all teams ordered by creation time.
	ListTeams(ctx context.Context) ([]*domain.Team, error)

	// DeleteTeam removes a team. Members keep their accounts; their team
	// reference is nulled by the schema.
	DeleteTeam(ctx context.Context, teamID uuid.UUID) error
}

// teamServiceImpl implements the TeamService interface.
type teamServiceImpl struct {
	teams  store.TeamStore
	logger *slog.Logger
}

// NewTeamService creates a new TeamService.
// It returns an error if any required dependency is nil.
func NewTeamService(teams store.TeamStore, logger *slog.Logger) (TeamService, error) {
	if teams == nil {
		return nil, &ServiceError{
			Service:   "team_service",
			Operation: "create_service",
			Message:   "teams cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &teamServiceImpl{
		teams:  teams,
		logger: logger.With("component", "team_service"),
	}, nil
}

func (s *teamServiceImpl) CreateTeam(ctx context.Context, name string) (*domain.Team, error) {
	team, err := domain.NewTeam(name)
	if err != nil {
		return nil, err
	}

	if err := s.teams.Create(ctx, team); err != nil {
		return nil, &ServiceError{
			Service:   "team_service",
			Operation: "create_team",
			Message:   "failed to save team",
			Err:       err,
		}
	}

	s.logger.Info("team created", "team_id", team.ID, "name", team.Name)
	return team, nil
}

func (s *teamServiceImpl) GetTeam(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, &ServiceError{
			Service:   "team_service",
			Operation: "get_team",
			Message:   "failed to retrieve team",
			Err:       err,
		}
	}
	return team, nil
}

func (s *teamServiceImpl) ListTeams(ctx context.Context) ([]*domain.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, &ServiceError{
			Service:   "team_service",
			Operation: "list_teams",
			Message:   "failed to list teams",
			Err:       err,
		}
	}
	return teams, nil
}

func (s *teamServiceImpl) DeleteTeam(ctx context.Context, teamID uuid.UUID) error {
	if err := s.teams.Delete(ctx, teamID); err != nil {
		if errors.Is(err, store.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return &ServiceError{
			Service:   "team_service",
			Operation: "delete_team",
			Message:   "failed to delete team",
			Err:       err,
		}
	}

	s.logger.Info("team deleted", "team_id", teamID)
	return nil
}
