package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/service/auth"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// TokenPair holds an access token and the refresh token issued with it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides registration, login, and token refresh.
type UserService interface {
	// Register creates a new user account and issues an initial token pair.
	// Returns ErrEmailExists if the email is already registered.
	Register(ctx context.Context, email, password, role string) (*domain.User, *TokenPair, error)

	// Login verifies credentials and issues a token pair.
	// Returns ErrInvalidCredentials on a wrong email or password.
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)

	// RefreshTokens validates a refresh token and issues a fresh token pair.
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ListUsers returns all users ordered by creation time.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// UpdateUser applies the given changes to a user's profile. Returns
	// ErrUserNotFound if the user does not exist, ErrEmailExists if the new
	// email is taken, and ErrTeamNotFound if the target team does not exist.
	UpdateUser(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*domain.User, error)
}

// UpdateUserInput describes a partial user update. Nil fields are left
// unchanged. ClearTeam removes the team reference and wins over TeamID.
type UpdateUserInput struct {
	Email     *string
	Role      *string
	TeamID    *uuid.UUID
	ClearTeam bool
}

// userServiceImpl implements the UserService interface.
type userServiceImpl struct {
	users    store.UserStore
	teams    store.TeamStore
	jwt      auth.JWTService
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any required dependency is nil.
func NewUserService(
	users store.UserStore,
	teams store.TeamStore,
	jwt auth.JWTService,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "create_service",
			Message:   "users cannot be nil",
		}
	}
	if teams == nil {
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "create_service",
			Message:   "teams cannot be nil",
		}
	}
	if jwt == nil {
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "create_service",
			Message:   "jwt cannot be nil",
		}
	}
	if verifier == nil {
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "create_service",
			Message:   "verifier cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		users:    users,
		teams:    teams,
		jwt:      jwt,
		verifier: verifier,
		logger:   logger.With("component", "user_service"),
	}, nil
}

func (s *userServiceImpl) Register(
	ctx context.Context,
	email, password, role string,
) (*domain.User, *TokenPair, error) {
	user, err := domain.NewUser(email, password, role)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, nil, ErrEmailExists
		}
		s.logger.Error("failed to create user",
			"error", err,
			"email", email)
		return nil, nil, &ServiceError{
			Service:   "user_service",
			Operation: "register",
			Message:   "failed to save user",
			Err:       err,
		}
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"role", user.Role)

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *userServiceImpl) Login(
	ctx context.Context,
	email, password string,
) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user for login",
			"error", err)
		return nil, nil, &ServiceError{
			Service:   "user_service",
			Operation: "login",
			Message:   "failed to look up user",
			Err:       err,
		}
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("password mismatch on login", "user_id", user.ID)
		return nil, nil, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *userServiceImpl) RefreshTokens(
	ctx context.Context,
	refreshToken string,
) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	// The user may have been deleted since the token was issued.
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "refresh_tokens",
			Message:   "failed to look up user",
			Err:       err,
		}
	}

	s.logger.Debug("tokens refreshed", "user_id", user.ID)
	return s.issueTokens(ctx, user)
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "get_user",
			Message:   "failed to retrieve user",
			Err:       err,
		}
	}
	return user, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "list_users",
			Message:   "failed to list users",
			Err:       err,
		}
	}
	return users, nil
}

func (s *userServiceImpl) UpdateUser(
	ctx context.Context,
	userID uuid.UUID,
	input UpdateUserInput,
) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "update_user",
			Message:   "failed to retrieve user",
			Err:       err,
		}
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	switch {
	case input.ClearTeam:
		user.TeamID = nil
	case input.TeamID != nil:
		// Resolve the team up front so a bad reference surfaces as a 404
		// instead of a constraint violation.
		if _, err := s.teams.GetByID(ctx, *input.TeamID); err != nil {
			if errors.Is(err, store.ErrTeamNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, &ServiceError{
				Service:   "user_service",
				Operation: "update_user",
				Message:   "failed to resolve team",
				Err:       err,
			}
		}
		teamID := *input.TeamID
		user.TeamID = &teamID
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, store.ErrEmailExists):
			return nil, ErrEmailExists
		}
		s.logger.Error("failed to update user",
			"error", err,
			"user_id", userID)
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "update_user",
			Message:   "failed to save user",
			Err:       err,
		}
	}

	s.logger.Info("user updated", "user_id", user.ID)
	return user, nil
}

func (s *userServiceImpl) issueTokens(
	ctx context.Context,
	user *domain.User,
) (*TokenPair, error) {
	accessToken, err := s.jwt.GenerateToken(ctx, user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to generate access token",
			"error", err,
			"user_id", user.ID)
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "issue_tokens",
			Message:   "failed to generate access token",
			Err:       err,
		}
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(ctx, user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to generate refresh token",
			"error", err,
			"user_id", user.ID)
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "issue_tokens",
			Message:   "failed to generate refresh token",
			Err:       err,
		}
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
