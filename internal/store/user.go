package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Version: 1.0
type UserStore interface {
	// Create saves a new user to the store. The user's plaintext Password
	// field is hashed before storage; the Password field is cleared on
	// return. Returns ErrEmailExists if the email is already in use.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetEmailsByIDs returns the email addresses of the given users, in no
	// particular order. Missing ids are skipped, not errors; the notification
	// path treats vanished users as expected.
	GetEmailsByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*domain.User, error)

	// Update persists the user's email, role, and team reference. The
	// password hash is not touched. Returns ErrUserNotFound if the user
	// does not exist and ErrEmailExists if the new email is taken.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their ID. Assignments made to
	// the user are removed by cascade; tasks they created remain.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// TeamStore defines the interface for team data persistence.
// Version: 1.0
type TeamStore interface {
	// Create saves a new team to the store.
	Create(ctx context.Context, team *domain.Team) error

	// GetByID retrieves a team by its unique ID.
	// Returns ErrTeamNotFound if the team does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)

	// List returns all teams ordered by creation time.
	List(ctx context.Context) ([]*domain.Team, error)

	// Delete removes a team. Members keep their accounts; their team
	// reference is set to null by the schema's ON DELETE SET NULL.
	// Returns ErrTeamNotFound if the team does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
