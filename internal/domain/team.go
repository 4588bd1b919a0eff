package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Team-specific validation errors
var (
	// ErrTeamIDEmpty is returned when a team ID is empty or nil.
	ErrTeamIDEmpty = errors.New("team ID cannot be empty")

	// ErrTeamNameEmpty is returned when a team name is empty.
	ErrTeamNameEmpty = errors.New("team name cannot be empty")
)

// Team groups users. Deleting a team does not delete its members; their
// team reference is set to nil.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTeam creates a new Team with the given name.
// Returns an error if validation fails.
func NewTeam(name string) (*Team, error) {
	team := &Team{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := team.Validate(); err != nil {
		return nil, err
	}

	return team, nil
}

// Validate checks if the Team has valid data.
// Returns an error if any field fails validation.
func (t *Team) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTeamIDEmpty
	}

	if t.Name == "" {
		return ErrTeamNameEmpty
	}

	return nil
}
