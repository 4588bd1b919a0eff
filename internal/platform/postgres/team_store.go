package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/platform/logger"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// PostgresTeamStore implements the store.TeamStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTeamStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTeamStore creates a new PostgreSQL implementation of the
// TeamStore interface. If logger is nil, a default logger will be used.
func NewPostgresTeamStore(db store.DBTX, logger *slog.Logger) *PostgresTeamStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTeamStore{
		db:     db,
		logger: logger.With(slog.String("component", "team_store")),
	}
}

// Ensure PostgresTeamStore implements store.TeamStore interface
var _ store.TeamStore = (*PostgresTeamStore)(nil)

// Create implements store.TeamStore.Create
func (s *PostgresTeamStore) Create(ctx context.Context, team *domain.Team) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := team.Validate(); err != nil {
		log.Warn("team validation failed during create",
			slog.String("error", err.Error()),
			slog.String("team_id", team.ID.String()))
		return err
	}

	query := `INSERT INTO teams (id, name, created_at) VALUES ($1, $2, $3)`
	_, err := s.db.ExecContext(ctx, query, team.ID, team.Name, team.CreatedAt)
	if err != nil {
		log.Error("failed to create team",
			slog.String("error", err.Error()),
			slog.String("team_id", team.ID.String()))
		return MapError(err)
	}

	log.Info("team created successfully", slog.String("team_id", team.ID.String()))
	return nil
}

// GetByID implements store.TeamStore.GetByID
// Returns store.ErrTeamNotFound if the team does not exist.
func (s *PostgresTeamStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var team domain.Team
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM teams WHERE id = $1`, id).
		Scan(&team.ID, &team.Name, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTeamNotFound
		}
		log.Error("failed to get team by ID",
			slog.String("error", err.Error()),
			slog.String("team_id", id.String()))
		return nil, MapError(err)
	}

	return &team, nil
}

// List implements store.TeamStore.List
func (s *PostgresTeamStore) List(ctx context.Context) ([]*domain.Team, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM teams ORDER BY created_at ASC, id ASC`)
	if err != nil {
		log.Error("failed to list teams", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var teams []*domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		teams = append(teams, &team)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return teams, nil
}

// Delete implements store.TeamStore.Delete
// Members keep their accounts; the schema's ON DELETE SET NULL clears their
// team reference. Returns store.ErrTeamNotFound if the team does not exist.
func (s *PostgresTeamStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete team",
			slog.String("error", err.Error()),
			slog.String("team_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrTeamNotFound
	}

	log.Info("team deleted successfully", slog.String("team_id", id.String()))
	return nil
}
