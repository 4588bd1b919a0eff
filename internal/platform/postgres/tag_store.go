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

// PostgresTagStore implements the store.TagStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the
// TagStore interface. If logger is nil, a default logger will be used.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

// Ensure PostgresTagStore implements store.TagStore interface
var _ store.TagStore = (*PostgresTagStore)(nil)

// Create implements store.TagStore.Create
// Returns store.ErrTagNameExists if the name is taken.
func (s *PostgresTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tag.Validate(); err != nil {
		log.Warn("tag validation failed during create",
			slog.String("error", err.Error()),
			slog.String("tag_id", tag.ID.String()))
		return err
	}

	query := `INSERT INTO tags (id, name, description) VALUES ($1, $2, $3)`
	_, err := s.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.Description)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate tag name", slog.String("name", tag.Name))
			return fmt.Errorf("%w: %v", store.ErrTagNameExists, err)
		}
		log.Error("failed to create tag",
			slog.String("error", err.Error()),
			slog.String("tag_id", tag.ID.String()))
		return MapError(err)
	}

	log.Info("tag created successfully",
		slog.String("tag_id", tag.ID.String()),
		slog.String("name", tag.Name))
	return nil
}

// GetByID implements store.TagStore.GetByID
// Returns store.ErrTagNotFound if the tag does not exist.
func (s *PostgresTagStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var tag domain.Tag
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM tags WHERE id = $1`, id).
		Scan(&tag.ID, &tag.Name, &tag.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		log.Error("failed to get tag by ID",
			slog.String("error", err.Error()),
			slog.String("tag_id", id.String()))
		return nil, MapError(err)
	}

	return &tag, nil
}

// List implements store.TagStore.List
// Tags come back ordered by name.
func (s *PostgresTagStore) List(ctx context.Context) ([]*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description FROM tags ORDER BY name ASC`)
	if err != nil {
		log.Error("failed to query tags", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tags := []*domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Description); err != nil {
			log.Error("failed to scan tag row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tags, nil
}
