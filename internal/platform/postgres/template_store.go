package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/platform/logger"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// PostgresTemplateStore implements the store.TemplateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTemplateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTemplateStore creates a new PostgreSQL implementation of the
// TemplateStore interface. If logger is nil, a default logger will be used.
func NewPostgresTemplateStore(db store.DBTX, logger *slog.Logger) *PostgresTemplateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTemplateStore{
		db:     db,
		logger: logger.With(slog.String("component", "template_store")),
	}
}

// Ensure PostgresTemplateStore implements store.TemplateStore interface
var _ store.TemplateStore = (*PostgresTemplateStore)(nil)

// Create implements store.TemplateStore.Create
// Returns store.ErrTemplateNameExists if the name is taken.
func (s *PostgresTemplateStore) Create(ctx context.Context, template *domain.TaskTemplate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := template.Validate(); err != nil {
		log.Warn("template validation failed during create",
			slog.String("error", err.Error()),
			slog.String("template_id", template.ID.String()))
		return err
	}

	query := `
		INSERT INTO task_templates (id, name, description, default_priority,
			default_estimated_hours, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		template.ID,
		template.Name,
		template.Description,
		template.DefaultPriority,
		template.DefaultEstimatedHours,
		[]byte(template.Metadata),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate template name", slog.String("name", template.Name))
			return fmt.Errorf("%w: %v", store.ErrTemplateNameExists, err)
		}
		log.Error("failed to create template",
			slog.String("error", err.Error()),
			slog.String("template_id", template.ID.String()))
		return MapError(err)
	}

	log.Info("template created successfully",
		slog.String("template_id", template.ID.String()),
		slog.String("name", template.Name))
	return nil
}

// GetByName implements store.TemplateStore.GetByName
// Returns store.ErrTemplateNotFound if the template does not exist.
func (s *PostgresTemplateStore) GetByName(
	ctx context.Context,
	name string,
) (*domain.TaskTemplate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, description, default_priority, default_estimated_hours, metadata
		FROM task_templates
		WHERE name = $1
	`

	template, err := scanTemplate(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTemplateNotFound
		}
		log.Error("failed to get template by name",
			slog.String("error", err.Error()),
			slog.String("name", name))
		return nil, MapError(err)
	}

	return template, nil
}

// List implements store.TemplateStore.List
// Templates come back ordered by name.
func (s *PostgresTemplateStore) List(ctx context.Context) ([]*domain.TaskTemplate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, description, default_priority, default_estimated_hours, metadata
		FROM task_templates
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query templates", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	templates := []*domain.TaskTemplate{}
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			log.Error("failed to scan template row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return templates, nil
}

// scanTemplate reads one template row into a domain.TaskTemplate.
func scanTemplate(row rowScanner) (*domain.TaskTemplate, error) {
	var template domain.TaskTemplate
	var priority string
	var metadata []byte

	err := row.Scan(
		&template.ID,
		&template.Name,
		&template.Description,
		&priority,
		&template.DefaultEstimatedHours,
		&metadata,
	)
	if err != nil {
		return nil, err
	}

	template.DefaultPriority = domain.TaskPriority(priority)
	template.Metadata = metadata
	return &template, nil
}
