package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// CatalogService manages the shared task vocabulary: tags and templates.
// Both are small, mostly-read collections with no side effects, so they
// share one thin service.
type CatalogService interface {
	// CreateTag creates a new tag. Returns ErrTagNameExists if the name is
	// taken.
	CreateTag(ctx context.Context, name, description string) (*domain.Tag, error)

	// GetTag retrieves a tag by its ID.
	GetTag(ctx context.Context, tagID uuid.UUID) (*domain.Tag, error)

	// ListTags returns all tags ordered by name.
	ListTags(ctx context.Context) ([]*domain.Tag, error)

	// CreateTemplate creates a new task template. Returns
	// ErrTemplateNameExists if the name is taken.
	CreateTemplate(ctx context.Context, template *domain.TaskTemplate) error

	// GetTemplate retrieves a template by its unique name.
	GetTemplate(ctx context.Context, name string) (*domain.TaskTemplate, error)

	// ListTemplates returns all templates ordered by name.
	ListTemplates(ctx context.Context) ([]*domain.TaskTemplate, error)
}

// catalogServiceImpl implements the CatalogService interface.
type catalogServiceImpl struct {
	tags      store.TagStore
	templates store.TemplateStore
	logger    *slog.Logger
}

// NewCatalogService creates a new CatalogService.
// It returns an error if any required dependency is nil.
func NewCatalogService(
	tags store.TagStore,
	templates store.TemplateStore,
	logger *slog.Logger,
) (CatalogService, error) {
	if tags == nil {
		return nil, &ServiceError{
			Service:   "catalog_service",
			Operation: "create_service",
			Message:   "tags cannot be nil",
		}
	}
	if templates == nil {
		return nil, &ServiceError{
			Service:   "catalog_service",
			Operation: "create_service",
			Message:   "templates cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &catalogServiceImpl{
		tags:      tags,
		templates: templates,
		logger:    logger.With("component", "catalog_service"),
	}, nil
}

func (s *catalogServiceImpl) CreateTag(
	ctx context.Context,
	name, description string,
) (*domain.Tag, error) {
	tag, err := domain.NewTag(name, description)
	if err != nil {
		return nil, err
	}

	if err := s.tags.Create(ctx, tag); err != nil {
		if errors.Is(err, store.ErrTagNameExists) {
			return nil, ErrTagNameExists
		}
		return nil, &ServiceError{
			Service:   "catalog_service",
			Operation: "create_tag",
			Message:   "failed to save tag",
			Err:       err,
		}
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "name", tag.Name)
	return tag, nil
}

func (s *catalogServiceImpl) GetTag(ctx context.Context, tagID uuid.UUID) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, &ServiceError{
			Service:   "catalog_service",
			Operation: "get_tag",
			Message:   "failed to retrieve tag",
			Err:       err,
		}
	}
	return tag, nil
}

func (s *catalogServiceImpl) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, &ServiceError{
			Service:   "catalog_service",
			Operation: "list_tags",
			Message:   "failed to list tags",
			Err:       err,
		}
	}
	return tags, nil
}

func (s *catalogServiceImpl) CreateTemplate(
	ctx context.Context,
	template *domain.TaskTemplate,
) error {
	if err := template.Validate(); err != nil {
		return err
	}

	if err := s.templates.Create(ctx, template); err != nil {
		if errors.Is(err, store.ErrTemplateNameExists) {
			return ErrTemplateNameExists
		}
		return &ServiceError{
			Service:   "catalog_service",
			Operation: "create_template",
			Message:   "failed to save template",
			Err:       err,
		}
	}

	s.logger.Info("template created",
		"template_id", template.ID,
		"name", template.Name)
	return nil
}

func (s *catalogServiceImpl) GetTemplate(
	ctx context.Context,
	name string,
) (*domain.TaskTemplate, error) {
	template, err := s.templates.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, &ServiceError{
			Service:   "catalog_service",
			Operation: "get_template",
			Message:   "failed to retrieve template",
			Err:       err,
		}
	}
	return template, nil
}

func (s *catalogServiceImpl) ListTemplates(ctx context.Context) ([]*domain.TaskTemplate, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, &ServiceError{
			Service:   "catalog_service",
			Operation: "list_templates",
			Message:   "failed to list templates",
			Err:       err,
		}
	}
	return templates, nil
}
