package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo/tasktrail-api/internal/domain"
)

func newCatalogServiceFixture(t *testing.T) (CatalogService, *fakeTagStore, *fakeTemplateStore) {
	t.Helper()

	tags := newFakeTagStore()
	templates := newFakeTemplateStore()

	svc, err := NewCatalogService(tags, templates, discardLogger())
	require.NoError(t, err)
	return svc, tags, templates
}

func TestCatalogService_Tags(t *testing.T) {
	t.Parallel()

	t.Run("creates and lists tags", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newCatalogServiceFixture(t)

		tag, err := svc.CreateTag(context.Background(), "backend", "Server side work")
		require.NoError(t, err)
		assert.Equal(t, "backend", tag.Name)

		got, err := svc.GetTag(context.Background(), tag.ID)
		require.NoError(t, err)
		assert.Equal(t, tag.ID, got.ID)

		tags, err := svc.ListTags(context.Background())
		require.NoError(t, err)
		assert.Len(t, tags, 1)
	})

	t.Run("duplicate tag name", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newCatalogServiceFixture(t)

		_, err := svc.CreateTag(context.Background(), "backend", "")
		require.NoError(t, err)

		_, err = svc.CreateTag(context.Background(), "backend", "again")
		assert.ErrorIs(t, err, ErrTagNameExists)
	})

	t.Run("missing tag", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newCatalogServiceFixture(t)

		_, err := svc.GetTag(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrTagNotFound)
	})
}

func TestCatalogService_Templates(t *testing.T) {
	t.Parallel()

	t.Run("creates and retrieves templates", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newCatalogServiceFixture(t)

		template, err := domain.NewTaskTemplate(
			"incident", "Production incident response", domain.TaskPriorityCritical, 1)
		require.NoError(t, err)

		require.NoError(t, svc.CreateTemplate(context.Background(), template))

		got, err := svc.GetTemplate(context.Background(), "incident")
		require.NoError(t, err)
		assert.Equal(t, domain.TaskPriorityCritical, got.DefaultPriority)
	})

	t.Run("duplicate template name", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newCatalogServiceFixture(t)

		first, err := domain.NewTaskTemplate("incident", "", domain.TaskPriorityHigh, 1)
		require.NoError(t, err)
		require.NoError(t, svc.CreateTemplate(context.Background(), first))

		second, err := domain.NewTaskTemplate("incident", "", domain.TaskPriorityLow, 2)
		require.NoError(t, err)
		assert.ErrorIs(t,
			svc.CreateTemplate(context.Background(), second), ErrTemplateNameExists)
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newCatalogServiceFixture(t)

		_, err := svc.GetTemplate(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})
}
