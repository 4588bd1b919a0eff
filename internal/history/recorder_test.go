package history

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// mockChangeRecordStore implements store.ChangeRecordStore in memory.
type mockChangeRecordStore struct {
	records   []*domain.ChangeRecord
	appendErr error
}

func (m *mockChangeRecordStore) Append(ctx context.Context, records []*domain.ChangeRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *mockChangeRecordStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.ChangeRecord, error) {
	var out []*domain.ChangeRecord
	for _, r := range m.records {
		if r.TaskID == taskID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockChangeRecordStore) WithTx(tx *sql.Tx) store.ChangeRecordStore {
	return m
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordIfChanged(t *testing.T) {
	ctx := context.Background()

	t.Run("no changes writes nothing", func(t *testing.T) {
		mock := &mockChangeRecordStore{}
		recorder := NewRecorder(mock, testLogger())

		task := newTestTask(t)
		records, err := recorder.RecordIfChanged(ctx, task, task.Clone(), nil)
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Empty(t, mock.records)
	})

	t.Run("creation writes nothing", func(t *testing.T) {
		mock := &mockChangeRecordStore{}
		recorder := NewRecorder(mock, testLogger())

		records, err := recorder.RecordIfChanged(ctx, nil, newTestTask(t), nil)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("one record per changed field", func(t *testing.T) {
		mock := &mockChangeRecordStore{}
		recorder := NewRecorder(mock, testLogger())

		actor := uuid.New()
		prev := newTestTask(t)
		next := prev.Clone()
		next.Status = domain.TaskStatusInProgress
		next.Priority = domain.TaskPriorityCritical

		records, err := recorder.RecordIfChanged(ctx, prev, next, &actor)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Len(t, mock.records, 2)

		assert.Equal(t, "status", records[0].Field)
		assert.Equal(t, "todo", records[0].OldValue)
		assert.Equal(t, "in_progress", records[0].NewValue)
		assert.Equal(t, "priority", records[1].Field)

		for _, record := range records {
			assert.Equal(t, next.ID, record.TaskID)
			require.NotNil(t, record.ChangedBy)
			assert.Equal(t, actor, *record.ChangedBy)
			assert.False(t, record.ChangedAt.IsZero())
		}
	})

	t.Run("concrete scenario: todo to in_progress", func(t *testing.T) {
		// Task created with due date three days out and 5 estimated hours,
		// then moved to in_progress: exactly one status record.
		mock := &mockChangeRecordStore{}
		recorder := NewRecorder(mock, testLogger())

		prev, err := domain.NewTask("Quarterly report", "", "", time.Now().UTC().Add(72*time.Hour), 5, uuid.New())
		require.NoError(t, err)
		next := prev.Clone()
		next.Status = domain.TaskStatusInProgress

		records, err := recorder.RecordIfChanged(ctx, prev, next, nil)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "status", records[0].Field)
		assert.Equal(t, "todo", records[0].OldValue)
		assert.Equal(t, "in_progress", records[0].NewValue)
		assert.Nil(t, records[0].ChangedBy)
	})

	t.Run("storage errors propagate", func(t *testing.T) {
		mock := &mockChangeRecordStore{appendErr: errors.New("connection reset")}
		recorder := NewRecorder(mock, testLogger())

		prev := newTestTask(t)
		next := prev.Clone()
		next.Title = "renamed"

		_, err := recorder.RecordIfChanged(ctx, prev, next, nil)
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	mock := &mockChangeRecordStore{}
	recorder := NewRecorder(mock, testLogger())

	task := newTestTask(t)

	next := task.Clone()
	next.Title = "first rename"
	_, err := recorder.RecordIfChanged(ctx, task, next, nil)
	require.NoError(t, err)

	final := next.Clone()
	final.Title = "second rename"
	_, err = recorder.RecordIfChanged(ctx, next, final, nil)
	require.NoError(t, err)

	records, err := mock.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "first rename", records[0].NewValue)
	assert.Equal(t, "second rename", records[1].NewValue)
}
