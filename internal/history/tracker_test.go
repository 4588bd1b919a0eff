package history

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo/tasktrail-api/internal/domain"
)

func newTestTask(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(
		"Prepare onboarding docs",
		"First draft for the new hires",
		domain.TaskPriorityMedium,
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		5,
		uuid.New(),
	)
	require.NoError(t, err)
	return task
}

func TestDiffIdenticalStates(t *testing.T) {
	task := newTestTask(t)
	assert.Empty(t, Diff(task, task.Clone()))
	assert.Empty(t, Diff(task, task))
}

func TestDiffNilPrevious(t *testing.T) {
	// Creation has no previous state; history starts from the first mutation.
	task := newTestTask(t)
	assert.Nil(t, Diff(nil, task))
}

func TestDiffSingleFieldChange(t *testing.T) {
	prev := newTestTask(t)
	next := prev.Clone()
	next.Status = domain.TaskStatusInProgress

	changes := Diff(prev, next)
	require.Len(t, changes, 1)
	assert.Equal(t, FieldChange{Field: "status", Old: "todo", New: "in_progress"}, changes[0])
}

func TestDiffMultipleFieldsInFixedOrder(t *testing.T) {
	prev := newTestTask(t)
	next := prev.Clone()

	next.Title = "Prepare onboarding docs v2"
	next.Status = domain.TaskStatusDone
	next.EstimatedHours = 8
	hours := 6.5
	next.ActualHours = &hours
	next.IsArchived = true

	changes := Diff(prev, next)
	require.Len(t, changes, 5)

	fields := make([]string, len(changes))
	for i, c := range changes {
		fields[i] = c.Field
	}
	assert.Equal(t, []string{"title", "status", "estimated_hours", "actual_hours", "is_archived"}, fields)

	assert.Equal(t, FieldChange{Field: "estimated_hours", Old: "5", New: "8"}, changes[2])
	assert.Equal(t, FieldChange{Field: "actual_hours", Old: "", New: "6.5"}, changes[3])
	assert.Equal(t, FieldChange{Field: "is_archived", Old: "false", New: "true"}, changes[4])
}

func TestDiffDueDate(t *testing.T) {
	prev := newTestTask(t)

	t.Run("same instant different zone is equal", func(t *testing.T) {
		next := prev.Clone()
		next.DueDate = prev.DueDate.In(time.FixedZone("CET", 3600))
		assert.Empty(t, Diff(prev, next))
	})

	t.Run("moved due date", func(t *testing.T) {
		next := prev.Clone()
		next.DueDate = prev.DueDate.Add(48 * time.Hour)

		changes := Diff(prev, next)
		require.Len(t, changes, 1)
		assert.Equal(t, "due_date", changes[0].Field)
		assert.Equal(t, "2025-06-01T12:00:00Z", changes[0].Old)
		assert.Equal(t, "2025-06-03T12:00:00Z", changes[0].New)
	})
}

func TestDiffSetFields(t *testing.T) {
	userA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	userB := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	t.Run("order does not matter", func(t *testing.T) {
		prev := newTestTask(t)
		prev.AssigneeIDs = []uuid.UUID{userA, userB}
		next := prev.Clone()
		next.AssigneeIDs = []uuid.UUID{userB, userA}
		assert.Empty(t, Diff(prev, next))
	})

	t.Run("duplicates do not matter", func(t *testing.T) {
		prev := newTestTask(t)
		prev.TagIDs = []uuid.UUID{userA}
		next := prev.Clone()
		next.TagIDs = []uuid.UUID{userA, userA}
		assert.Empty(t, Diff(prev, next))
	})

	t.Run("added assignee", func(t *testing.T) {
		prev := newTestTask(t)
		prev.AssigneeIDs = []uuid.UUID{userA}
		next := prev.Clone()
		next.AssigneeIDs = []uuid.UUID{userA, userB}

		changes := Diff(prev, next)
		require.Len(t, changes, 1)
		assert.Equal(t, "assigned_to", changes[0].Field)
		assert.Equal(t, userA.String(), changes[0].Old)
		assert.Equal(t, userA.String()+","+userB.String(), changes[0].New)
	})
}

func TestDiffParentTask(t *testing.T) {
	prev := newTestTask(t)
	next := prev.Clone()
	parent := uuid.New()
	next.ParentTaskID = &parent

	changes := Diff(prev, next)
	require.Len(t, changes, 1)
	assert.Equal(t, FieldChange{Field: "parent_task_id", Old: "", New: parent.String()}, changes[0])
}

func TestTrackedFieldsOrder(t *testing.T) {
	assert.Equal(t, []string{
		"title", "description", "status", "priority", "due_date",
		"estimated_hours", "actual_hours", "is_archived", "parent_task_id",
		"assigned_to", "tags",
	}, TrackedFields)
}
