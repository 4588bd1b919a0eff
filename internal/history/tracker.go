// Package history implements the task change-tracking core: a pure diff of
// tracked task fields and a recorder that appends the resulting change
// records to the append-only history ledger.
package history

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/domain"
)

// Tracked field names, in the fixed order changes are reported.
const (
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldStatus         = "status"
	FieldPriority       = "priority"
	FieldDueDate        = "due_date"
	FieldEstimatedHours = "estimated_hours"
	FieldActualHours    = "actual_hours"
	FieldIsArchived     = "is_archived"
	FieldParentTaskID   = "parent_task_id"
	FieldAssignedTo     = "assigned_to"
	FieldTags           = "tags"
)

// TrackedFields is the fixed set of task fields whose changes are recorded,
// in reporting order.
var TrackedFields = []string{
	FieldTitle,
	FieldDescription,
	FieldStatus,
	FieldPriority,
	FieldDueDate,
	FieldEstimatedHours,
	FieldActualHours,
	FieldIsArchived,
	FieldParentTaskID,
	FieldAssignedTo,
	FieldTags,
}

// FieldChange is one tracked-field difference between two task states.
// Values are already rendered to their storage strings.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// Diff compares the previously persisted state of a task against the state
// about to be persisted and returns one FieldChange per tracked field whose
// value differs, in TrackedFields order. Equal fields produce no entry.
//
// A nil prev means the task is being created; history begins only from the
// first mutation after creation, so Diff returns nil.
//
// Diff is pure: it reads both states and touches nothing else. Callers must
// pass the state currently stored as prev, not an earlier cached copy.
func Diff(prev, next *domain.Task) []FieldChange {
	if prev == nil || next == nil {
		return nil
	}

	var changes []FieldChange

	add := func(field, old, new string) {
		if old != new {
			changes = append(changes, FieldChange{Field: field, Old: old, New: new})
		}
	}

	add(FieldTitle, prev.Title, next.Title)
	add(FieldDescription, prev.Description, next.Description)
	add(FieldStatus, string(prev.Status), string(next.Status))
	add(FieldPriority, string(prev.Priority), string(next.Priority))

	// time.Time comparison must ignore location, so compare instants and
	// diff on the rendered values only when they actually differ.
	if !prev.DueDate.Equal(next.DueDate) {
		changes = append(changes, FieldChange{
			Field: FieldDueDate,
			Old:   renderTime(prev.DueDate),
			New:   renderTime(next.DueDate),
		})
	}

	add(FieldEstimatedHours, renderFloat(prev.EstimatedHours), renderFloat(next.EstimatedHours))
	add(FieldActualHours, renderOptionalFloat(prev.ActualHours), renderOptionalFloat(next.ActualHours))
	add(FieldIsArchived, strconv.FormatBool(prev.IsArchived), strconv.FormatBool(next.IsArchived))
	add(FieldParentTaskID, renderOptionalID(prev.ParentTaskID), renderOptionalID(next.ParentTaskID))

	// Many-to-many fields compare as id sets: order and duplicates are not
	// meaningful differences.
	add(FieldAssignedTo, renderIDSet(prev.AssigneeIDs), renderIDSet(next.AssigneeIDs))
	add(FieldTags, renderIDSet(prev.TagIDs), renderIDSet(next.TagIDs))

	return changes
}

// renderTime renders a timestamp for storage in a change record.
func renderTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// renderFloat renders hours in their shortest exact decimal form.
func renderFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// renderOptionalFloat renders nullable hours; nil becomes the empty string.
func renderOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return renderFloat(*f)
}

// renderOptionalID renders a nullable reference; nil becomes the empty string.
func renderOptionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// renderIDSet renders an id slice as a sorted, deduplicated, comma-joined
// string, so two slices with the same members always render identically.
func renderIDSet(ids []uuid.UUID) string {
	if len(ids) == 0 {
		return ""
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	rendered := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rendered = append(rendered, id.String())
	}

	sort.Strings(rendered)
	return strings.Join(rendered, ",")
}
