package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewTask(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	due := time.Date(2025, 1, 3, 9, 30, 0, 0, time.FixedZone("CET", 3600))

	task, err := NewTask(owner, "Write report", strPtr("quarterly"), TaskStatusToDo, &due)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, owner, task.UserID)
	assert.Equal(t, "Write report", task.Name)
	require.NotNil(t, task.Description)
	assert.Equal(t, "quarterly", *task.Description)
	assert.Equal(t, TaskStatusToDo, task.Status)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.UTC, task.DueDate.Location())
	assert.True(t, due.Equal(*task.DueDate))
}

func TestNewTask_Validation(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	tests := []struct {
		name      string
		owner     uuid.UUID
		taskName  string
		status    TaskStatus
		wantField string
	}{
		{"missing owner", uuid.Nil, "x", TaskStatusDone, "user_id"},
		{"missing name", owner, "", TaskStatusDone, "name"},
		{"blank name", owner, "   ", TaskStatusDone, "name"},
		{"long name", owner, strings.Repeat("n", 256), TaskStatusDone, "name"},
		{"missing status", owner, "x", "", "status"},
		{"unknown status", owner, "x", "Pending", "status"},
		{"wrong case status", owner, "x", "done", "status"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewTask(tc.owner, tc.taskName, nil, tc.status, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields(), tc.wantField)
		})
	}
}

func TestParseTaskStatus(t *testing.T) {
	t.Parallel()

	for _, s := range TaskStatuses() {
		got, err := ParseTaskStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseTaskStatus("Archived")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestTaskIsOwnedBy(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	task := &Task{ID: uuid.New(), UserID: owner}

	assert.True(t, task.IsOwnedBy(owner))
	assert.False(t, task.IsOwnedBy(uuid.New()))
	assert.False(t, task.IsOwnedBy(uuid.Nil))

	var missing *Task
	assert.False(t, missing.IsOwnedBy(owner))
}

func TestTaskPatch_StatusOnlyLeavesOtherFields(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	task, err := NewTask(owner, "Ship", strPtr("v1"), TaskStatusToDo, &due)
	require.NoError(t, err)
	original := *task

	done := TaskStatusDone
	now := time.Now().Add(time.Minute)
	require.NoError(t, TaskPatch{Status: &done}.Apply(task, now))

	assert.Equal(t, TaskStatusDone, task.Status)
	assert.Equal(t, original.Name, task.Name)
	assert.Equal(t, original.Description, task.Description)
	assert.Equal(t, original.DueDate, task.DueDate)
	assert.Equal(t, original.UserID, task.UserID)
	assert.Equal(t, original.CreatedAt, task.CreatedAt)
	assert.Equal(t, now.UTC(), task.UpdatedAt)
}

func TestTaskPatch_ClearsNullableFields(t *testing.T) {
	t.Parallel()

	due := time.Now()
	task, err := NewTask(uuid.New(), "Ship", strPtr("v1"), TaskStatusToDo, &due)
	require.NoError(t, err)

	patch := TaskPatch{Description: Null[string](), DueDate: Null[time.Time]()}
	require.NoError(t, patch.Apply(task, time.Now()))

	assert.Nil(t, task.Description)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, "Ship", task.Name)
}

func TestTaskPatch_InvalidFieldsRejectedWithoutMutation(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), "Ship", nil, TaskStatusToDo, nil)
	require.NoError(t, err)
	before := *task

	empty := ""
	bogus := TaskStatus("Later")
	err = TaskPatch{Name: &empty, Status: &bogus}.Apply(task, time.Now())
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The name field is required.", verr.First())
	assert.Contains(t, verr.Fields(), "status")
	assert.Equal(t, before, *task)
}

func TestTaskPatch_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, TaskPatch{}.IsEmpty())
	assert.False(t, TaskPatch{Description: Null[string]()}.IsEmpty())
	assert.False(t, TaskPatch{Name: strPtr("x")}.IsEmpty())
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-05", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"2025-01-05 13:45:00", time.Date(2025, 1, 5, 13, 45, 0, 0, time.UTC)},
		{"2025-01-05T13:45:00", time.Date(2025, 1, 5, 13, 45, 0, 0, time.UTC)},
		{"2025-01-05T13:45:00+02:00", time.Date(2025, 1, 5, 11, 45, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		got, err := ParseDate(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, tc.want.Equal(got), "%s: got %s", tc.in, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	for _, bad := range []string{"", "tomorrow", "2025-13-01", "05/01/2025"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidFormat, bad)
	}
}

func TestTaskJSONShape(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), "Ship", nil, TaskStatusInProgress, nil)
	require.NoError(t, err)

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "In Progress", decoded["status"])
	assert.Nil(t, decoded["description"])
	assert.Nil(t, decoded["due_date"])
	assert.Contains(t, decoded, "user_id")
}
