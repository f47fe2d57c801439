package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the progress state of a task.
type TaskStatus string

// The only valid task states. There is no implicit default.
const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// TaskNameMaxLength bounds Task.Name in characters.
const TaskNameMaxLength = 255

// TaskStatuses lists the valid statuses in display order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusToDo, TaskStatusInProgress, TaskStatusDone}
}

// Valid reports whether s is one of the three known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// ParseTaskStatus converts raw input into a TaskStatus.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: task status %q", ErrInvalidFormat, raw)
	}
	return s, nil
}

// Task is a unit of work owned by a single user.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a task owned by userID.
// Returns a *ValidationError if any field is invalid.
func NewTask(
	userID uuid.UUID,
	name string,
	description *string,
	status TaskStatus,
	dueDate *time.Time,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
		Status:      status,
		DueDate:     utcPtr(dueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	verr := &ValidationError{}

	if t.ID == uuid.Nil {
		verr.Add("id", "The id field is required.")
	}
	if t.UserID == uuid.Nil {
		verr.Add("user_id", "The user id field is required.")
	}
	verr.Merge(validateTaskName(t.Name))
	verr.Merge(validateTaskStatus(t.Status))

	return verr.OrNil()
}

// IsOwnedBy reports whether userID owns the task.
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t != nil && userID != uuid.Nil && t.UserID == userID
}

// TaskPatch describes a partial update. Only fields that were supplied are
// validated and applied; everything else on the task is left untouched.
type TaskPatch struct {
	Name        *string
	Description Nullable[string]
	Status      *TaskStatus
	DueDate     Nullable[time.Time]
}

// IsEmpty reports whether the patch would change nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && !p.Description.Set && p.Status == nil && !p.DueDate.Set
}

// Validate checks only the supplied fields.
func (p TaskPatch) Validate() error {
	verr := &ValidationError{}
	if p.Name != nil {
		verr.Merge(validateTaskName(*p.Name))
	}
	if p.Status != nil {
		verr.Merge(validateTaskStatus(*p.Status))
	}
	return verr.OrNil()
}

// Apply validates the patch and writes the supplied fields onto t.
// UserID and CreatedAt are never modified. UpdatedAt is set to now.
func (p TaskPatch) Apply(t *Task, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate.Set {
		t.DueDate = utcPtr(p.DueDate.Value)
	}
	t.UpdatedAt = now.UTC()

	return nil
}

func validateTaskName(name string) *ValidationError {
	switch {
	case strings.TrimSpace(name) == "":
		return NewValidationError("name", "The name field is required.")
	case utf8.RuneCountInString(name) > TaskNameMaxLength:
		return NewValidationError("name", "The name field must not be greater than 255 characters.")
	}
	return nil
}

func validateTaskStatus(status TaskStatus) *ValidationError {
	switch {
	case status == "":
		return NewValidationError("status", "The status field is required.")
	case !status.Valid():
		return NewValidationError("status", "The selected status is invalid.")
	}
	return nil
}

// dateLayouts are the accepted input formats for dates, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseDate parses a date or timestamp supplied by a client.
// Values without a zone are interpreted as UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidFormat, raw)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
