package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskAction names the kind of change a TaskEvent describes.
type TaskAction string

const (
	TaskCreated TaskAction = "created"
	TaskUpdated TaskAction = "updated"
	TaskDeleted TaskAction = "deleted"
)

// TaskEvent describes a committed change to one task.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Action TaskAction `json:"action"`
	TaskID uuid.UUID  `json:"task_id"`

	// UserID is the owner of the task.
	UserID uuid.UUID `json:"user_id"`

	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskEvent creates a TaskEvent stamped with a fresh ID and the current time.
func NewTaskEvent(action TaskAction, taskID, userID uuid.UUID) *TaskEvent {
	return &TaskEvent{
		ID:         uuid.New(),
		Action:     action,
		TaskID:     taskID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *TaskEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *TaskEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
