package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/metrics"
)

// Invalidator drops cached data belonging to one owner.
type Invalidator interface {
	Invalidate(ctx context.Context, owner uuid.UUID) error
}

// NewCacheInvalidationHandler returns a handler that invalidates the owner's
// cached task listings on every task change.
func NewCacheInvalidationHandler(inv Invalidator) EventHandler {
	return EventHandlerFunc(func(ctx context.Context, event *TaskEvent) error {
		return inv.Invalidate(ctx, event.UserID)
	})
}

// NewMetricsHandler returns a handler that counts task changes by action.
func NewMetricsHandler(rec metrics.Recorder) EventHandler {
	return EventHandlerFunc(func(_ context.Context, event *TaskEvent) error {
		rec.IncTaskMutation(string(event.Action))
		return nil
	})
}
