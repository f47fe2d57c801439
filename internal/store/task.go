package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
// Every mutating method and every listing is scoped to an owner.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID regardless of owner. Ownership is
	// decided by the caller.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update writes name, description, status, due date and updated_at of a
	// task owned by task.UserID. The owner column is never written.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task with id owned by userID.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// List returns one page of userID's tasks matching q together with the
	// total number of matches across all pages. q must be normalized.
	List(ctx context.Context, userID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, int, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
