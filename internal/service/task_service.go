package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/cache"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/events"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/store"
)

// TaskListCache memoizes task list pages. *cache.ListCache implements it.
type TaskListCache interface {
	GetOrCompute(
		ctx context.Context,
		owner uuid.UUID,
		q domain.TaskQuery,
		compute cache.ComputeFunc,
	) (*domain.TaskPage, error)
}

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	Name        string
	Description *string
	Status      domain.TaskStatus
	DueDate     *time.Time
}

// TaskService provides task operations scoped to an owner. A task that
// exists but belongs to someone else is reported exactly like a missing one.
type TaskService interface {
	// ListTasks returns one page of the owner's tasks matching q.
	ListTasks(ctx context.Context, userID uuid.UUID, q domain.TaskQuery) (*domain.TaskPage, error)

	// CreateTask creates a task owned by userID.
	CreateTask(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*domain.Task, error)

	// GetTask returns the task if userID owns it, otherwise ErrTaskNotFound.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial update to a task userID owns.
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task userID owns.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

// TaskServiceImpl implements TaskService.
type TaskServiceImpl struct {
	tasks   store.TaskStore
	db      store.Beginner
	cache   TaskListCache
	emitter events.EventEmitter
	now     func() time.Time
	logger  *slog.Logger
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a TaskService. listCache and emitter may be nil, in
// which case listings are always read from the store and no change events
// are published.
func NewTaskService(
	tasks store.TaskStore,
	db store.Beginner,
	listCache TaskListCache,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *TaskServiceImpl {
	if tasks == nil || db == nil {
		panic("task store and db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:   tasks,
		db:      db,
		cache:   listCache,
		emitter: emitter,
		now:     time.Now,
		logger:  logger.With("component", "task_service"),
	}
}

// ListTasks implements TaskService.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, userID uuid.UUID, q domain.TaskQuery) (*domain.TaskPage, error) {
	q = q.Normalize()

	compute := func(ctx context.Context) (*domain.TaskPage, error) {
		tasks, total, err := s.tasks.List(ctx, userID, q)
		if err != nil {
			return nil, err
		}
		return &domain.TaskPage{Tasks: tasks, Pagination: domain.NewPagination(q.Page, total)}, nil
	}

	var (
		page *domain.TaskPage
		err  error
	)
	if s.cache != nil {
		page, err = s.cache.GetOrCompute(ctx, userID, q, compute)
	} else {
		page, err = compute(ctx)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			"error", err,
			"user_id", userID)
		return nil, NewServiceError("task", "list", "failed to list tasks", err)
	}
	return page, nil
}

// CreateTask implements TaskService.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(userID, in.Name, in.Description, in.Status, in.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			"error", err,
			"user_id", userID)
		return nil, NewServiceError("task", "create", "failed to save task", err)
	}

	log.Info("task created", "task_id", task.ID, "user_id", userID)
	s.publish(ctx, events.TaskCreated, task)
	return task, nil
}

// GetTask implements TaskService.
func (s *TaskServiceImpl) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, s.lookupError(ctx, "get", taskID, err)
	}
	return authorizeTask(task, userID)
}

// UpdateTask implements TaskService. The read, ownership check and write run
// in one transaction.
func (s *TaskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	// Ownership is checked before the patch is validated, so a non-owner
	// gets ErrTaskNotFound even for invalid input.
	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.tasks.WithTx(tx)

		task, err := txStore.GetByID(ctx, taskID)
		if err != nil {
			return s.lookupError(ctx, "update", taskID, err)
		}
		if task, err = authorizeTask(task, userID); err != nil {
			return err
		}

		if err := patch.Apply(task, s.now()); err != nil {
			return err
		}
		if err := txStore.Update(ctx, task); err != nil {
			if errors.Is(err, store.ErrTaskNotFound) {
				return ErrTaskNotFound
			}
			return NewServiceError("task", "update", "failed to save task", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		if !isExpected(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
				"error", err,
				"task_id", taskID)
		}
		return nil, err
	}

	s.publish(ctx, events.TaskUpdated, updated)
	return updated, nil
}

// DeleteTask implements TaskService.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, taskID, userID); err != nil {
		return s.lookupError(ctx, "delete", taskID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted", "task_id", taskID, "user_id", userID)
	s.publish(ctx, events.TaskDeleted, &domain.Task{ID: taskID, UserID: userID})
	return nil
}

// authorizeTask returns task when userID owns it and ErrTaskNotFound otherwise.
func authorizeTask(task *domain.Task, userID uuid.UUID) (*domain.Task, error) {
	if !task.IsOwnedBy(userID) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskServiceImpl) lookupError(ctx context.Context, op string, taskID uuid.UUID, err error) error {
	if store.IsNotFoundError(err) {
		return ErrTaskNotFound
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("task lookup failed",
		"error", err,
		"operation", op,
		"task_id", taskID)
	return NewServiceError("task", op, "failed to load task", err)
}

// publish notifies subscribers of a committed change. Subscriber failures are
// logged and never undo the write.
func (s *TaskServiceImpl) publish(ctx context.Context, action events.TaskAction, task *domain.Task) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, events.NewTaskEvent(action, task.ID, task.UserID)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("task event handler failed",
			"error", err,
			"action", action,
			"task_id", task.ID)
	}
}

func isExpected(err error) bool {
	var verr *domain.ValidationError
	return errors.Is(err, ErrTaskNotFound) || errors.As(err, &verr)
}
