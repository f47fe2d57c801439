package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/store"
)

// MockTaskStore implements store.TaskStore in memory. List applies the same
// filters, ordering and paging as the PostgreSQL store.
type MockTaskStore struct {
	CreateFn  func(ctx context.Context, task *domain.Task) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	UpdateFn  func(ctx context.Context, task *domain.Task) error
	DeleteFn  func(ctx context.Context, id, userID uuid.UUID) error
	ListFn    func(ctx context.Context, userID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, int, error)

	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task
	// ListCalls counts List invocations, including overridden ones.
	ListCalls int
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{Tasks: make(map[uuid.UUID]*domain.Task)}
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = copyTask(task)
	return nil
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(task), nil
}

// Update implements store.TaskStore. Like the SQL store it never rewrites
// the owner or the creation time.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	updated := copyTask(task)
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	m.Tasks[task.ID] = updated
	return nil
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Tasks[id]
	if !ok || existing.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// List implements store.TaskStore.
func (m *MockTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	q domain.TaskQuery,
) ([]*domain.Task, int, error) {
	m.mu.Lock()
	m.ListCalls++
	m.mu.Unlock()

	if m.ListFn != nil {
		return m.ListFn(ctx, userID, q)
	}

	q = q.Normalize()

	m.mu.Lock()
	var matched []*domain.Task
	for _, t := range m.Tasks {
		if t.UserID != userID {
			continue
		}
		if q.Search != "" && !strings.Contains(t.Name, q.Search) {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.HasDueRange() {
			if t.DueDate == nil || t.DueDate.Before(*q.DueFrom) || t.DueDate.After(*q.DueTo) {
				continue
			}
		}
		matched = append(matched, copyTask(t))
	}
	m.mu.Unlock()

	before := func(a, b *domain.Task) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	}
	sort.Slice(matched, func(i, j int) bool {
		if q.Sort == domain.SortAsc {
			return before(matched[i], matched[j])
		}
		return before(matched[j], matched[i])
	})

	total := len(matched)
	page := []*domain.Task{}
	start := q.Offset()
	if start < total {
		end := start + domain.TaskPageSize
		if end > total {
			end = total
		}
		page = append(page, matched[start:end]...)
	}
	return page, total, nil
}

// WithTx returns the same mock.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
