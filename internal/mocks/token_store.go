package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/store"
)

// MockTokenStore implements store.TokenStore in memory.
type MockTokenStore struct {
	CreateFn  func(ctx context.Context, token *store.AccessToken) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*store.AccessToken, error)

	mu     sync.Mutex
	Tokens map[uuid.UUID]store.AccessToken
}

var _ store.TokenStore = (*MockTokenStore)(nil)

// NewMockTokenStore creates an empty MockTokenStore.
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{Tokens: make(map[uuid.UUID]store.AccessToken)}
}

// Create implements store.TokenStore.
func (m *MockTokenStore) Create(ctx context.Context, token *store.AccessToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tokens[token.ID] = *token
	return nil
}

// GetByID implements store.TokenStore.
func (m *MockTokenStore) GetByID(ctx context.Context, id uuid.UUID) (*store.AccessToken, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.Tokens[id]
	if !ok {
		return nil, store.ErrTokenNotFound
	}
	return &token, nil
}

// DeleteByUser implements store.TokenStore.
func (m *MockTokenStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.deleteIf(func(t store.AccessToken) bool { return t.UserID == userID }), nil
}

// DeleteExpired implements store.TokenStore.
func (m *MockTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.deleteIf(func(t store.AccessToken) bool { return t.ExpiresAt.Before(now) }), nil
}

func (m *MockTokenStore) deleteIf(match func(store.AccessToken) bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.Tokens {
		if match(t) {
			delete(m.Tokens, id)
			n++
		}
	}
	return n
}

// Count returns the number of stored tokens.
func (m *MockTokenStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tokens)
}
