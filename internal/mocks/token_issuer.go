package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/service/auth"
)

// MockTokenIssuer implements auth.TokenIssuer. Without overrides it issues
// tokens of the form "token-<user id>" and authenticates only those. RevokeAll
// rejects a user's token until the next Issue for that user.
type MockTokenIssuer struct {
	IssueFn        func(ctx context.Context, userID uuid.UUID) (*auth.IssuedToken, error)
	AuthenticateFn func(ctx context.Context, token string) (*auth.Claims, error)
	RevokeAllFn    func(ctx context.Context, userID uuid.UUID) (int64, error)
	PruneFn        func(ctx context.Context) (int64, error)

	// Revoked records the users passed to RevokeAll.
	Revoked []uuid.UUID
}

var _ auth.TokenIssuer = (*MockTokenIssuer)(nil)

// TokenFor returns the default token string MockTokenIssuer issues for userID.
func TokenFor(userID uuid.UUID) string {
	return "token-" + userID.String()
}

// Issue implements auth.TokenIssuer.
func (m *MockTokenIssuer) Issue(ctx context.Context, userID uuid.UUID) (*auth.IssuedToken, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, userID)
	}
	kept := m.Revoked[:0]
	for _, id := range m.Revoked {
		if id != userID {
			kept = append(kept, id)
		}
	}
	m.Revoked = kept
	return &auth.IssuedToken{
		Token:     TokenFor(userID),
		ID:        uuid.New(),
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}, nil
}

// Authenticate implements auth.TokenIssuer.
func (m *MockTokenIssuer) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, token)
	}
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, auth.ErrInvalidToken
	}
	userID, err := uuid.Parse(token[len(prefix):])
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	for _, revoked := range m.Revoked {
		if revoked == userID {
			return nil, auth.ErrRevokedToken
		}
	}
	return &auth.Claims{UserID: userID, Subject: userID.String(), ID: uuid.NewString()}, nil
}

// RevokeAll implements auth.TokenIssuer.
func (m *MockTokenIssuer) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.RevokeAllFn != nil {
		return m.RevokeAllFn(ctx, userID)
	}
	m.Revoked = append(m.Revoked, userID)
	return 1, nil
}

// PruneExpired implements auth.TokenIssuer.
func (m *MockTokenIssuer) PruneExpired(ctx context.Context) (int64, error) {
	if m.PruneFn != nil {
		return m.PruneFn(ctx)
	}
	return 0, nil
}
