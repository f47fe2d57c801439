package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccessToken is the server-side record of an issued bearer token.
// A token authenticates only while its record exists and has not expired.
type AccessToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenStore persists issued access tokens so they can be revoked.
type TokenStore interface {
	// Create records a newly issued token.
	Create(ctx context.Context, token *AccessToken) error

	// GetByID retrieves a token record by its ID (the JWT "jti").
	// Returns ErrTokenNotFound if it was never issued or has been revoked.
	GetByID(ctx context.Context, id uuid.UUID) (*AccessToken, error)

	// DeleteByUser revokes every token of userID and returns how many were removed.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpired removes tokens that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
