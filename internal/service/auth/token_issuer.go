package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/store"
)

// IssuedToken is a bearer token handed to a client at login.
type IssuedToken struct {
	Token     string
	ID        uuid.UUID
	ExpiresAt time.Time
}

// TokenIssuer issues, authenticates and revokes bearer tokens.
type TokenIssuer interface {
	// Issue signs a token for userID and records it.
	Issue(ctx context.Context, userID uuid.UUID) (*IssuedToken, error)

	// Authenticate returns the claims of a valid, unrevoked token.
	// Returns ErrInvalidToken, ErrExpiredToken or ErrRevokedToken otherwise.
	Authenticate(ctx context.Context, token string) (*Claims, error)

	// RevokeAll invalidates every token of userID.
	RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error)

	// PruneExpired deletes the records of tokens that have expired.
	PruneExpired(ctx context.Context) (int64, error)
}

// StoreTokenIssuer is a TokenIssuer backed by signed JWTs and a TokenStore.
// A JWT authenticates only while its record exists.
type StoreTokenIssuer struct {
	jwt    JWTService
	tokens store.TokenStore
	now    func() time.Time
	logger *slog.Logger
}

var _ TokenIssuer = (*StoreTokenIssuer)(nil)

// NewStoreTokenIssuer creates a StoreTokenIssuer.
func NewStoreTokenIssuer(jwtService JWTService, tokens store.TokenStore, logger *slog.Logger) *StoreTokenIssuer {
	if jwtService == nil || tokens == nil {
		panic("jwt service and token store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreTokenIssuer{
		jwt:    jwtService,
		tokens: tokens,
		now:    time.Now,
		logger: logger.With(slog.String("component", "token_issuer")),
	}
}

// Issue implements TokenIssuer.
func (i *StoreTokenIssuer) Issue(ctx context.Context, userID uuid.UUID) (*IssuedToken, error) {
	signed, claims, err := i.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("generated token has invalid id: %w", err)
	}

	record := &store.AccessToken{
		ID:        tokenID,
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.UTC(),
		CreatedAt: i.now().UTC(),
	}
	if err := i.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record access token: %w", err)
	}

	logger.FromContextOrDefault(ctx, i.logger).Debug("access token issued",
		slog.String("user_id", userID.String()),
		slog.String("token_id", tokenID.String()))

	return &IssuedToken{Token: signed, ID: tokenID, ExpiresAt: record.ExpiresAt}, nil
}

// Authenticate implements TokenIssuer.
func (i *StoreTokenIssuer) Authenticate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := i.jwt.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	record, err := i.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrRevokedToken
		}
		return nil, fmt.Errorf("failed to look up access token: %w", err)
	}

	if record.UserID != claims.UserID {
		logger.FromContextOrDefault(ctx, i.logger).Warn("token record belongs to another user",
			slog.String("token_id", tokenID.String()))
		return nil, ErrInvalidToken
	}
	if !i.now().Before(record.ExpiresAt) {
		return nil, ErrExpiredToken
	}

	return claims, nil
}

// RevokeAll implements TokenIssuer.
func (i *StoreTokenIssuer) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := i.tokens.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke tokens: %w", err)
	}
	logger.FromContextOrDefault(ctx, i.logger).Info("access tokens revoked",
		slog.String("user_id", userID.String()),
		slog.Int64("count", n))
	return n, nil
}

// PruneExpired implements TokenIssuer.
func (i *StoreTokenIssuer) PruneExpired(ctx context.Context) (int64, error) {
	n, err := i.tokens.DeleteExpired(ctx, i.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune expired tokens: %w", err)
	}
	return n, nil
}
