package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/store"
)

// PostgresTokenStore implements store.TokenStore on the access_tokens table.
type PostgresTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTokenStore creates a new PostgreSQL implementation of the TokenStore interface.
func NewPostgresTokenStore(db store.DBTX, logger *slog.Logger) *PostgresTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "token_store")),
	}
}

var _ store.TokenStore = (*PostgresTokenStore)(nil)

// Create implements store.TokenStore.Create.
func (s *PostgresTokenStore) Create(ctx context.Context, token *store.AccessToken) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO access_tokens (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		token.ID, token.UserID, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		log.Error("failed to record access token",
			slog.String("error", err.Error()),
			slog.String("user_id", token.UserID.String()))
		return MapError(err, store.ErrTokenNotFound)
	}
	return nil
}

// GetByID implements store.TokenStore.GetByID.
func (s *PostgresTokenStore) GetByID(ctx context.Context, id uuid.UUID) (*store.AccessToken, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var token store.AccessToken
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, created_at FROM access_tokens WHERE id = $1`, id).
		Scan(&token.ID, &token.UserID, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTokenNotFound
		}
		log.Error("failed to look up access token", slog.String("error", err.Error()))
		return nil, MapError(err, store.ErrTokenNotFound)
	}
	return &token, nil
}

// DeleteByUser implements store.TokenStore.DeleteByUser.
func (s *PostgresTokenStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.deleteWhere(ctx, `DELETE FROM access_tokens WHERE user_id = $1`, userID)
}

// DeleteExpired implements store.TokenStore.DeleteExpired.
func (s *PostgresTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.deleteWhere(ctx, `DELETE FROM access_tokens WHERE expires_at < $1`, now)
}

func (s *PostgresTokenStore) deleteWhere(ctx context.Context, query string, arg any) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, arg)
	if err != nil {
		log.Error("failed to delete access tokens", slog.String("error", err.Error()))
		return 0, MapError(err, store.ErrTokenNotFound)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("deleted access tokens", slog.Int64("count", n))
	return n, nil
}
