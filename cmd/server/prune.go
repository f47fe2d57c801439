package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phrazzld/todo-api/internal/platform/postgres"
	"github.com/phrazzld/todo-api/internal/service/auth"
)

// PruneTokensCmd removes access token records whose tokens have expired.
// Expired tokens are already rejected; this only reclaims storage.
type PruneTokensCmd struct{}

// Run executes the prune.
func (c *PruneTokensCmd) Run(g *Globals) error {
	cfg, log, closer, err := bootstrap(g)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	return withDatabase(context.Background(), cfg, log, func(ctx context.Context, db *sql.DB) error {
		issuer := auth.NewStoreTokenIssuer(jwtService, postgres.NewPostgresTokenStore(db, log), log)
		n, err := issuer.PruneExpired(ctx)
		if err != nil {
			return fmt.Errorf("failed to prune access tokens: %w", err)
		}
		log.Info("expired access tokens pruned", "count", n)
		return nil
	})
}
