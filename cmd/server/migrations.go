package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/todo-api/internal/platform/postgres"
)

// MigrateCmd applies or inspects the embedded schema migrations.
type MigrateCmd struct {
	Command string `arg:"" optional:"" enum:"up,down,status,version,reset,redo" default:"up" help:"Migration command: ${enum}."`
}

// Run executes the migration command.
func (c *MigrateCmd) Run(g *Globals) error {
	cfg, log, closer, err := bootstrap(g)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	log.Info("running migrations", "command", c.Command)
	return withDatabase(context.Background(), cfg, log, func(ctx context.Context, db *sql.DB) error {
		return runMigrations(ctx, db, c.Command, log)
	})
}

func runMigrations(ctx context.Context, db *sql.DB, command string, log *slog.Logger) error {
	if err := postgres.Migrate(ctx, db, command, log); err != nil {
		return err
	}
	log.Info("migrations finished", "command", command)
	return nil
}
