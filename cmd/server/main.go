// Package main implements the entry point for the to-do API server. The
// binary serves the HTTP API by default and also runs database migrations and
// access token maintenance.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/phrazzld/todo-api/internal/config"
	"github.com/phrazzld/todo-api/internal/platform/logger"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `help:"Path to a YAML config file. Defaults to ./config.yaml when present." type:"path" env:"TODO_CONFIG_FILE"`
}

// CLI is the command line of the server binary.
type CLI struct {
	Globals

	Serve       ServeCmd       `cmd:"" default:"1" help:"Run the HTTP API server."`
	Migrate     MigrateCmd     `cmd:"" help:"Run database migrations."`
	PruneTokens PruneTokensCmd `cmd:"" name:"prune-tokens" help:"Delete expired access token records."`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("todo-api"),
		kong.Description("Multi-tenant to-do list REST API."),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build command line parser: %v\n", err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := kctx.Run(&cli.Globals); err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and sets up structured logging. The returned
// closer flushes the optional log file.
func bootstrap(g *Globals) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.LoadFile(g.Config)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, closer, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"cache_ttl_seconds", cfg.Cache.TTLSeconds,
		"redis_cache", cfg.Cache.RedisURL != "")
	return cfg, log, closer, nil
}

// withDatabase runs fn against an open database and closes it afterwards.
func withDatabase(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	fn func(ctx context.Context, db *sql.DB) error,
) error {
	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database connection", "error", err)
		}
	}()
	return fn(ctx, db)
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
