package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
type ServeCmd struct {
	Migrate bool `help:"Apply pending migrations before serving."`
}

// Run starts the server.
func (c *ServeCmd) Run(g *Globals) error {
	cfg, log, closer, err := bootstrap(g)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return withDatabase(ctx, cfg, log, func(ctx context.Context, db *sql.DB) error {
		if c.Migrate {
			if err := runMigrations(ctx, db, "up", log); err != nil {
				return err
			}
		}

		app, err := newApplication(ctx, cfg, log, db)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer app.cleanup()

		return app.Run(ctx)
	})
}

// Run listens on the configured port and serves until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", app.config.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return app.serve(ctx, ln, app.setupRouter())
}

// serve runs an HTTP server on ln with graceful shutdown. In-flight requests
// get the configured shutdown timeout to finish once ctx is canceled.
func (app *application) serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			app.logger.Error("server failed", "error", err)
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}
