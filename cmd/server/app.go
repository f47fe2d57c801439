package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/todo-api/internal/api"
	apiMiddleware "github.com/phrazzld/todo-api/internal/api/middleware"
	"github.com/phrazzld/todo-api/internal/cache"
	"github.com/phrazzld/todo-api/internal/config"
	"github.com/phrazzld/todo-api/internal/events"
	"github.com/phrazzld/todo-api/internal/metrics"
	"github.com/phrazzld/todo-api/internal/platform/postgres"
	"github.com/phrazzld/todo-api/internal/service"
	"github.com/phrazzld/todo-api/internal/service/auth"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// redis is set only when the list cache is shared through Redis.
	redis *redis.Client

	registry *prom.Registry
	recorder metrics.Recorder

	userService service.UserService
	taskService service.TaskService
	tokens      auth.TokenIssuer
}

// newApplication creates a new application instance with all dependencies
// initialized. Configuration, logger and database connection must be
// established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: prom.NewRegistry(),
	}
	app.recorder = metrics.NewPrometheusRecorder(app.registry)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	userStore := postgres.NewPostgresUserStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	tokenStore := postgres.NewPostgresTokenStore(db, logger)

	app.tokens = auth.NewStoreTokenIssuer(jwtService, tokenStore, logger)

	listCache, err := app.newListCache(ctx)
	if err != nil {
		return nil, err
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewCacheInvalidationHandler(listCache))
	emitter.RegisterHandler(events.NewMetricsHandler(app.recorder))

	app.userService = service.NewUserService(
		userStore,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		app.tokens,
		db,
		logger,
	)
	app.taskService = service.NewTaskService(taskStore, db, listCache, emitter, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// newListCache picks the backing store for task listings: Redis when a URL
// is configured, process memory otherwise. A zero TTL yields a pass-through
// cache.
func (app *application) newListCache(ctx context.Context) (*cache.ListCache, error) {
	cfg := app.config.Cache
	if !cfg.Enabled() {
		app.logger.Info("task list cache disabled")
		return cache.NewListCache(nil, 0, app.recorder, app.logger), nil
	}

	var backend cache.Store
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize task list cache: %w", err)
		}
		app.redis = rdb
		backend = cache.NewRedisStore(rdb)
		app.logger.Info("task list cache using redis", "ttl", cfg.TTL())
	} else {
		backend = cache.NewMemoryStore()
		app.logger.Info("task list cache using process memory", "ttl", cfg.TTL())
	}

	return cache.NewListCache(backend, cfg.TTL(), app.recorder, app.logger), nil
}

// handlers builds the HTTP handlers over the application's services.
func (app *application) handlers() (*api.AuthHandler, *api.TaskHandler, *apiMiddleware.AuthMiddleware) {
	expose := app.config.Server.ExposeErrorDetails
	return api.NewAuthHandler(app.userService, expose, app.logger),
		api.NewTaskHandler(app.taskService, expose, app.logger),
		apiMiddleware.NewAuthMiddleware(app.tokens)
}

// cleanup releases resources owned by the application. The database handle
// belongs to the caller.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
