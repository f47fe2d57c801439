package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFile, when set, receives a copy of every log line with size-based rotation.
	LogFile string `mapstructure:"log_file"`
	// ExposeErrorDetails adds the redacted internal error text to 500 responses.
	ExposeErrorDetails     bool `mapstructure:"expose_error_details"`
	ShutdownTimeoutSeconds int  `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// ShutdownTimeout is the grace period for in-flight requests on shutdown.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// TokenLifetime is how long an issued access token stays valid.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// CacheConfig controls the task list cache.
type CacheConfig struct {
	// TTLSeconds is the lifetime of a cached listing. Zero disables caching.
	TTLSeconds int `mapstructure:"ttl_seconds" validate:"gte=0"`
	// RedisURL selects a shared Redis backend; empty keeps entries in process memory.
	RedisURL string `mapstructure:"redis_url" validate:"omitempty,url"`
}

// TTL is the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Enabled reports whether list results should be cached at all.
func (c CacheConfig) Enabled() bool {
	return c.TTLSeconds > 0
}
