//go:build integration

// Package testdb runs tests against a real PostgreSQL database.
//
// Each test works inside its own transaction, which is rolled back when the
// test finishes, so tests can run in parallel against a shared schema:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        tasks := postgres.NewPostgresTaskStore(tx, nil)
//	        ...
//	    })
//	}
//
// Tests are skipped when no database URL is configured.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/todo-api/internal/platform/postgres"
	"github.com/phrazzld/todo-api/internal/redact"
)

// Environment variables consulted for the test database, in order.
const (
	EnvTestDatabaseURL = "TODO_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// DatabaseURL returns the first configured test database URL, or "".
func DatabaseURL() string {
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Open connects to the test database, applies migrations once per process
// and closes the connection when t finishes. It skips t when no database
// URL is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skipf("%s not set - skipping database test", EnvTestDatabaseURL)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		t.Fatalf("failed to open test database %s: %v", redact.String(url), err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to reach test database %s: %v", redact.String(url), err)
	}

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(context.Background(), db, "up", slog.Default())
	})
	if migrateErr != nil {
		t.Fatalf("failed to migrate test database: %v", migrateErr)
	}

	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
