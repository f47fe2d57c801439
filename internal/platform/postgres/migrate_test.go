package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/platform/postgres/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_tasks.sql",
		"00003_create_access_tokens.sql",
	}, files)

	for _, name := range files {
		data, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", name)
		assert.Contains(t, string(data), "-- +goose Down", name)
	}
}

// Not parallel: these tests swap the package-level goose seam.
func TestMigrate(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	orig := gooseRunContext
	defer func() { gooseRunContext = orig }()

	var gotCommand, gotDir string
	gooseRunContext = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
		gotCommand, gotDir = command, dir
		return nil
	}

	log, _ := logger.NewTestLogger(t)
	require.NoError(t, Migrate(context.Background(), db, "up", log))
	assert.Equal(t, "up", gotCommand)
	assert.Equal(t, ".", gotDir)

	gooseRunContext = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
		return errors.New("dirty database")
	}
	err = Migrate(context.Background(), db, "down", log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration down failed")

	err = Migrate(context.Background(), db, "create", log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported migration command")
}

func TestSlogGooseLogger(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger(t)
	l := &slogGooseLogger{logger: log}

	l.Printf("OK   %s", "00001_create_users.sql")
	l.Fatalf("failed: %v", "boom")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "OK   00001_create_users.sql", entries[0]["msg"])
	assert.Equal(t, "ERROR", entries[1]["level"])
}
