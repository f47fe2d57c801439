//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/postgres"
	"github.com/phrazzld/todo-api/internal/store"
	"github.com/phrazzld/todo-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertUser(t *testing.T, tx *sql.Tx, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser("Test User", email, "secret1")
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$hash"
	require.NoError(t, postgres.NewPostgresUserStore(tx, nil).Create(context.Background(), user))
	return user
}

func insertTask(t *testing.T, tx *sql.Tx, owner uuid.UUID, name string, status domain.TaskStatus, created time.Time, due *time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(owner, name, nil, status, due)
	require.NoError(t, err)
	task.CreatedAt, task.UpdatedAt = created, created
	require.NoError(t, postgres.NewPostgresTaskStore(tx, nil).Create(context.Background(), task))
	return task
}

func TestIntegration_UserStore(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, nil)
		user := insertUser(t, tx, "integration-user@example.com")

		byEmail, err := users.GetByEmail(ctx, "integration-user@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		dup, err := domain.NewUser("Other", "integration-user@example.com", "secret1")
		require.NoError(t, err)
		dup.HashedPassword = "$2a$10$hash"
		assert.ErrorIs(t, users.Create(ctx, dup), store.ErrEmailExists)
	})
}

func TestIntegration_TaskStoreList(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		tasks := postgres.NewPostgresTaskStore(tx, nil)

		owner := insertUser(t, tx, "integration-owner@example.com")
		other := insertUser(t, tx, "integration-other@example.com")

		base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		due := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
		for i := 0; i < 12; i++ {
			status := domain.TaskStatusToDo
			if i%3 == 0 {
				status = domain.TaskStatusDone
			}
			var d *time.Time
			if i == 5 {
				d = &due
			}
			insertTask(t, tx, owner.ID, fmt.Sprintf("task %02d", i), status, base.Add(time.Duration(i)*time.Minute), d)
		}
		insertTask(t, tx, owner.ID, "100%_literal", domain.TaskStatusToDo, base.Add(time.Hour), nil)
		insertTask(t, tx, other.ID, "task 99", domain.TaskStatusToDo, base, nil)

		page, total, err := tasks.List(ctx, owner.ID, domain.TaskQuery{})
		require.NoError(t, err)
		assert.Equal(t, 13, total)
		require.Len(t, page, domain.TaskPageSize)
		assert.Equal(t, "100%_literal", page[0].Name, "newest first by default")

		page, total, err = tasks.List(ctx, owner.ID, domain.TaskQuery{Sort: domain.SortAsc, Page: 2})
		require.NoError(t, err)
		assert.Equal(t, 13, total)
		require.Len(t, page, 3)
		assert.Equal(t, "task 10", page[0].Name)

		_, total, err = tasks.List(ctx, owner.ID, domain.TaskQuery{Status: domain.TaskStatusDone})
		require.NoError(t, err)
		assert.Equal(t, 4, total)

		page, total, err = tasks.List(ctx, owner.ID, domain.TaskQuery{Search: "%_"})
		require.NoError(t, err)
		assert.Equal(t, 1, total, "wildcards in the search term match literally")
		assert.Equal(t, "100%_literal", page[0].Name)

		day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		page, total, err = tasks.List(ctx, owner.ID, domain.TaskQuery{DueFrom: &day, DueTo: &day})
		require.NoError(t, err)
		assert.Equal(t, 1, total, "the end bound covers the whole day")
		assert.Equal(t, "task 05", page[0].Name)

		page, total, err = tasks.List(ctx, owner.ID, domain.TaskQuery{Page: 9})
		require.NoError(t, err)
		assert.Equal(t, 13, total)
		assert.Empty(t, page)
	})
}

func TestIntegration_TaskStoreOwnerScopedWrites(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		tasks := postgres.NewPostgresTaskStore(tx, nil)

		owner := insertUser(t, tx, "integration-writer@example.com")
		intruder := insertUser(t, tx, "integration-intruder@example.com")
		task := insertTask(t, tx, owner.ID, "mine", domain.TaskStatusToDo, time.Now().UTC(), nil)

		assert.ErrorIs(t, tasks.Delete(ctx, task.ID, intruder.ID), store.ErrTaskNotFound)

		task.Status = domain.TaskStatusDone
		require.NoError(t, tasks.Update(ctx, task))

		got, err := tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusDone, got.Status)

		require.NoError(t, tasks.Delete(ctx, task.ID, owner.ID))
		_, err = tasks.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestIntegration_TokenStore(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		tokens := postgres.NewPostgresTokenStore(tx, nil)
		user := insertUser(t, tx, "integration-tokens@example.com")

		now := time.Now().UTC()
		live := &store.AccessToken{ID: uuid.New(), UserID: user.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
		expired := &store.AccessToken{ID: uuid.New(), UserID: user.ID, ExpiresAt: now.Add(-time.Hour), CreatedAt: now}
		require.NoError(t, tokens.Create(ctx, live))
		require.NoError(t, tokens.Create(ctx, expired))

		n, err := tokens.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))

		_, err = tokens.GetByID(ctx, expired.ID)
		assert.ErrorIs(t, err, store.ErrTokenNotFound)

		n, err = tokens.DeleteByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
