package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
}

func TestTaskFilter_OwnerAlwaysFirst(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	where, args := taskFilter(owner, domain.TaskQuery{Status: domain.TaskStatusToDo}.Normalize())

	assert.Equal(t, "user_id = $1 AND status = $2", where)
	assert.Equal(t, []any{owner, "To Do"}, args)
}
