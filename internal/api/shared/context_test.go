package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserIDContext(t *testing.T) {
	t.Parallel()

	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = UserIDFromContext(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok, "nil UUID is not an authenticated user")

	id := uuid.New()
	got, ok := UserIDFromContext(WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestTraceIDContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetTraceID(context.Background()))
	assert.Equal(t, "abc", GetTraceID(WithTraceID(context.Background(), "abc")))
}

func TestNewTraceID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := NewTraceID()
		assert.Len(t, id, 2*TraceIDLength)
		_, err := hex.DecodeString(id)
		assert.NoError(t, err)
		assert.False(t, seen[id], "trace IDs must be unique")
		seen[id] = true
	}
}

func TestFallbackTraceID(t *testing.T) {
	t.Parallel()

	id := fallbackTraceID()
	assert.Len(t, id, 2*TraceIDLength)
	_, err := hex.DecodeString(id)
	assert.NoError(t, err)
}
