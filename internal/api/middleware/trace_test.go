package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/todo-api/internal/api/middleware"
	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger(t)
	var seenTraceID string
	handler := middleware.Trace(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	require.Len(t, seenTraceID, 2*shared.TraceIDLength)
	assert.Equal(t, seenTraceID, w.Header().Get(middleware.TraceIDHeader))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, seenTraceID, e["trace_id"])
	}
	assert.Equal(t, "inside handler", entries[1]["msg"])
}
