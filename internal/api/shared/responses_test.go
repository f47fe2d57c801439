package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondSuccess(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/user", nil)

	RespondSuccess(w, r, http.StatusCreated, "Task created successfully", map[string]string{"name": "x"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"data":{"name":"x"},"status":"success","message":"Task created successfully"}`,
		w.Body.String())
}

func TestRespondSuccess_NullData(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	RespondSuccess(w, httptest.NewRequest(http.MethodDelete, "/", nil), http.StatusOK, "Task deleted successfully", nil)

	assert.JSONEq(t, `{"data":null,"status":"success","message":"Task deleted successfully"}`, w.Body.String())
}

func TestRespondSuccessWithMeta(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	meta := domain.NewPagination(1, 0)
	RespondSuccessWithMeta(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK,
		"Tasks retrieved successfully", []string{}, meta)

	assert.JSONEq(t, `{
		"data": [],
		"status": "success",
		"message": "Tasks retrieved successfully",
		"meta": {"current_page":1,"per_page":10,"total":0,"total_pages":0,"has_more_pages":false}
	}`, w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil)
	r = r.WithContext(WithTraceID(r.Context(), "trace-1"))
	w := httptest.NewRecorder()

	RespondWithError(w, r, http.StatusNotFound, "Task not found or unauthorized access")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{
		"data": null,
		"status": "error",
		"message": "Task not found or unauthorized access",
		"trace_id": "trace-1"
	}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		opts      []ResponseOption
		wantLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "client error", status: http.StatusUnprocessableEntity, wantLevel: "DEBUG"},
		{name: "elevated client error", status: http.StatusUnauthorized, opts: []ResponseOption{WithElevatedLogLevel()}, wantLevel: "WARN"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: "WARN"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, buf := logger.NewTestLogger(t)
			ctx := logger.WithLogger(WithTraceID(context.Background(), "trace-2"), log)
			r := httptest.NewRequest(http.MethodPost, "/api/login", nil).WithContext(ctx)
			w := httptest.NewRecorder()

			cause := errors.New("dial tcp: password=hunter22 rejected")
			RespondWithErrorAndLog(w, r, tt.status, "Something went wrong", nil, cause, tt.opts...)

			assert.Equal(t, tt.status, w.Code)

			entries, err := buf.Entries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0]["level"])
			assert.Equal(t, "trace-2", entries[0]["trace_id"])
			assert.NotContains(t, entries[0]["error"], "hunter22")
			assert.Equal(t, "*errors.errorString", entries[0]["error_type"])
		})
	}
}

func TestFieldErrors_MarshalJSON_KeepsOrder(t *testing.T) {
	t.Parallel()

	verr := &domain.ValidationError{}
	verr.Add("name", "The name field is required.")
	verr.Add("email", "The email field must be a valid email address.")
	verr.Add("email", "The email has already been taken.")
	verr.Add("password", "The password field must be at least 6 characters.")

	out, err := json.Marshal(FieldErrors(verr.Errors()))
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":["The name field is required."],`+
			`"email":["The email field must be a valid email address.","The email has already been taken."],`+
			`"password":["The password field must be at least 6 characters."]}`,
		string(out))

	out, err = json.Marshal(FieldErrors(nil))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}
