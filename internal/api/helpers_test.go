package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/api"
	"github.com/phrazzld/todo-api/internal/api/middleware"
	"github.com/phrazzld/todo-api/internal/cache"
	"github.com/phrazzld/todo-api/internal/events"
	"github.com/phrazzld/todo-api/internal/mocks"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/service"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Meta    json.RawMessage `json:"meta"`
	TraceID string          `json:"trace_id"`
}

type testServer struct {
	handler http.Handler
	users   *mocks.MockUserStore
	tasks   *mocks.MockTaskStore
	tokens  *mocks.MockTokenIssuer
	db      sqlmock.Sqlmock
}

func newTestServer(t *testing.T, exposeErrors bool) *testServer {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log, _ := logger.NewTestLogger(t)
	s := &testServer{
		users:  mocks.NewMockUserStore(),
		tasks:  mocks.NewMockTaskStore(),
		tokens: &mocks.MockTokenIssuer{},
		db:     dbMock,
	}

	listCache := cache.NewListCache(cache.NewMemoryStore(), 5*time.Minute, nil, log)
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(events.NewCacheInvalidationHandler(listCache))

	users := service.NewUserService(s.users, &mocks.MockPasswordHasher{}, s.tokens, db, log)
	tasks := service.NewTaskService(s.tasks, db, listCache, emitter, log)

	r := chi.NewRouter()
	r.Use(middleware.Trace(log))
	r.Use(middleware.Recoverer(exposeErrors))
	r.Route("/api", func(r chi.Router) {
		api.RegisterRoutes(r,
			api.NewAuthHandler(users, exposeErrors, log),
			api.NewTaskHandler(tasks, exposeErrors, log),
			middleware.NewAuthMiddleware(s.tokens))
	})
	s.handler = r
	return s
}

// expectTx expects one committed transaction.
func (s *testServer) expectTx(commit bool) {
	s.db.ExpectBegin()
	if commit {
		s.db.ExpectCommit()
	} else {
		s.db.ExpectRollback()
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// newUser registers a user and returns its ID and a bearer token.
func (s *testServer) newUser(t *testing.T, name, email string) (uuid.UUID, string) {
	t.Helper()

	s.expectTx(true)
	w, env := s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		User struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.User.ID, mocks.TokenFor(data.User.ID)
}

type taskJSON struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

func decodeTask(t *testing.T, env envelope) taskJSON {
	t.Helper()
	var task taskJSON
	require.NoError(t, json.Unmarshal(env.Data, &task))
	return task
}

func decodeFields(t *testing.T, env envelope) map[string][]string {
	t.Helper()
	var fields map[string][]string
	require.NoError(t, json.Unmarshal(env.Errors, &fields))
	return fields
}
