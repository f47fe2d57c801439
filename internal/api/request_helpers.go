package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/service"
	"github.com/phrazzld/todo-api/internal/service/auth"
)

// taskIDParam is the chi URL parameter naming a task.
const taskIDParam = "id"

// userIDFromRequest returns the authenticated user's ID, or auth.ErrMissingToken
// when the route was reached without the auth middleware.
func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, auth.ErrMissingToken
	}
	return userID, nil
}

// taskIDFromRequest parses the task ID path parameter. A malformed ID cannot
// name an existing task, so it is reported as service.ErrTaskNotFound.
func taskIDFromRequest(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, taskIDParam))
	if err != nil {
		return uuid.Nil, service.ErrTaskNotFound
	}
	return id, nil
}

// listParamsFromRequest reads the task listing query parameters.
func listParamsFromRequest(r *http.Request) ListTasksParams {
	q := r.URL.Query()
	return ListTasksParams{
		Search:      q.Get("search"),
		Status:      q.Get("status"),
		DueDateFrom: q.Get("due_date_from"),
		DueDateTo:   q.Get("due_date_to"),
		Sort:        q.Get("sort"),
		Page:        q.Get("page"),
	}
}

// userAndTaskID extracts both IDs, writing the error response on failure.
func (h *TaskHandler) userAndTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return uuid.Nil, uuid.Nil, false
	}
	taskID, err := taskIDFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, taskID, true
}
