package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/service"
)

// TaskHandler handles task requests. Every operation is scoped to the
// authenticated user.
type TaskHandler struct {
	tasks        service.TaskService
	exposeErrors bool
	logger       *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, exposeErrors bool, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		panic("task service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:        tasks,
		exposeErrors: exposeErrors,
		logger:       logger.With(slog.String("component", "task_handler")),
	}
}

// Index handles GET /tasks.
func (h *TaskHandler) Index(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	q, err := listParamsFromRequest(r).Query()
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	page, err := h.tasks.ListTasks(r.Context(), userID, q)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("listed tasks",
		slog.Int("page", q.Page),
		slog.Int("count", len(page.Tasks)))
	shared.RespondSuccessWithMeta(w, r, http.StatusOK, "Tasks retrieved successfully", page.Tasks, page.Pagination)
}

// Store handles POST /tasks.
func (h *TaskHandler) Store(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	var req TaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}
	in, err := req.CreateInput()
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), userID, in)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	shared.RespondSuccess(w, r, http.StatusCreated, "Task created successfully", task)
}

// Show handles GET /tasks/{id}.
func (h *TaskHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.userAndTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	shared.RespondSuccess(w, r, http.StatusOK, "Task retrieved successfully", task)
}

// Update handles PUT /tasks/{id}. Only the members present in the body are
// changed.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.userAndTaskID(w, r)
	if !ok {
		return
	}

	var req TaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), userID, taskID, patch)
	if err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	shared.RespondSuccess(w, r, http.StatusOK, "Task updated successfully", task)
}

// Destroy handles DELETE /tasks/{id}.
func (h *TaskHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.userAndTaskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, h.exposeErrors)
		return
	}

	shared.RespondSuccess(w, r, http.StatusOK, "Task deleted successfully", nil)
}
