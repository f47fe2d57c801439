package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/service"
)

// TokenType is the scheme clients use to present an access token.
const TokenType = "Bearer"

// RegisterRequest is the payload of POST /register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse wraps a user object.
type UserResponse struct {
	User *domain.User `json:"user"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// TaskRequest is the payload of POST /tasks and PUT /tasks/{id}. Every
// member records whether it was present so updates touch only supplied fields.
type TaskRequest struct {
	Name        domain.Nullable[string] `json:"name"`
	Description domain.Nullable[string] `json:"description"`
	Status      domain.Nullable[string] `json:"status"`
	DueDate     domain.Nullable[string] `json:"due_date"`
}

// dueDate parses the due_date member. An empty string counts as null.
func (req TaskRequest) dueDate() (domain.Nullable[time.Time], error) {
	if !req.DueDate.Set || req.DueDate.Value == nil || strings.TrimSpace(*req.DueDate.Value) == "" {
		return domain.Nullable[time.Time]{Set: req.DueDate.Set}, nil
	}
	due, err := domain.ParseDate(*req.DueDate.Value)
	if err != nil {
		return domain.Nullable[time.Time]{}, domain.NewValidationError("due_date", "The due date field must be a valid date.")
	}
	return domain.NullableOf(due), nil
}

// CreateInput converts the payload into service input.
func (req TaskRequest) CreateInput() (service.CreateTaskInput, error) {
	due, err := req.dueDate()
	if err != nil {
		return service.CreateTaskInput{}, err
	}
	in := service.CreateTaskInput{
		Description: req.Description.Value,
		DueDate:     due.Value,
	}
	if req.Name.Value != nil {
		in.Name = *req.Name.Value
	}
	if req.Status.Value != nil {
		in.Status = domain.TaskStatus(*req.Status.Value)
	}
	return in, nil
}

// Patch converts the payload into a partial update. A name or status sent as
// null is kept as an empty value so validation reports it as required.
func (req TaskRequest) Patch() (domain.TaskPatch, error) {
	due, err := req.dueDate()
	if err != nil {
		return domain.TaskPatch{}, err
	}
	patch := domain.TaskPatch{
		Description: req.Description,
		DueDate:     due,
	}
	if req.Name.Set {
		name := ""
		if req.Name.Value != nil {
			name = *req.Name.Value
		}
		patch.Name = &name
	}
	if req.Status.Set {
		var status domain.TaskStatus
		if req.Status.Value != nil {
			status = domain.TaskStatus(*req.Status.Value)
		}
		patch.Status = &status
	}
	return patch, nil
}

// ListTasksParams are the query parameters of GET /tasks.
type ListTasksParams struct {
	Search      string `query:"search"`
	Status      string `query:"status"        validate:"omitempty,oneof='To Do' 'In Progress' 'Done'"`
	DueDateFrom string `query:"due_date_from" validate:"omitempty,calendardate"`
	DueDateTo   string `query:"due_date_to"   validate:"omitempty,calendardate"`
	Sort        string `query:"sort"          validate:"omitempty,oneof=asc desc"`
	Page        string `query:"page"`
}

// Query validates the parameters and converts them to a task query. A page
// that is missing, non-numeric or below 1 becomes 1.
func (p ListTasksParams) Query() (domain.TaskQuery, error) {
	if err := shared.ValidateRequest(&p); err != nil {
		return domain.TaskQuery{}, err
	}

	q := domain.TaskQuery{
		Status: domain.TaskStatus(p.Status),
		Sort:   domain.SortDirection(p.Sort),
	}
	// Whitespace-only search terms are treated as absent.
	if strings.TrimSpace(p.Search) != "" {
		q.Search = p.Search
	}
	if p.DueDateFrom != "" && p.DueDateTo != "" {
		from, _ := domain.ParseDate(p.DueDateFrom)
		to, _ := domain.ParseDate(p.DueDateTo)
		q.DueFrom, q.DueTo = &from, &to
	}
	if page, err := strconv.Atoi(strings.TrimSpace(p.Page)); err == nil {
		q.Page = page
	}
	return q.Normalize(), nil
}
