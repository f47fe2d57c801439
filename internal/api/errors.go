package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/todo-api/internal/api/middleware"
	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/redact"
	"github.com/phrazzld/todo-api/internal/service"
	"github.com/phrazzld/todo-api/internal/service/auth"
	"github.com/phrazzld/todo-api/internal/store"
)

// Client-facing messages for non-validation failures.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgTaskNotFound       = "Task not found or unauthorized access"
	MsgMalformedJSON      = "Malformed JSON request body."
	MsgServerError        = "Something went wrong"
)

// MapErrorToStatusCode maps an error returned by a service to its HTTP status.
func MapErrorToStatusCode(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrMalformedJSON):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		auth.IsAuthenticationError(err),
		errors.Is(err, store.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message shown to clients for err. It never
// contains internal error text.
func GetSafeErrorMessage(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.First()
	case errors.Is(err, shared.ErrMalformedJSON):
		return MsgMalformedJSON
	case errors.Is(err, service.ErrInvalidCredentials):
		return MsgInvalidCredentials
	case auth.IsAuthenticationError(err), errors.Is(err, store.ErrUserNotFound):
		return middleware.UnauthenticatedMessage
	case errors.Is(err, service.ErrTaskNotFound):
		return MsgTaskNotFound
	default:
		return MsgServerError
	}
}

// HandleAPIError writes the error envelope for err. Validation failures carry
// their field map in errors. Unexpected failures carry the redacted error text
// only when exposeDetails is set.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, exposeDetails bool) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	var details any
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		details = shared.FieldErrors(verr.Errors())
	case status == http.StatusInternalServerError && exposeDetails:
		details = redact.Error(err)
	}

	var opts []shared.ResponseOption
	if errors.Is(err, service.ErrInvalidCredentials) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, details, err, opts...)
}
