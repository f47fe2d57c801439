package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Validation failures are returned as *domain.ValidationError
// 3. Unexpected errors are wrapped in *ServiceError
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// The two cases are deliberately indistinguishable to callers.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTaskNotFound indicates the task does not exist or belongs to another
	// user. API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found or unauthorized access")
)

// ServiceError is a custom error type for unexpected service failures.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
