// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Concrete failures are reported as *ValidationError, which unwraps to it.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// FieldError is a single validation message attached to an input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects field-level validation failures in the order
// they were detected. The first entry is used as the summary message.
type ValidationError struct {
	errs []FieldError
}

// NewValidationError creates a ValidationError holding a single field failure.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add appends a failure for field.
func (v *ValidationError) Add(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

// Merge appends every failure of other.
func (v *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	v.errs = append(v.errs, other.errs...)
}

// HasErrors reports whether any failure was recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.errs) > 0
}

// First returns the message of the first recorded failure.
func (v *ValidationError) First() string {
	if !v.HasErrors() {
		return ""
	}
	return v.errs[0].Message
}

// Fields groups the recorded messages by field name.
func (v *ValidationError) Fields() map[string][]string {
	fields := make(map[string][]string, len(v.errs))
	for _, fe := range v.errs {
		fields[fe.Field] = append(fields[fe.Field], fe.Message)
	}
	return fields
}

// Errors returns a copy of the recorded failures in detection order.
func (v *ValidationError) Errors() []FieldError {
	out := make([]FieldError, len(v.errs))
	copy(out, v.errs)
	return out
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if !v.HasErrors() {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(v.errs))
	for _, fe := range v.errs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Unwrap allows errors.Is(err, ErrValidation).
func (v *ValidationError) Unwrap() error {
	return ErrValidation
}

// OrNil returns v as an error when it holds failures and nil otherwise.
// It avoids the typed-nil interface trap when returning from validators.
func (v *ValidationError) OrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}
