// Package apperror defines the application's domain error taxonomy.
//
// WHY A SHARED ERROR PACKAGE?
// Services return these errors, handlers map them to HTTP status codes,
// and tests assert on them with errors.Is(). Keeping them in one small
// package means no layer needs to know about another layer's internals
// to agree on what "not found" or "conflict" means.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Each AppError wraps exactly one of these so callers
// can discriminate with errors.Is() without inspecting strings.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldViolation is one failed validation rule on one input field.
// Registration can violate several rules at once (short username AND
// short password), and the API reports all of them in a single response.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the concrete error type carried through the service layer.
//
// Err holds the sentinel (for errors.Is), Message is the human-readable
// description safe to show to API clients, Field optionally names the
// offending input, and Violations carries the full rule list for
// multi-field validation failures.
type AppError struct {
	Err        error
	Message    string
	Field      string
	Violations []FieldViolation
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a referenced resource does not exist.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports a single violated input rule.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Message:    message,
		Field:      field,
		Violations: []FieldViolation{{Field: field, Message: message}},
	}
}

// ValidationFailedAll reports every violated rule from one request.
// The top-level message stays generic; the per-field detail lives in
// Violations so clients can highlight each bad input.
func ValidationFailedAll(violations []FieldViolation) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Message:    "invalid data",
		Violations: violations,
	}
}

// Conflict reports a uniqueness violation (duplicate username/email,
// duplicate enrollment). The message is returned to the client verbatim.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized reports a missing, invalid, or expired credential.
// HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
