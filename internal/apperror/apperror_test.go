package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("user", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("username", "username must be at least 3 characters long"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "ValidationFailedAll wraps ErrValidation",
			err:       ValidationFailedAll([]FieldViolation{{Field: "email", Message: "invalid email address"}}),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("email or username already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("not authenticated"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("profile", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Conflict does NOT match ErrUnauthorized",
			err:       Conflict("already enrolled in this course"),
			target:    ErrUnauthorized,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

// Wrapping an AppError with fmt.Errorf("%w") must preserve the chain —
// this is exactly what the service layer does before errors reach the
// HTTP boundary.
func TestErrorsAs_ThroughWrapping(t *testing.T) {
	inner := ValidationFailed("password", "password must be at least 5 characters long")
	wrapped := fmt.Errorf("registering user: %w", inner)

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should find *AppError through a wrapped error")
	}
	if appErr.Field != "password" {
		t.Errorf("Field = %q, want %q", appErr.Field, "password")
	}
	if !errors.Is(wrapped, ErrValidation) {
		t.Error("wrapped error should still match ErrValidation")
	}
}

func TestValidationFailedAll_CollectsEveryViolation(t *testing.T) {
	violations := []FieldViolation{
		{Field: "email", Message: "email must be at least 13 characters long"},
		{Field: "username", Message: "username must be at least 3 characters long"},
		{Field: "password", Message: "password must be at least 5 characters long"},
	}

	err := ValidationFailedAll(violations)

	if len(err.Violations) != 3 {
		t.Fatalf("len(Violations) = %d, want 3", len(err.Violations))
	}
	if err.Violations[1].Field != "username" {
		t.Errorf("Violations[1].Field = %q, want %q", err.Violations[1].Field, "username")
	}
	if err.Message != "invalid data" {
		t.Errorf("Message = %q, want %q", err.Message, "invalid data")
	}
}
