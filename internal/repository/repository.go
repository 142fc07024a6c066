package repository

import (
	"context"

	"github.com/arefin/learnhub/internal/model"
)

// UserRepository stores credential records. Create surfaces a typed
// conflict error (apperror.ErrConflict) when username or email is
// already taken — the UNIQUE constraints in the store are the source of
// truth, not a racy pre-check.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// ProfileRepository stores per-user profile documents and their
// enrollment lists. Methods that mutate counters and enrollments
// together do so atomically (single transaction per call).
type ProfileRepository interface {
	// GetByUserID returns apperror.ErrNotFound when the user has no
	// profile yet — callers decide whether absence is an error.
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)

	ListEnrollments(ctx context.Context, profileID string) ([]model.Enrollment, error)

	// Upsert creates the profile on first write, otherwise overwrites
	// its scalar fields and lists. Derived counters and enrollments are
	// never touched by this method.
	Upsert(ctx context.Context, profile *model.Profile) error

	// AddEnrollment appends an enrollment to the user's profile
	// (creating an empty profile first if needed) and applies the given
	// counter deltas in the same transaction. A duplicate courseId
	// yields apperror.ErrConflict.
	AddEnrollment(ctx context.Context, userID string, e *model.Enrollment, completedDelta int, hoursDelta float64) error

	GetEnrollment(ctx context.Context, userID, courseID string) (*model.Enrollment, error)

	// UpdateProgress sets an enrollment's progress and, when progress
	// saturates at 100 for the first time, flips status to completed and
	// increments the profile's completedCourses counter exactly once.
	// Optional hoursSpent adds to totalHours; optional completedModules
	// overwrites the field. All of it happens in one transaction against
	// the single enrollment row, so concurrent updates to different
	// courses of the same profile do not clobber each other.
	UpdateProgress(ctx context.Context, userID, courseID string, progress int, hoursSpent *float64, completedModules *int) (*model.Enrollment, error)
}
