package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arefin/learnhub/internal/apperror"
	"github.com/arefin/learnhub/internal/model"
	"github.com/arefin/learnhub/internal/repository"
)

// ProfileInput carries the writable scalar fields and lists of a profile
// save. Derived counters and enrollments are not writable through this
// path at all.
type ProfileInput struct {
	FullName  string
	Phone     string
	Address   string
	School    string
	Bio       string
	Skills    []string
	Interests []string
}

// CourseInput is the payload of the add-course operation. Unlike the
// enroll flow, callers may supply pre-populated progress/status (e.g.
// importing history from another system) and an hours figure that counts
// toward the profile's totalHours.
type CourseInput struct {
	CourseID         string
	Title            string
	Instructor       string
	Progress         int
	Status           string
	Rating           float64
	Price            string
	TotalModules     int
	CompletedModules int
	Hours            float64
}

// ProfileService manages profile documents and course enrollments.
type ProfileService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:    users,
		profiles: profiles,
		logger:   logger,
	}
}

// GetProfile returns the merged profile view for a user.
//
// A missing user is an error; a missing profile is not — users who never
// saved a profile or enrolled get a view with default field values merged
// with their account's username, email, and join date.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return emptyView(user), nil
		}
		return nil, fmt.Errorf("service/profile: loading profile for user %s: %w", userID, err)
	}

	return s.buildView(ctx, user, profile)
}

// SaveProfile sanitizes the input and performs an atomic create-or-update
// of the user's profile, returning the merged view.
func (s *ProfileService) SaveProfile(ctx context.Context, userID string, in ProfileInput) (*model.ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		UserID:    userID,
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		School:    strings.TrimSpace(in.School),
		Bio:       strings.TrimSpace(in.Bio),
		Skills:    cleanList(in.Skills),
		Interests: cleanList(in.Interests),
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.logger.Error("failed to save profile",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/profile: saving profile for user %s: %w", userID, err)
	}

	s.logger.Info("profile saved", slog.String("userID", userID))

	return s.buildView(ctx, user, profile)
}

// AddCourse appends a course record to the user's enrollment list
// (creating the profile lazily) and bumps the derived counters: the
// completed count if the record arrives already completed, and
// totalHours by the supplied hours figure.
//
// A duplicate courseId is rejected with a conflict, same as the enroll
// flow — one duplicate policy for both write paths.
func (s *ProfileService) AddCourse(ctx context.Context, userID string, in CourseInput) error {
	if strings.TrimSpace(in.CourseID) == "" {
		return apperror.ValidationFailed("courseId", "courseId is required")
	}

	status := in.Status
	if status == "" {
		status = model.StatusInProgress
	}
	price := in.Price
	if price == "" {
		price = "Free"
	}

	e := &model.Enrollment{
		CourseID:         strings.TrimSpace(in.CourseID),
		Title:            in.Title,
		Instructor:       in.Instructor,
		Progress:         in.Progress,
		Status:           status,
		Rating:           in.Rating,
		Price:            price,
		TotalModules:     in.TotalModules,
		CompletedModules: in.CompletedModules,
	}

	completedDelta := 0
	if status == model.StatusCompleted {
		completedDelta = 1
	}

	if err := s.profiles.AddEnrollment(ctx, userID, e, completedDelta, in.Hours); err != nil {
		return fmt.Errorf("service/profile: adding course %s for user %s: %w", in.CourseID, userID, err)
	}

	s.logger.Info("course added",
		slog.String("userID", userID),
		slog.String("courseID", e.CourseID),
	)
	return nil
}

// EnrollCourse enrolls the user in a course for free. The enrollment
// starts with progress 0 and status in-progress; a second enrollment in
// the same course fails with a conflict.
func (s *ProfileService) EnrollCourse(ctx context.Context, userID, courseID, title, instructor string, rating float64, totalModules int) (*model.Enrollment, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, apperror.ValidationFailed("courseId", "courseId is required")
	}

	// The enroll flow promises a 404 for a vanished account, so check
	// the user up front (unlike add-course, where the token is proof
	// enough).
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	e := &model.Enrollment{
		CourseID:     courseID,
		Title:        title,
		Instructor:   instructor,
		Progress:     0,
		Status:       model.StatusInProgress,
		Rating:       rating,
		Price:        "Free",
		TotalModules: totalModules,
	}

	if err := s.profiles.AddEnrollment(ctx, userID, e, 0, 0); err != nil {
		return nil, fmt.Errorf("service/profile: enrolling user %s in course %s: %w", userID, courseID, err)
	}

	s.logger.Info("user enrolled in course",
		slog.String("userID", userID),
		slog.String("courseID", courseID),
	)

	return e, nil
}

// UpdateProgress records progress on an enrolled course. Completion (and
// the exactly-once completedCourses increment) is decided inside the
// repository transaction; this method only validates and delegates.
func (s *ProfileService) UpdateProgress(ctx context.Context, userID, courseID string, progress int, hoursSpent *float64, completedModules *int) (*model.Enrollment, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, apperror.ValidationFailed("courseId", "courseId is required")
	}
	if progress < 0 {
		return nil, apperror.ValidationFailed("progress", "progress cannot be negative")
	}

	e, err := s.profiles.UpdateProgress(ctx, userID, courseID, progress, hoursSpent, completedModules)
	if err != nil {
		return nil, err
	}

	s.logger.Info("progress updated",
		slog.String("userID", userID),
		slog.String("courseID", courseID),
		slog.Int("progress", e.Progress),
		slog.String("status", e.Status),
	)

	return e, nil
}

// CourseStatus reports whether the user is enrolled in a course.
// Absence — no profile, or no enrollment for that course — is a valid
// answer, not an error: the canonical not-enrolled shape comes back.
func (s *ProfileService) CourseStatus(ctx context.Context, userID, courseID string) (*model.CourseStatus, error) {
	e, err := s.profiles.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		if isNotFound(err) {
			return &model.CourseStatus{
				Enrolled: false,
				Progress: 0,
				Status:   model.StatusNotEnrolled,
			}, nil
		}
		return nil, fmt.Errorf("service/profile: checking course %s for user %s: %w", courseID, userID, err)
	}

	return &model.CourseStatus{
		Enrolled:         true,
		Progress:         e.Progress,
		Status:           e.Status,
		EnrollmentDate:   &e.PurchaseDate,
		CompletedModules: e.CompletedModules,
	}, nil
}

// buildView merges account fields with the profile document and its
// enrollment list.
func (s *ProfileService) buildView(ctx context.Context, user *model.User, profile *model.Profile) (*model.ProfileView, error) {
	enrollments, err := s.profiles.ListEnrollments(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: listing enrollments for user %s: %w", user.ID, err)
	}

	return &model.ProfileView{
		UserID:           user.ID,
		Username:         user.Username,
		Email:            user.Email,
		JoinDate:         user.CreatedAt,
		FullName:         profile.FullName,
		Phone:            profile.Phone,
		Address:          profile.Address,
		School:           profile.School,
		Bio:              profile.Bio,
		Skills:           profile.Skills,
		Interests:        profile.Interests,
		CompletedCourses: profile.CompletedCourses,
		TotalHours:       profile.TotalHours,
		PurchasedCourses: enrollments,
	}, nil
}

// emptyView is the default profile view for a user with no stored
// profile document.
func emptyView(user *model.User) *model.ProfileView {
	return &model.ProfileView{
		UserID:           user.ID,
		Username:         user.Username,
		Email:            user.Email,
		JoinDate:         user.CreatedAt,
		Skills:           []string{},
		Interests:        []string{},
		PurchasedCourses: []model.Enrollment{},
	}
}

// cleanList trims every entry and drops the empty ones. Order and
// duplicates are preserved — a skill list is user-authored free text.
func cleanList(list []string) []string {
	out := []string{}
	for _, item := range list {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
