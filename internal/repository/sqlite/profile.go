package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/arefin/learnhub/internal/apperror"
	"github.com/arefin/learnhub/internal/model"
	"github.com/arefin/learnhub/internal/repository"
)

// compile-time check that *DB implements repository.ProfileRepository
var _ repository.ProfileRepository = (*DB)(nil)

// GetByUserID retrieves a user's profile.
// Returns apperror.ErrNotFound when the user has never written a profile
// or enrolled — callers decide whether that is an error (the profile read
// path treats it as "all defaults", the progress path as a 404).
func (db *DB) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var (
		p         model.Profile
		skills    string
		interests string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, full_name, phone, address, school, bio,
		        skills, interests, completed_courses, total_hours,
		        created_at, updated_at
		 FROM profiles WHERE user_id = ?`,
		userID,
	).Scan(
		&p.ID,
		&p.UserID,
		&p.FullName,
		&p.Phone,
		&p.Address,
		&p.School,
		&p.Bio,
		&skills,
		&interests,
		&p.CompletedCourses,
		&p.TotalHours,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("sqlite: getting profile for user %s: %w", userID, err)
	}

	if p.Skills, err = decodeStringList(skills); err != nil {
		return nil, fmt.Errorf("sqlite: decoding skills for user %s: %w", userID, err)
	}
	if p.Interests, err = decodeStringList(interests); err != nil {
		return nil, fmt.Errorf("sqlite: decoding interests for user %s: %w", userID, err)
	}

	return &p, nil
}

// ListEnrollments returns a profile's enrollments in enrollment order.
func (db *DB) ListEnrollments(ctx context.Context, profileID string) ([]model.Enrollment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, profile_id, course_id, title, instructor, progress, status,
		        purchase_date, rating, price, total_modules, completed_modules, last_watched
		 FROM enrollments WHERE profile_id = ?
		 ORDER BY purchase_date, id`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing enrollments for profile %s: %w", profileID, err)
	}
	defer rows.Close()

	// Initialize to an empty slice (not nil) so the JSON response is
	// [] rather than null for a profile with no courses.
	enrollments := []model.Enrollment{}
	for rows.Next() {
		var e model.Enrollment
		if err := scanEnrollment(rows.Scan, &e); err != nil {
			return nil, fmt.Errorf("sqlite: scanning enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating enrollments: %w", err)
	}

	return enrollments, nil
}

// Upsert creates the profile on first write, otherwise overwrites its
// scalar fields and lists. A single INSERT ... ON CONFLICT statement
// keeps create-or-update atomic — no read-check-insert window.
//
// Derived counters (completed_courses, total_hours) and enrollments are
// NOT in the update list: a profile save can never clobber them.
func (db *DB) Upsert(ctx context.Context, profile *model.Profile) error {
	skills, err := encodeStringList(profile.Skills)
	if err != nil {
		return fmt.Errorf("sqlite: encoding skills: %w", err)
	}
	interests, err := encodeStringList(profile.Interests)
	if err != nil {
		return fmt.Errorf("sqlite: encoding interests: %w", err)
	}

	now := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO profiles (id, user_id, full_name, phone, address, school, bio,
		                       skills, interests, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   full_name  = excluded.full_name,
		   phone      = excluded.phone,
		   address    = excluded.address,
		   school     = excluded.school,
		   bio        = excluded.bio,
		   skills     = excluded.skills,
		   interests  = excluded.interests,
		   updated_at = excluded.updated_at`,
		xid.New().String(),
		profile.UserID,
		profile.FullName,
		profile.Phone,
		profile.Address,
		profile.School,
		profile.Bio,
		skills,
		interests,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting profile for user %s: %w", profile.UserID, err)
	}

	// Read the canonical row back: the ID and created_at survive from
	// the first insert, and the counters reflect enrollment history.
	saved, err := db.GetByUserID(ctx, profile.UserID)
	if err != nil {
		return fmt.Errorf("sqlite: reloading profile for user %s: %w", profile.UserID, err)
	}
	*profile = *saved

	return nil
}

// AddEnrollment appends an enrollment to the user's profile, creating an
// empty profile first if the user has none, and applies the counter
// deltas. Everything runs in one transaction, so a failed insert (e.g. a
// duplicate courseId) leaves the counters untouched.
func (db *DB) AddEnrollment(ctx context.Context, userID string, e *model.Enrollment, completedDelta int, hoursDelta float64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	profileID, err := ensureProfileTx(ctx, tx, userID)
	if err != nil {
		return err
	}

	e.ID = xid.New().String()
	e.ProfileID = profileID
	if e.PurchaseDate.IsZero() {
		e.PurchaseDate = time.Now()
	}
	if e.LastWatched.IsZero() {
		e.LastWatched = e.PurchaseDate
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO enrollments (id, profile_id, course_id, title, instructor, progress, status,
		                          purchase_date, rating, price, total_modules, completed_modules, last_watched)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.ProfileID,
		e.CourseID,
		e.Title,
		e.Instructor,
		e.Progress,
		e.Status,
		e.PurchaseDate,
		e.Rating,
		e.Price,
		e.TotalModules,
		e.CompletedModules,
		e.LastWatched,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("already enrolled in this course")
		}
		return fmt.Errorf("sqlite: inserting enrollment %s: %w", e.CourseID, err)
	}

	if completedDelta != 0 || hoursDelta != 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE profiles
			 SET completed_courses = completed_courses + ?,
			     total_hours = total_hours + ?,
			     updated_at = ?
			 WHERE id = ?`,
			completedDelta, hoursDelta, time.Now(), profileID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating profile counters: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing enrollment: %w", err)
	}
	return nil
}

// GetEnrollment finds one enrollment by the owning user and course ID.
// Returns apperror.ErrNotFound if the user has no profile or no
// enrollment for that course.
func (db *DB) GetEnrollment(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	var e model.Enrollment

	row := db.conn.QueryRowContext(ctx,
		`SELECT e.id, e.profile_id, e.course_id, e.title, e.instructor, e.progress, e.status,
		        e.purchase_date, e.rating, e.price, e.total_modules, e.completed_modules, e.last_watched
		 FROM enrollments e
		 JOIN profiles p ON p.id = e.profile_id
		 WHERE p.user_id = ? AND e.course_id = ?`,
		userID, courseID,
	)
	if err := scanEnrollment(row.Scan, &e); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("course", courseID)
		}
		return nil, fmt.Errorf("sqlite: getting enrollment %s: %w", courseID, err)
	}

	return &e, nil
}

// UpdateProgress applies a progress update to one enrollment row.
//
// The completion rule lives inside the transaction: if the new progress
// is >= 100 and the row was not already completed, the status flips and
// completed_courses increments — once. A second saturating update sees
// status already "completed" and leaves the counter alone.
//
// Only the matching enrollment row and the two counter columns are
// written, so concurrent updates to other courses of the same profile
// are untouched (no whole-document save).
func (db *DB) UpdateProgress(ctx context.Context, userID, courseID string, progress int, hoursSpent *float64, completedModules *int) (*model.Enrollment, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var profileID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM profiles WHERE user_id = ?`, userID,
	).Scan(&profileID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("sqlite: getting profile for user %s: %w", userID, err)
	}

	var (
		enrollmentID string
		status       string
		modules      int
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, status, completed_modules FROM enrollments
		 WHERE profile_id = ? AND course_id = ?`,
		profileID, courseID,
	).Scan(&enrollmentID, &status, &modules)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("course", courseID)
		}
		return nil, fmt.Errorf("sqlite: getting enrollment %s: %w", courseID, err)
	}

	completedDelta := 0
	if progress >= 100 && status != model.StatusCompleted {
		status = model.StatusCompleted
		completedDelta = 1
	}
	if completedModules != nil {
		modules = *completedModules
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE enrollments
		 SET progress = ?, status = ?, completed_modules = ?, last_watched = ?
		 WHERE id = ?`,
		progress, status, modules, now, enrollmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating enrollment %s: %w", courseID, err)
	}

	hoursDelta := 0.0
	if hoursSpent != nil {
		hoursDelta = *hoursSpent
	}
	if completedDelta != 0 || hoursDelta != 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE profiles
			 SET completed_courses = completed_courses + ?,
			     total_hours = total_hours + ?,
			     updated_at = ?
			 WHERE id = ?`,
			completedDelta, hoursDelta, now, profileID,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: updating profile counters: %w", err)
		}
	}

	var e model.Enrollment
	row := tx.QueryRowContext(ctx,
		`SELECT id, profile_id, course_id, title, instructor, progress, status,
		        purchase_date, rating, price, total_modules, completed_modules, last_watched
		 FROM enrollments WHERE id = ?`,
		enrollmentID,
	)
	if err := scanEnrollment(row.Scan, &e); err != nil {
		return nil, fmt.Errorf("sqlite: reloading enrollment %s: %w", courseID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing progress update: %w", err)
	}

	return &e, nil
}

// ensureProfileTx returns the ID of the user's profile, inserting an
// empty profile row first if none exists. Runs inside the caller's
// transaction so "ensure then append" is atomic.
func ensureProfileTx(ctx context.Context, tx *sql.Tx, userID string) (string, error) {
	var profileID string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM profiles WHERE user_id = ?`, userID,
	).Scan(&profileID)
	if err == nil {
		return profileID, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("sqlite: getting profile for user %s: %w", userID, err)
	}

	profileID = xid.New().String()
	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		profileID, userID, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: creating profile for user %s: %w", userID, err)
	}
	return profileID, nil
}

// scanEnrollment reads one enrollment row. Taking the Scan function
// (rather than *sql.Row or *sql.Rows) lets the same column list serve
// both single-row and multi-row queries.
func scanEnrollment(scan func(dest ...any) error, e *model.Enrollment) error {
	return scan(
		&e.ID,
		&e.ProfileID,
		&e.CourseID,
		&e.Title,
		&e.Instructor,
		&e.Progress,
		&e.Status,
		&e.PurchaseDate,
		&e.Rating,
		&e.Price,
		&e.TotalModules,
		&e.CompletedModules,
		&e.LastWatched,
	)
}

func encodeStringList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeStringList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}
