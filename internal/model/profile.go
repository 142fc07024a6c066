package model

import "time"

// Enrollment status values. An enrollment starts in-progress and moves to
// completed once progress reaches 100; no transition back is exposed.
const (
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	// StatusNotEnrolled is never stored — it is the canonical status
	// returned by course-status lookups when no enrollment exists.
	StatusNotEnrolled = "not-enrolled"
)

// Profile holds a user's personal data and derived course counters.
// At most one Profile exists per user (UNIQUE constraint on user_id);
// it is created lazily on the first profile write or first enrollment.
//
// CompletedCourses and TotalHours are derived counters maintained at
// write time (enrollment adds, progress updates), never recomputed by
// scanning the enrollment list.
type Profile struct {
	ID               string    `json:"id"               db:"id"`
	UserID           string    `json:"userId"           db:"user_id"`
	FullName         string    `json:"fullName"         db:"full_name"`
	Phone            string    `json:"phone"            db:"phone"`
	Address          string    `json:"address"          db:"address"`
	School           string    `json:"school"           db:"school"`
	Bio              string    `json:"bio"              db:"bio"`
	Skills           []string  `json:"skills"           db:"skills"`
	Interests        []string  `json:"interests"        db:"interests"`
	CompletedCourses int       `json:"completedCourses" db:"completed_courses"`
	TotalHours       float64   `json:"totalHours"       db:"total_hours"`
	CreatedAt        time.Time `json:"createdAt"        db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt"        db:"updated_at"`
}

// Enrollment is one course membership record belonging to a Profile.
// CourseID is an opaque external identifier, unique within one profile's
// enrollments (UNIQUE(profile_id, course_id) in the store).
//
// The field names mirror the client-facing JSON: enrollment keeps the
// historical "purchaseDate" key even though this flow is enrollment-only
// and every course is priced "Free".
type Enrollment struct {
	ID               string    `json:"-"                db:"id"`
	ProfileID        string    `json:"-"                db:"profile_id"`
	CourseID         string    `json:"courseId"         db:"course_id"`
	Title            string    `json:"title"            db:"title"`
	Instructor       string    `json:"instructor"       db:"instructor"`
	Progress         int       `json:"progress"         db:"progress"`
	Status           string    `json:"status"           db:"status"`
	PurchaseDate     time.Time `json:"purchaseDate"     db:"purchase_date"`
	Rating           float64   `json:"rating"           db:"rating"`
	Price            string    `json:"price"            db:"price"`
	TotalModules     int       `json:"totalModules"     db:"total_modules"`
	CompletedModules int       `json:"completedModules" db:"completed_modules"`
	LastWatched      time.Time `json:"lastWatched"      db:"last_watched"`
}

// ProfileView is the merged read model returned by the profile endpoints:
// profile fields plus the username/email/join-date that live on the User
// record. A user with no stored Profile still gets a full view with zero
// values — an absent profile is not an error.
type ProfileView struct {
	UserID           string       `json:"userId"`
	Username         string       `json:"username"`
	Email            string       `json:"email"`
	JoinDate         time.Time    `json:"joinDate"`
	FullName         string       `json:"fullName"`
	Phone            string       `json:"phone"`
	Address          string       `json:"address"`
	School           string       `json:"school"`
	Bio              string       `json:"bio"`
	Skills           []string     `json:"skills"`
	Interests        []string     `json:"interests"`
	CompletedCourses int          `json:"completedCourses"`
	TotalHours       float64      `json:"totalHours"`
	PurchasedCourses []Enrollment `json:"purchasedCourses"`
}

// CourseStatus is the read model for a single course-status lookup.
// Absence of an enrollment is a representable state, not an error.
type CourseStatus struct {
	Enrolled         bool       `json:"enrolled"`
	Progress         int        `json:"progress"`
	Status           string     `json:"status"`
	EnrollmentDate   *time.Time `json:"enrollmentDate,omitempty"`
	CompletedModules int        `json:"completedModules"`
}
