package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arefin/learnhub/internal/auth"
	"github.com/arefin/learnhub/internal/service"
)

// ProfileHandler exposes the profile document and course-enrollment
// operations. Every route is behind the auth middleware, so handlers
// resolve the acting user from the session claims in the context.
type ProfileHandler struct {
	svc    *service.ProfileService
	logger *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(svc *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, logger: logger}
}

// HandleGetProfile returns the merged profile view.
//
// HTTP: GET /user/profile
// A user who never saved a profile still gets 200 with default values
// merged with their account fields.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "not authenticated"})
		return
	}

	view, err := h.svc.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to fetch profile",
			slog.String("userID", claims.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"profile": view})
}

// profileRequest is the POST /user/profile body.
type profileRequest struct {
	FullName  string   `json:"fullName"`
	Phone     string   `json:"phone"`
	Address   string   `json:"address"`
	School    string   `json:"school"`
	Bio       string   `json:"bio"`
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
}

// HandleSaveProfile creates or updates the profile's personal fields.
//
// HTTP: POST /user/profile
func (h *ProfileHandler) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "not authenticated"})
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return
	}

	view, err := h.svc.SaveProfile(r.Context(), claims.UserID, service.ProfileInput{
		FullName:  req.FullName,
		Phone:     req.Phone,
		Address:   req.Address,
		School:    req.School,
		Bio:       req.Bio,
		Skills:    req.Skills,
		Interests: req.Interests,
	})
	if err != nil {
		h.logger.Error("failed to save profile",
			slog.String("userID", claims.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile saved successfully",
		"profile": view,
	})
}

// courseRequest is the POST /user/profile/course body: a full course
// record, possibly with history (pre-set progress/status and an hours
// figure that counts toward totalHours).
type courseRequest struct {
	CourseID         string  `json:"courseId"`
	Title            string  `json:"title"`
	Instructor       string  `json:"instructor"`
	Progress         int     `json:"progress"`
	Status           string  `json:"status"`
	Rating           float64 `json:"rating"`
	Price            string  `json:"price"`
	TotalModules     int     `json:"totalModules"`
	CompletedModules int     `json:"completedModules"`
	Hours            float64 `json:"hours"`
}

// HandleAddCourse appends a course record to the profile.
//
// HTTP: POST /user/profile/course
func (h *ProfileHandler) HandleAddCourse(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "not authenticated"})
		return
	}

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return
	}

	err := h.svc.AddCourse(r.Context(), claims.UserID, service.CourseInput{
		CourseID:         req.CourseID,
		Title:            req.Title,
		Instructor:       req.Instructor,
		Progress:         req.Progress,
		Status:           req.Status,
		Rating:           req.Rating,
		Price:            req.Price,
		TotalModules:     req.TotalModules,
		CompletedModules: req.CompletedModules,
		Hours:            req.Hours,
	})
	if err != nil {
		h.logger.Error("failed to add course",
			slog.String("userID", claims.UserID),
			slog.String("courseID", req.CourseID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Course added successfully"})
}

// enrollRequest is the POST /user/enroll-course body.
type enrollRequest struct {
	CourseID     string  `json:"courseId"`
	Title        string  `json:"title"`
	Instructor   string  `json:"instructor"`
	Rating       float64 `json:"rating"`
	TotalModules int     `json:"totalModules"`
}

// HandleEnrollCourse enrolls the user in a course for free.
//
// HTTP: POST /user/enroll-course
// Failure: 409 if already enrolled, 404 if the account has vanished.
func (h *ProfileHandler) HandleEnrollCourse(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "not authenticated"})
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return
	}

	course, err := h.svc.EnrollCourse(r.Context(), claims.UserID,
		req.CourseID, req.Title, req.Instructor, req.Rating, req.TotalModules)
	if err != nil {
		h.logger.Error("failed to enroll in course",
			slog.String("userID", claims.UserID),
			slog.String("courseID", req.CourseID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully enrolled in course!",
		"course":  course,
	})
}

// progressRequest is the POST /user/update-progress body. HoursSpent
// and CompletedModules are pointers: absent and zero mean different
// things (zero hours still touches nothing, but absent modules must not
// overwrite the stored count).
type progressRequest struct {
	CourseID         string   `json:"courseId"`
	Progress         int      `json:"progress"`
	HoursSpent       *float64 `json:"hoursSpent"`
	CompletedModules *int     `json:"completedModules"`
}

// HandleUpdateProgress records progress on an enrolled course.
//
// HTTP: POST /user/update-progress
func (h *ProfileHandler) HandleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "not authenticated"})
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return
	}

	e, err := h.svc.UpdateProgress(r.Context(), claims.UserID,
		req.CourseID, req.Progress, req.HoursSpent, req.CompletedModules)
	if err != nil {
		h.logger.Error("failed to update progress",
			slog.String("userID", claims.UserID),
			slog.String("courseID", req.CourseID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Progress updated successfully",
		"progress": e.Progress,
		"status":   e.Status,
	})
}

// HandleCourseStatus reports enrollment status for one course.
//
// HTTP: GET /user/course-status/{courseId}
// Not being enrolled is a 200 with enrolled=false, never a 404.
func (h *ProfileHandler) HandleCourseStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "not authenticated"})
		return
	}

	courseID := chi.URLParam(r, "courseId")

	status, err := h.svc.CourseStatus(r.Context(), claims.UserID, courseID)
	if err != nil {
		h.logger.Error("failed to check course status",
			slog.String("userID", claims.UserID),
			slog.String("courseID", courseID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
