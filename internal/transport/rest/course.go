package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/service/learning"
)

type courseLister interface {
	List() []domain.Course
}

// CourseHandler serves the catalog, generated content and lesson progress.
type CourseHandler struct {
	sessions sessionOpener
	catalog  courseLister
	log      *slog.Logger
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(sessions sessionOpener, catalog courseLister, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{sessions: sessions, catalog: catalog, log: logger.With("handler", "course")}
}

type coursesResponse struct {
	Courses []domain.Course `json:"courses"`
}

type progressResponse struct {
	CourseID string `json:"courseId"`
	Enrolled bool   `json:"enrolled"`
	Percent  int    `json:"percent"`
}

type toggleResponse struct {
	CourseID  string `json:"courseId"`
	LessonID  string `json:"lessonId"`
	Completed bool   `json:"completed"`
	Percent   int    `json:"percent"`
}

type lessonResponse struct {
	Lesson *domain.Lesson `json:"lesson"`
	// Plan is the decoded content of a regular lesson; nil for assessments
	// and for content that does not decode.
	Plan *domain.LessonContent `json:"plan,omitempty"`
	// Days is the quiz gating of a regular lesson; set together with Plan.
	Days *learning.DayState `json:"days,omitempty"`
	// GenerationError is set when the generator answered with an error payload.
	GenerationError string `json:"generationError,omitempty"`
}

type enrollmentsResponse struct {
	CourseIDs []string `json:"courseIds"`
}

type quizRequest struct {
	Answers map[int]string `json:"answers"`
}

// List handles GET /courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, coursesResponse{Courses: h.catalog.List()})
}

// Outline handles GET /courses/{courseID}/outline.
func (h *CourseHandler) Outline(w http.ResponseWriter, r *http.Request) {
	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	course, err := s.GetCourseOutline(r.Context(), r.PathValue("courseID"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// Enroll handles POST /courses/{courseID}/enroll.
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	courseID := r.PathValue("courseID")
	if err := s.EnrollInCourse(r.Context(), courseID); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{
		CourseID: courseID,
		Enrolled: true,
		Percent:  s.GetCourseProgress(courseID),
	})
}

// Progress handles GET /courses/{courseID}/progress.
func (h *CourseHandler) Progress(w http.ResponseWriter, r *http.Request) {
	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	courseID := r.PathValue("courseID")
	writeJSON(w, http.StatusOK, progressResponse{
		CourseID: courseID,
		Enrolled: s.ProgressDetails().IsEnrolled(courseID),
		Percent:  s.GetCourseProgress(courseID),
	})
}

// Lesson handles GET /courses/{courseID}/modules/{moduleID}/lessons/{lessonID}.
// Without an assessment query parameter the flag comes from the cached outline.
func (h *CourseHandler) Lesson(w http.ResponseWriter, r *http.Request) {
	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	courseID, moduleID, lessonID := r.PathValue("courseID"), r.PathValue("moduleID"), r.PathValue("lessonID")

	var isAssessment bool
	if raw := r.URL.Query().Get("assessment"); raw != "" {
		isAssessment, err = strconv.ParseBool(raw)
		if err != nil {
			handleError(h.log, w, r, domain.NewValidationError("assessment", "must be a boolean"))
			return
		}
	} else if cached, ok := s.Lesson(courseID, moduleID, lessonID); ok {
		isAssessment = cached.IsAssessment
	}

	lesson, err := s.GetLessonContent(r.Context(), courseID, moduleID, lessonID, isAssessment)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := lessonResponse{Lesson: lesson}
	if msg, ok := domain.ErrorPayloadMessage(lesson.Content); ok {
		resp.GenerationError = msg
	} else if !isAssessment {
		if plan, err := domain.ParseLessonContent(lesson.Content); err == nil {
			days := s.LessonDayState(courseID, moduleID, lessonID)
			resp.Plan, resp.Days = plan, &days
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GradeQuiz handles POST /courses/{courseID}/modules/{moduleID}/lessons/{lessonID}/days/{day}/quiz.
// The lesson content must already be generated and the day unlocked.
func (h *CourseHandler) GradeQuiz(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil || day < 1 || day > domain.LessonDays {
		handleError(h.log, w, r, domain.NewValidationError("day", "must be between 1 and 5"))
		return
	}

	var req quizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := s.SubmitQuiz(r.PathValue("courseID"), r.PathValue("moduleID"), r.PathValue("lessonID"), day, req.Answers)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Toggle handles POST /courses/{courseID}/lessons/{lessonID}/toggle.
func (h *CourseHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	courseID, lessonID := r.PathValue("courseID"), r.PathValue("lessonID")
	if err := s.ToggleLessonCompletion(r.Context(), courseID, lessonID); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	detail, _ := s.ProgressDetails().Get(courseID)
	writeJSON(w, http.StatusOK, toggleResponse{
		CourseID:  courseID,
		LessonID:  lessonID,
		Completed: detail.IsCompleted(lessonID),
		Percent:   detail.Percent(),
	})
}

// Enrollments handles GET /enrollments.
func (h *CourseHandler) Enrollments(w http.ResponseWriter, r *http.Request) {
	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	ids := s.EnrolledCourses()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, enrollmentsResponse{CourseIDs: ids})
}

// Overview handles GET /progress.
func (h *CourseHandler) Overview(w http.ResponseWriter, r *http.Request) {
	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Overview())
}
