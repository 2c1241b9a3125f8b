package rest

import (
	"net/http"

	"github.com/heartmarshall/learnify-backend/internal/transport/middleware"
)

// Handlers are the endpoint groups mounted by NewRouter.
type Handlers struct {
	Health  *HealthHandler
	Session *SessionHandler
	Auth    *AuthHandler
	Course  *CourseHandler
	Tutor   *TutorHandler
}

// Middlewares configure the router chains. Global wraps every route; Public
// wraps POST /sessions; Protected wraps routes that need a session token.
type Middlewares struct {
	Global    middleware.Middleware
	Public    middleware.Middleware
	Protected middleware.Middleware
}

// NewRouter mounts all API routes.
func NewRouter(h Handlers, mw Middlewares) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.Handle("POST /sessions", mw.Public(http.HandlerFunc(h.Session.Create)))
	mux.Handle("GET /courses", mw.Public(http.HandlerFunc(h.Course.List)))

	protected := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, mw.Protected(fn))
	}

	protected("POST /auth/login", h.Auth.Login)
	protected("POST /auth/signup", h.Auth.Signup)
	protected("POST /auth/logout", h.Auth.Logout)
	protected("GET /me", h.Auth.Me)
	protected("PUT /me/avatar", h.Auth.UpdateAvatar)

	protected("GET /courses/{courseID}/outline", h.Course.Outline)
	protected("POST /courses/{courseID}/enroll", h.Course.Enroll)
	protected("GET /courses/{courseID}/progress", h.Course.Progress)
	protected("GET /courses/{courseID}/modules/{moduleID}/lessons/{lessonID}", h.Course.Lesson)
	protected("POST /courses/{courseID}/modules/{moduleID}/lessons/{lessonID}/days/{day}/quiz", h.Course.GradeQuiz)
	protected("POST /courses/{courseID}/lessons/{lessonID}/toggle", h.Course.Toggle)
	protected("GET /enrollments", h.Course.Enrollments)
	protected("GET /progress", h.Course.Overview)

	protected("POST /tutor", h.Tutor.Ask)

	return mw.Global(mux)
}
