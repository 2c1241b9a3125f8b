package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/service/learning"
)

// AuthHandler serves the sign-in endpoints of a session.
type AuthHandler struct {
	sessions sessionOpener
	log      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(sessions sessionOpener, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, log: logger.With("handler", "auth")}
}

type loginRequest struct {
	Email string `json:"email"`
}

type signupRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type avatarRequest struct {
	AvatarURL string `json:"avatarUrl"`
}

// userResponse wraps the profile; User is null when signed out.
type userResponse struct {
	User *domain.User `json:"user"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	user, err := s.Login(r.Context(), learning.LoginInput{Email: req.Email})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	user, err := s.Signup(r.Context(), learning.SignupInput{Name: req.Name, Email: req.Email})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{User: user})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if err := s.Logout(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me handles GET /me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: s.User()})
}

// UpdateAvatar handles PUT /me/avatar. Signed-out sessions get a null user.
func (h *AuthHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	if err := decodeJSONLimit(w, r, &req, maxAvatarBodyBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := currentSession(h.sessions, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	user, err := s.UpdateUserAvatar(r.Context(), learning.AvatarInput{URL: req.AvatarURL})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}
