package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type tokenIssuer interface {
	IssueToken(sessionID uuid.UUID) (string, time.Time, error)
}

// SessionHandler starts anonymous sessions.
type SessionHandler struct {
	tokens tokenIssuer
	log    *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(tokens tokenIssuer, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{tokens: tokens, log: logger.With("handler", "session")}
}

type sessionResponse struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Create handles POST /sessions. The session state itself is created lazily
// on first use.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := uuid.New()
	token, expiresAt, err := h.tokens.IssueToken(id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "session started", slog.String("session_id", id.String()))
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: id.String(),
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
