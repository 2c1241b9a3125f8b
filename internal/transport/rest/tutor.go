package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/learnify-backend/internal/provider"
	"github.com/heartmarshall/learnify-backend/internal/service/tutor"
)

type tutorService interface {
	Ask(ctx context.Context, in tutor.AskInput) (string, error)
}

// TutorHandler serves the AI tutor chat.
type TutorHandler struct {
	svc tutorService
	log *slog.Logger
}

// NewTutorHandler creates a TutorHandler.
func NewTutorHandler(svc tutorService, logger *slog.Logger) *TutorHandler {
	return &TutorHandler{svc: svc, log: logger.With("handler", "tutor")}
}

type askRequest struct {
	Prompt  string              `json:"prompt"`
	History []provider.ChatTurn `json:"history"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

// Ask handles POST /tutor. The conversation lives on the client; every
// request carries the full history.
func (h *TutorHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.svc.Ask(r.Context(), tutor.AskInput{Prompt: req.Prompt, History: req.History})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Reply: reply})
}
