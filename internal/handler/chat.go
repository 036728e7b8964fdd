package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/yogendram/career-compass/internal/advisor"
	"github.com/yogendram/career-compass/internal/apperror"
)

// ChatHandler serves the Guidance AI chat. A nil advisor means no Gemini
// credentials are configured and the feature reports itself unavailable.
//
// There is one conversation per process, matching the one-session model;
// logging out does not reset it.
type ChatHandler struct {
	advisor *advisor.Advisor
	logger  *slog.Logger

	mu      sync.Mutex
	session *advisor.Session
}

func NewChatHandler(adv *advisor.Advisor, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{advisor: adv, logger: logger}
}

type chatStatusResponse struct {
	Available bool   `json:"available"`
	Greeting  string `json:"greeting,omitempty"`
}

// HandleStatus reports whether the chat is available and, when it is, the
// opening greeting.
//
// HTTP: GET /api/chat
func (h *ChatHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if h.advisor == nil {
		writeJSON(w, http.StatusOK, chatStatusResponse{Available: false})
		return
	}
	writeJSON(w, http.StatusOK, chatStatusResponse{Available: true, Greeting: advisor.Greeting})
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// HandleSend delivers one message to the counselor and returns the reply.
//
// HTTP: POST /api/chat (behind RequireAuth)
func (h *ChatHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	if h.advisor == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "chat_unavailable",
			Message: "The guidance chat is not configured.",
		})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("message", "message is required"))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session == nil {
		sess, err := h.advisor.NewSession(r.Context())
		if err != nil {
			h.logger.Error("failed to start chat session", slog.String("error", err.Error()))
			writeError(w, apperror.ExternalService(err))
			return
		}
		h.session = sess
	}

	reply, err := h.session.Send(r.Context(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
