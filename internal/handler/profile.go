package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yogendram/career-compass/internal/apperror"
	"github.com/yogendram/career-compass/internal/session"
)

// ProfileHandler lets the logged-in user edit their own profile.
type ProfileHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

func NewProfileHandler(sessions *session.Manager, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{sessions: sessions, logger: logger}
}

// HandleUpdate merges a partial profile update into the current user.
// Role and verified are not accepted here; those are admin operations.
//
// HTTP: PUT /api/profile (behind RequireAuth)
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid field values"))
		return
	}

	req.Role = nil
	req.Verified = nil

	user, err := h.sessions.UpdateCurrentUser(r.Context(), req.toUpdate())
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "no active session",
		})
		return
	}

	writeJSON(w, http.StatusOK, user.Sanitized())
}

// HandleProgress returns the current user's progress counters.
//
// HTTP: GET /api/profile/progress (behind RequireAuth)
func (h *ProfileHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessions.Current()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "no active session",
		})
		return
	}

	writeJSON(w, http.StatusOK, user.Progress)
}
