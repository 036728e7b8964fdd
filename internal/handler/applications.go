package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yogendram/career-compass/internal/apperror"
	"github.com/yogendram/career-compass/internal/model"
	"github.com/yogendram/career-compass/internal/session"
)

// ApplicationHandler serves the college application tracker. All routes sit
// behind RequireAuth; the ledger itself would treat an anonymous call as a
// no-op, but the HTTP surface rejects it outright.
type ApplicationHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

func NewApplicationHandler(sessions *session.Manager, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{sessions: sessions, logger: logger}
}

// HandleList returns the current user's applications in insertion order.
//
// HTTP: GET /api/applications
func (h *ApplicationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessions.Current()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "no active session"})
		return
	}

	apps := user.Applications
	if apps == nil {
		apps = []model.CollegeApplication{}
	}
	writeJSON(w, http.StatusOK, apps)
}

type applicationRequest struct {
	CollegeName string                  `json:"collegeName" validate:"required"`
	Status      model.ApplicationStatus `json:"status" validate:"omitempty,oneof='Planning to Apply' Applied Accepted Rejected Waitlisted"`
	Deadline    string                  `json:"deadline"`
	Notes       string                  `json:"notes"`
}

// HandleCreate appends a new application and returns it with its assigned
// id.
//
// HTTP: POST /api/applications
func (h *ApplicationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "collegeName is required and status must be a known value"))
		return
	}

	app := model.CollegeApplication{
		CollegeName: req.CollegeName,
		Status:      req.Status,
		Deadline:    req.Deadline,
		Notes:       req.Notes,
	}

	id, err := h.sessions.AddApplication(r.Context(), app)
	if err != nil {
		writeError(w, err)
		return
	}

	app.ID = id
	writeJSON(w, http.StatusCreated, app)
}

// HandleUpdate replaces the application with the id from the URL. Updating
// an unknown id is a silent no-op, matching the ledger contract.
//
// HTTP: PUT /api/applications/{id}
func (h *ApplicationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "collegeName is required and status must be a known value"))
		return
	}

	app := model.CollegeApplication{
		ID:          id,
		CollegeName: req.CollegeName,
		Status:      req.Status,
		Deadline:    req.Deadline,
		Notes:       req.Notes,
	}

	if err := h.sessions.UpdateApplication(r.Context(), app); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

// HandleDelete removes the application with the id from the URL. Deleting
// an unknown id is a silent no-op.
//
// HTTP: DELETE /api/applications/{id}
func (h *ApplicationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.sessions.DeleteApplication(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
