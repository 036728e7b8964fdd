package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yogendram/career-compass/internal/apperror"
	"github.com/yogendram/career-compass/internal/model"
	"github.com/yogendram/career-compass/internal/registry"
	"github.com/yogendram/career-compass/internal/session"
)

// UserHandler serves the admin dashboard's user management endpoints.
//
// Two guards the registry deliberately does not enforce live here: the
// active admin may not delete their own account, and may not demote
// themselves out of the admin role. Both are rejected before any service
// call is made.
type UserHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

func NewUserHandler(sessions *session.Manager, logger *slog.Logger) *UserHandler {
	return &UserHandler{sessions: sessions, logger: logger}
}

// RequireAdmin gates a route subtree on the active session holding the
// admin role. Runs after auth.RequireAuth, so a current user exists.
func (h *UserHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.sessions.Current()
		if !ok || user.Role != model.RoleAdmin {
			writeError(w, apperror.Forbidden("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleList returns every registry entry.
//
// HTTP: GET /api/admin/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users := h.sessions.ListUsers()
	out := make([]model.User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized()
	}
	writeJSON(w, http.StatusOK, out)
}

type addUserRequest struct {
	Name          string              `json:"name" validate:"required"`
	Email         string              `json:"email" validate:"required,email"`
	Role          model.Role          `json:"role" validate:"omitempty,oneof=student admin counselor"`
	Avatar        string              `json:"avatar"`
	AcademicLevel model.AcademicLevel `json:"academicLevel"`
	Interests     []string            `json:"interests"`
	AcademicGoals string              `json:"academicGoals"`
	LearningStyle model.LearningStyle `json:"learningStyle"`
}

// HandleAdd creates a pre-verified account.
//
// HTTP: POST /api/admin/users
func (h *UserHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "name and a valid email are required"))
		return
	}

	user, err := h.sessions.AddUser(r.Context(), model.User{
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		Avatar:        req.Avatar,
		AcademicLevel: req.AcademicLevel,
		Interests:     req.Interests,
		AcademicGoals: req.AcademicGoals,
		LearningStyle: req.LearningStyle,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user.Sanitized())
}

// userUpdateRequest carries optional fields; absent keys leave the stored
// value untouched. Shared by the admin edit and the profile endpoints.
type userUpdateRequest struct {
	Name                 *string                     `json:"name"`
	Email                *string                     `json:"email" validate:"omitempty,email"`
	Role                 *model.Role                 `json:"role" validate:"omitempty,oneof=student admin counselor"`
	Verified             *bool                       `json:"verified"`
	Avatar               *string                     `json:"avatar"`
	AcademicLevel        *model.AcademicLevel        `json:"academicLevel"`
	Interests            *[]string                   `json:"interests"`
	AcademicGoals        *string                     `json:"academicGoals"`
	LearningStyle        *model.LearningStyle        `json:"learningStyle"`
	NotificationSettings *model.NotificationSettings `json:"notificationSettings"`
}

func (req userUpdateRequest) toUpdate() registry.Update {
	return registry.Update{
		Name:                 req.Name,
		Email:                req.Email,
		Role:                 req.Role,
		Verified:             req.Verified,
		Avatar:               req.Avatar,
		AcademicLevel:        req.AcademicLevel,
		Interests:            req.Interests,
		AcademicGoals:        req.AcademicGoals,
		LearningStyle:        req.LearningStyle,
		NotificationSettings: req.NotificationSettings,
	}
}

// HandleEdit applies a partial update to a registry entry.
//
// HTTP: PUT /api/admin/users/{id}
func (h *UserHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid field values"))
		return
	}

	// Self-demotion guard: the active admin keeps the admin role.
	if current, ok := h.sessions.Current(); ok && current.ID == id {
		if req.Role != nil && *req.Role != model.RoleAdmin {
			writeError(w, apperror.Forbidden("you cannot change your own role"))
			return
		}
	}

	user, err := h.sessions.EditUser(r.Context(), id, req.toUpdate())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Sanitized())
}

// HandleDelete removes a registry entry. Deleting the session's own user is
// rejected here, before the registry is reached.
//
// HTTP: DELETE /api/admin/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if current, ok := h.sessions.Current(); ok && current.ID == id {
		writeError(w, apperror.Forbidden("you cannot delete your own account"))
		return
	}

	if err := h.sessions.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleVerify verifies an account on the admin's behalf.
//
// HTTP: POST /api/admin/users/{id}/verify
func (h *UserHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := h.sessions.VerifyUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Sanitized())
}
