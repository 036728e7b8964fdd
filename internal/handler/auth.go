package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yogendram/career-compass/internal/apperror"
	"github.com/yogendram/career-compass/internal/auth"
	"github.com/yogendram/career-compass/internal/session"
)

// validate checks the struct tags on request DTOs before they reach the
// services. Shared by every handler in this package.
var validate = validator.New()

// AuthHandler serves registration, login, logout, verification, and the
// current-user endpoint.
type AuthHandler struct {
	sessions *session.Manager
	tokens   *auth.TokenService
	logger   *slog.Logger
}

func NewAuthHandler(sessions *session.Manager, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

// HandleRegister creates a new unverified student account.
//
// HTTP: POST /api/auth/register
// The account cannot log in until it is verified, so no cookie is issued.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "name and a valid email are required"))
		return
	}

	user, err := h.sessions.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user.Sanitized())
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

// HandleLogin authenticates and issues the session cookie.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("email", "a valid email is required"))
		return
	}

	user, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	tokenStr, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.Error("token generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(auth.SessionTokenTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, user.Sanitized())
}

// HandleLogout ends the session and clears the cookie.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleVerify marks an account as email-verified. It is a public route:
// it stands in for the verification link a real mailer would send, and the
// verification-sent page exposes it as the user-triggered "verify" action.
//
// HTTP: POST /api/auth/verify/{id}
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "user id is required"))
		return
	}

	user, err := h.sessions.VerifyUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Sanitized())
}

// HandleMe returns the logged-in user's profile.
//
// HTTP: GET /api/me (behind RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessions.Current()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "no active session",
		})
		return
	}

	writeJSON(w, http.StatusOK, user.Sanitized())
}
