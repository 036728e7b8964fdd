package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys so no other package can
// read or shadow values stored by this one.
type contextKey string

const userIDKey contextKey = "userID"

// CookieName is the HttpOnly cookie carrying the session JWT.
const CookieName = "cc_session"

// SessionChecker reports the id of the process's active session, if any.
// Satisfied by session.Manager; declared here to keep the dependency
// pointing from session to auth, not the other way.
type SessionChecker interface {
	CurrentUserID() (string, bool)
}

// RequireAuth enforces authentication on protected routes.
//
// The token only names a user id; the durable session is the source of
// truth. A request is authenticated when the cookie validates AND its
// subject matches the active session. A stale cookie from before a logout
// (or from a different login) gets 401 like any other bad token.
func RequireAuth(tokens *TokenService, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			if current, ok := sessions.CurrentUserID(); !ok || current != userID {
				http.Error(w, `{"error":"unauthorized","message":"no active session for this token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the user identity when a valid, session-matching
// token is present but never blocks the request. Handlers see anonymous
// requests as UserIDFromContext returning ("", false).
func OptionalAuth(tokens *TokenService, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				if current, ok := sessions.CurrentUserID(); ok && current == userID {
					r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id from the request
// context. Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
