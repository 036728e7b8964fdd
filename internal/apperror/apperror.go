// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; the HTTP layer maps them to status
// codes with errors.Is. Sentinels cover the domain cases the rest of the
// code needs to distinguish:
//
//   - registration:   ErrDuplicateEmail
//   - login:          ErrUserNotFound, ErrInvalidCredentials, ErrUnverified
//   - recommendation: ErrExternalService, ErrRateLimited
//
// plus the generic ErrNotFound / ErrValidation / ErrForbidden / ErrConflict
// used by CRUD paths.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnverified         = errors.New("account not verified")

	// ErrExternalService covers hard failures of the recommendation
	// generator (transport errors, timeouts). ErrRateLimited wraps it so
	// errors.Is(err, ErrExternalService) also holds for rate-limit errors,
	// while callers that want friendlier wording can still match the
	// narrower sentinel.
	ErrExternalService = errors.New("external service failure")
	ErrRateLimited     = fmt.Errorf("%w: rate limited", ErrExternalService)
)

// AppError pairs a sentinel with a human-readable message. The message is
// what gets surfaced to the end user; the wrapped sentinel is what code
// branches on.
type AppError struct {
	Err     error  // sentinel, matched with errors.Is
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// DuplicateEmail is returned by registration when another user already owns
// the (case-insensitively normalized) email.
func DuplicateEmail(email string) *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: fmt.Sprintf("An account with the email %s already exists.", strings.ToLower(strings.TrimSpace(email))),
		Field:   "email",
	}
}

// UserNotFound is the login-time miss: no registry entry for the email.
func UserNotFound() *AppError {
	return &AppError{
		Err:     ErrUserNotFound,
		Message: "No account found with this email.",
	}
}

func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Invalid credentials.",
	}
}

// Unverified gates login until the account's email is verified.
func Unverified() *AppError {
	return &AppError{
		Err:     ErrUnverified,
		Message: "Email not verified. Please check your inbox or click the verify button.",
	}
}

// ExternalService wraps a hard generator failure. The cause's text is kept
// in the message so the caller can render it.
func ExternalService(cause error) *AppError {
	return &AppError{
		Err:     ErrExternalService,
		Message: fmt.Sprintf("The recommendation service is unavailable: %v", cause),
	}
}

// RateLimited is the resource-exhaustion variant of ExternalService. The
// cause stays in the wrapped chain so logs see the upstream text while the
// rendered message stays friendly.
func RateLimited(cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %v", ErrRateLimited, cause),
		Message: "The recommendation service has hit its request limit. Please try again in a little while.",
	}
}
