// Package session implements the session manager: the single
// current-user reference and every operation that mutates it.
//
// The manager is a two-state machine, Anonymous or Authenticated. The
// initial state is recovered from the persistent store at construction.
// Every successful mutation of the current user is written through to both
// the "current-session" document and the matching registry entry before the
// call returns, so the two copies can never diverge within a process.
//
// One administrative identity is special: it is synthesized at login from
// hard-coded credentials, never stored in the registry, and not resolvable
// through any registry operation.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/yogendram/career-compass/internal/apperror"
	"github.com/yogendram/career-compass/internal/auth"
	"github.com/yogendram/career-compass/internal/model"
	"github.com/yogendram/career-compass/internal/registry"
	"github.com/yogendram/career-compass/internal/store"
)

// The hard-coded administrative identity. It bypasses the registry entirely
// and is the only account whose password is always checked.
const (
	adminID       = "admin-special-001"
	adminName     = "Yogendra Medarametla"
	adminEmail    = "medarametlayogendra@gmail.com"
	adminPassword = "Sunny=2305"
)

// Manager holds the at-most-one current user and coordinates write-through
// between the registry and the persistent store.
//
// All methods are safe for concurrent use. mu serializes every operation
// that reads or replaces current, so a clone-mutate-swap cycle can never
// interleave with another and lose its write. The manager may call into the
// registry while holding mu; the registry never calls back.
type Manager struct {
	store     *store.Store
	registry  *registry.Registry
	passwords *auth.PasswordService
	logger    *slog.Logger

	mu      sync.Mutex
	current *model.User // nil while anonymous
}

// New restores the prior session from the store, if any.
//
// A restored non-admin session is re-resolved against the registry so the
// current user reflects any administrative edits made since it was
// persisted. If the registry entry is gone, the stale session is cleared
// and the manager starts anonymous.
func New(ctx context.Context, st *store.Store, reg *registry.Registry, passwords *auth.PasswordService, logger *slog.Logger) (*Manager, error) {
	m := &Manager{store: st, registry: reg, passwords: passwords, logger: logger}

	var saved model.User
	ok, err := st.Get(ctx, store.KeySession, &saved)
	if err != nil {
		return nil, fmt.Errorf("session: restoring session: %w", err)
	}
	if !ok {
		return m, nil
	}

	if saved.ID == adminID {
		m.current = &saved
		return m, nil
	}

	fresh, found := reg.Get(saved.ID)
	if !found {
		logger.Warn("clearing stale session for unknown user", slog.String("userID", saved.ID))
		if err := st.Remove(ctx, store.KeySession); err != nil {
			return nil, fmt.Errorf("session: clearing stale session: %w", err)
		}
		return m, nil
	}

	m.current = &fresh
	if err := st.Set(ctx, store.KeySession, fresh); err != nil {
		return nil, fmt.Errorf("session: refreshing session: %w", err)
	}
	return m, nil
}

// Current returns a copy of the logged-in user, or false while anonymous.
func (m *Manager) Current() (model.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return model.User{}, false
	}
	return m.current.Clone(), true
}

// CurrentUserID satisfies auth.SessionChecker.
func (m *Manager) CurrentUserID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return "", false
	}
	return m.current.ID, true
}

// isAdmin reports whether the current user is the synthesized admin, whose
// record must never be written to the registry.
func (m *Manager) isSyntheticAdmin() bool {
	return m.current != nil && m.current.ID == adminID
}

// persistCurrent flushes the current user to the session document and, for
// registry-backed users, to the registry entry with the same id. Callers
// must not return success before this does.
func (m *Manager) persistCurrent(ctx context.Context) error {
	if err := m.store.Set(ctx, store.KeySession, m.current); err != nil {
		return fmt.Errorf("session: persisting session: %w", err)
	}
	if !m.isSyntheticAdmin() {
		if err := m.registry.Put(ctx, *m.current); err != nil {
			return fmt.Errorf("session: writing through to registry: %w", err)
		}
	}
	return nil
}

// Register creates a new unverified student account. The password is
// optional; when given it is stored as a bcrypt hash and checked at login.
// Registration does not log the user in; the account must be verified
// first.
func (m *Manager) Register(ctx context.Context, name, email, password string) (model.User, error) {
	var hash string
	if password != "" {
		var err error
		hash, err = m.passwords.Hash(password)
		if err != nil {
			return model.User{}, fmt.Errorf("session: hashing password: %w", err)
		}
	}
	return m.registry.Register(ctx, name, email, hash)
}

// Login resolves credentials and transitions to Authenticated.
//
// The hard-coded admin requires an exact password match and never touches
// the registry. Everyone else resolves by case-insensitive email, must be
// verified, and is password-checked only when the account has a stored
// hash (accounts registered without one accept any password).
func (m *Manager) Login(ctx context.Context, email, password string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if strings.EqualFold(strings.TrimSpace(email), adminEmail) {
		if password != adminPassword {
			return model.User{}, apperror.InvalidCredentials()
		}
		admin := model.User{
			ID:       adminID,
			Name:     adminName,
			Email:    strings.TrimSpace(email),
			Role:     model.RoleAdmin,
			Verified: true,
		}
		m.current = &admin
		if err := m.store.Set(ctx, store.KeySession, admin); err != nil {
			return model.User{}, fmt.Errorf("session: persisting session: %w", err)
		}
		m.logger.Info("admin logged in", slog.String("userID", adminID))
		return admin.Clone(), nil
	}

	user, found := m.registry.FindByEmail(email)
	if !found {
		return model.User{}, apperror.UserNotFound()
	}
	if !user.Verified {
		return model.User{}, apperror.Unverified()
	}
	if user.PasswordHash != "" {
		if err := m.passwords.Verify(user.PasswordHash, password); err != nil {
			return model.User{}, apperror.InvalidCredentials()
		}
	}

	m.current = &user
	if err := m.store.Set(ctx, store.KeySession, user); err != nil {
		return model.User{}, fmt.Errorf("session: persisting session: %w", err)
	}

	m.logger.Info("user logged in", slog.String("userID", user.ID))
	return user.Clone(), nil
}

// Logout transitions to Anonymous and clears the persisted session. The
// registry is untouched. Logging out while anonymous is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	id := m.current.ID
	m.current = nil
	if err := m.store.Remove(ctx, store.KeySession); err != nil {
		return fmt.Errorf("session: clearing session: %w", err)
	}
	m.logger.Info("user logged out", slog.String("userID", id))
	return nil
}

// UpdateCurrentUser merges the update into the current user and writes
// through. Returns (nil, nil) while anonymous.
func (m *Manager) UpdateCurrentUser(ctx context.Context, upd registry.Update) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, nil
	}

	if upd.Email != nil && !m.isSyntheticAdmin() {
		// Email uniqueness is the registry's invariant; route the change
		// through it so the check happens before anything is persisted.
		updated, err := m.registry.EditUser(ctx, m.current.ID, registry.Update{Email: upd.Email})
		if err != nil {
			return nil, err
		}
		m.current = &updated
		upd.Email = nil
	}

	updated := upd.Apply(*m.current)
	m.current = &updated
	if err := m.persistCurrent(ctx); err != nil {
		return nil, err
	}

	out := updated.Clone()
	return &out, nil
}

// --- Progress & records ledger -------------------------------------------
//
// All ledger operations are scoped variants of UpdateCurrentUser: they are
// no-ops while anonymous, and every one writes through before returning.

// RecordQuizResult appends the result to the quiz history, marks the quiz
// completed, and counts one viewed recommendation. History is append-only;
// prior entries are never touched.
func (m *Manager) RecordQuizResult(ctx context.Context, result model.QuizResult) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, nil
	}

	updated := m.current.Clone()
	if result.Date.IsZero() {
		result.Date = time.Now()
	}
	updated.QuizHistory = append(updated.QuizHistory, result.Clone())
	updated.Progress.QuizCompleted = true
	updated.Progress.RecommendationsViewed++

	m.current = &updated
	if err := m.persistCurrent(ctx); err != nil {
		return nil, err
	}

	out := updated.Clone()
	return &out, nil
}

// BumpCollegesSearched counts one search-affecting interaction.
func (m *Manager) BumpCollegesSearched(ctx context.Context) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, nil
	}

	updated := m.current.Clone()
	updated.Progress.CollegesSearched++

	m.current = &updated
	if err := m.persistCurrent(ctx); err != nil {
		return nil, err
	}

	out := updated.Clone()
	return &out, nil
}

// AddApplication assigns a fresh id and appends the application. Returns
// the new id, or "" while anonymous. xid ids are monotonic, so the list
// stays in insertion order even when sorted by id.
func (m *Manager) AddApplication(ctx context.Context, app model.CollegeApplication) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return "", nil
	}
	if strings.TrimSpace(app.CollegeName) == "" {
		return "", apperror.ValidationFailed("collegeName", "college name is required")
	}
	if app.Status == "" {
		app.Status = model.StatusPlanning
	}

	app.ID = xid.New().String()
	updated := m.current.Clone()
	updated.Applications = append(updated.Applications, app)

	m.current = &updated
	if err := m.persistCurrent(ctx); err != nil {
		return "", err
	}

	return app.ID, nil
}

// UpdateApplication replaces the application with a matching id. Unknown
// ids are a no-op, as is the anonymous state.
func (m *Manager) UpdateApplication(ctx context.Context, app model.CollegeApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}

	updated := m.current.Clone()
	replaced := false
	for i := range updated.Applications {
		if updated.Applications[i].ID == app.ID {
			updated.Applications[i] = app
			replaced = true
			break
		}
	}
	if !replaced {
		return nil
	}

	m.current = &updated
	return m.persistCurrent(ctx)
}

// DeleteApplication removes the application with the given id. Unknown ids
// are a no-op, as is the anonymous state.
func (m *Manager) DeleteApplication(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}

	updated := m.current.Clone()
	idx := -1
	for i := range updated.Applications {
		if updated.Applications[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	updated.Applications = append(updated.Applications[:idx], updated.Applications[idx+1:]...)

	m.current = &updated
	return m.persistCurrent(ctx)
}

// --- Administrative operations -------------------------------------------
//
// These delegate to the registry and keep the current-user copy consistent
// when the affected id is the logged-in user. Refusing to delete the
// session's own user is the HTTP layer's guard, not enforced here.

// AddUser creates a pre-verified account.
func (m *Manager) AddUser(ctx context.Context, u model.User) (model.User, error) {
	return m.registry.AddUser(ctx, u)
}

// EditUser applies the update in the registry and, when the edited id is
// the logged-in user, refreshes the session copy too.
func (m *Manager) EditUser(ctx context.Context, id string, upd registry.Update) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated, err := m.registry.EditUser(ctx, id, upd)
	if err != nil {
		return model.User{}, err
	}

	if m.current != nil && m.current.ID == id {
		m.current = &updated
		if err := m.store.Set(ctx, store.KeySession, updated); err != nil {
			return model.User{}, fmt.Errorf("session: refreshing session: %w", err)
		}
	}

	return updated.Clone(), nil
}

// DeleteUser removes a registry entry. If the deleted id is somehow the
// logged-in user (the HTTP guard should have refused), the session is
// cleared rather than left dangling.
func (m *Manager) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.registry.DeleteUser(ctx, id); err != nil {
		return err
	}

	if m.current != nil && m.current.ID == id {
		m.current = nil
		if err := m.store.Remove(ctx, store.KeySession); err != nil {
			return fmt.Errorf("session: clearing session: %w", err)
		}
	}

	return nil
}

// VerifyUser lifts the login gate on the account.
func (m *Manager) VerifyUser(ctx context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated, err := m.registry.VerifyUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if m.current != nil && m.current.ID == id {
		m.current = &updated
		if err := m.store.Set(ctx, store.KeySession, updated); err != nil {
			return model.User{}, fmt.Errorf("session: refreshing session: %w", err)
		}
	}

	return updated.Clone(), nil
}

// ListUsers returns every registry entry, for the admin dashboard.
func (m *Manager) ListUsers() []model.User {
	return m.registry.List()
}
