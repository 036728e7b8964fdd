// Package registry owns the set of all known user records.
//
// The registry is the authority for the email-uniqueness invariant: no two
// entries may share an email under case-insensitive comparison, at any time.
// Every mutation is written through to the persistent store before it
// returns, so the in-memory list and the "user-registry" document never
// diverge.
//
// The registry knows nothing about the current session. Keeping the
// logged-in copy consistent with the registry entry is the session
// manager's job.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rs/xid"

	"github.com/yogendram/career-compass/internal/apperror"
	"github.com/yogendram/career-compass/internal/model"
	"github.com/yogendram/career-compass/internal/store"
)

// Registry holds the ordered list of user records, mirrored in the store
// under store.KeyRegistry.
//
// All methods are safe for concurrent use; mu guards users and serializes
// read-modify-write cycles so the uniqueness check and the append it guards
// cannot interleave.
type Registry struct {
	store  *store.Store
	logger *slog.Logger

	mu    sync.Mutex
	users []model.User
}

// New loads the registry from the store. A missing (or malformed, see
// store.Get) document yields an empty registry.
func New(ctx context.Context, st *store.Store, logger *slog.Logger) (*Registry, error) {
	r := &Registry{store: st, logger: logger}

	var users []model.User
	ok, err := st.Get(ctx, store.KeyRegistry, &users)
	if err != nil {
		return nil, fmt.Errorf("registry: loading users: %w", err)
	}
	if ok {
		r.users = users
	}

	return r, nil
}

// normalizeEmail is the comparison form used for the uniqueness invariant.
// Stored emails keep the casing the user typed.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *Registry) persist(ctx context.Context) error {
	if r.users == nil {
		r.users = []model.User{}
	}
	if err := r.store.Set(ctx, store.KeyRegistry, r.users); err != nil {
		return fmt.Errorf("registry: persisting users: %w", err)
	}
	return nil
}

// emailTaken reports whether any entry other than excludeID already owns
// the email.
func (r *Registry) emailTaken(email, excludeID string) bool {
	norm := normalizeEmail(email)
	for _, u := range r.users {
		if u.ID != excludeID && normalizeEmail(u.Email) == norm {
			return true
		}
	}
	return false
}

// newStudent builds a user with registration defaults. Histories start as
// empty (non-nil) slices so they serialize as [] and append cleanly.
func newStudent(name, email string) model.User {
	return model.User{
		ID:            xid.New().String(),
		Name:          name,
		Email:         email,
		Role:          model.RoleStudent,
		Verified:      false,
		AcademicGoals: "",
		LearningStyle: model.StyleVisual,
		NotificationSettings: model.NotificationSettings{
			EmailOnNewRecommendation:   true,
			EmailOnApplicationDeadline: true,
		},
		Progress:     model.Progress{},
		Applications: []model.CollegeApplication{},
		QuizHistory:  []model.QuizResult{},
	}
}

// Register creates a new unverified student account.
//
// passwordHash may be empty; when set it is a bcrypt hash produced by the
// caller. Fails with apperror.ErrDuplicateEmail when another entry owns the
// email case-insensitively.
func (r *Registry) Register(ctx context.Context, name, email, passwordHash string) (model.User, error) {
	if strings.TrimSpace(name) == "" {
		return model.User{}, apperror.ValidationFailed("name", "name is required")
	}
	if normalizeEmail(email) == "" {
		return model.User{}, apperror.ValidationFailed("email", "email is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(email, "") {
		return model.User{}, apperror.DuplicateEmail(email)
	}

	user := newStudent(strings.TrimSpace(name), strings.TrimSpace(email))
	user.PasswordHash = passwordHash

	r.users = append(r.users, user)
	if err := r.persist(ctx); err != nil {
		return model.User{}, err
	}

	r.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", normalizeEmail(user.Email)),
	)
	return user.Clone(), nil
}

// AddUser is the administrative create. Unlike Register, the account starts
// verified, and role/profile fields may be supplied by the caller. The id,
// progress, and histories are always assigned here.
func (r *Registry) AddUser(ctx context.Context, u model.User) (model.User, error) {
	if strings.TrimSpace(u.Name) == "" {
		return model.User{}, apperror.ValidationFailed("name", "name is required")
	}
	if normalizeEmail(u.Email) == "" {
		return model.User{}, apperror.ValidationFailed("email", "email is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(u.Email, "") {
		return model.User{}, apperror.DuplicateEmail(u.Email)
	}

	user := newStudent(strings.TrimSpace(u.Name), strings.TrimSpace(u.Email))
	user.Verified = true
	if u.Role != "" {
		user.Role = u.Role
	}
	user.Avatar = u.Avatar
	user.AcademicLevel = u.AcademicLevel
	if u.Interests != nil {
		user.Interests = append([]string(nil), u.Interests...)
	}
	if u.AcademicGoals != "" {
		user.AcademicGoals = u.AcademicGoals
	}
	if u.LearningStyle != "" {
		user.LearningStyle = u.LearningStyle
	}

	r.users = append(r.users, user)
	if err := r.persist(ctx); err != nil {
		return model.User{}, err
	}

	r.logger.Info("user added by admin", slog.String("userID", user.ID))
	return user.Clone(), nil
}

// Update names the user fields an edit may change. Nil fields are left
// untouched; the id is immutable by construction.
type Update struct {
	Name                 *string
	Email                *string
	Role                 *model.Role
	Verified             *bool
	Avatar               *string
	AcademicLevel        *model.AcademicLevel
	Interests            *[]string
	AcademicGoals        *string
	LearningStyle        *model.LearningStyle
	NotificationSettings *model.NotificationSettings
}

// Apply merges the update into a copy of u and returns it.
func (upd Update) Apply(u model.User) model.User {
	out := u.Clone()
	if upd.Name != nil {
		out.Name = *upd.Name
	}
	if upd.Email != nil {
		out.Email = strings.TrimSpace(*upd.Email)
	}
	if upd.Role != nil {
		out.Role = *upd.Role
	}
	if upd.Verified != nil {
		out.Verified = *upd.Verified
	}
	if upd.Avatar != nil {
		out.Avatar = *upd.Avatar
	}
	if upd.AcademicLevel != nil {
		out.AcademicLevel = *upd.AcademicLevel
	}
	if upd.Interests != nil {
		out.Interests = append([]string(nil), (*upd.Interests)...)
	}
	if upd.AcademicGoals != nil {
		out.AcademicGoals = *upd.AcademicGoals
	}
	if upd.LearningStyle != nil {
		out.LearningStyle = *upd.LearningStyle
	}
	if upd.NotificationSettings != nil {
		out.NotificationSettings = *upd.NotificationSettings
	}
	return out
}

// EditUser applies upd to the entry with the given id. An email change is
// re-checked against the uniqueness invariant.
func (r *Registry) EditUser(ctx context.Context, id string, upd Update) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return model.User{}, apperror.NotFound("user", id)
	}

	if upd.Email != nil && r.emailTaken(*upd.Email, id) {
		return model.User{}, apperror.DuplicateEmail(*upd.Email)
	}

	updated := upd.Apply(r.users[idx])
	r.users[idx] = updated
	if err := r.persist(ctx); err != nil {
		return model.User{}, err
	}

	return updated.Clone(), nil
}

// DeleteUser removes the entry with the given id. Deleting an unknown id
// fails with not-found. The caller is responsible for refusing to delete
// the active session's own user; the registry stays pure.
func (r *Registry) DeleteUser(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return apperror.NotFound("user", id)
	}

	r.users = append(r.users[:idx], r.users[idx+1:]...)
	if err := r.persist(ctx); err != nil {
		return err
	}

	r.logger.Info("user deleted", slog.String("userID", id))
	return nil
}

// VerifyUser marks the account as email-verified, lifting the login gate.
func (r *Registry) VerifyUser(ctx context.Context, id string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return model.User{}, apperror.NotFound("user", id)
	}

	r.users[idx].Verified = true
	if err := r.persist(ctx); err != nil {
		return model.User{}, err
	}

	return r.users[idx].Clone(), nil
}

// Put replaces the entry with u.ID wholesale. Used by the session manager's
// write-through; a user unknown to the registry (the synthesized admin) is
// ignored rather than inserted.
func (r *Registry) Put(ctx context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(u.ID)
	if idx < 0 {
		return nil
	}
	r.users[idx] = u.Clone()
	return r.persist(ctx)
}

// Get returns a copy of the entry with the given id.
func (r *Registry) Get(id string) (model.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return model.User{}, false
	}
	return r.users[idx].Clone(), true
}

// FindByEmail resolves an entry by case-insensitive email.
func (r *Registry) FindByEmail(email string) (model.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	norm := normalizeEmail(email)
	for i := range r.users {
		if normalizeEmail(r.users[i].Email) == norm {
			return r.users[i].Clone(), true
		}
	}
	return model.User{}, false
}

// List returns copies of every entry, in registration order.
func (r *Registry) List() []model.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.User, len(r.users))
	for i := range r.users {
		out[i] = r.users[i].Clone()
	}
	return out
}

func (r *Registry) indexOf(id string) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}
