package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/yogendram/career-compass/internal/apperror"
	"github.com/yogendram/career-compass/internal/model"
	"github.com/yogendram/career-compass/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:", testLogger())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	r, err := New(context.Background(), st, testLogger())
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return r, st
}

func TestRegister_Defaults(t *testing.T) {
	r, _ := newTestRegistry(t)

	u, err := r.Register(context.Background(), "Asha Rao", "asha@example.com", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if u.ID == "" {
		t.Error("Register() assigned no id")
	}
	if u.Role != model.RoleStudent {
		t.Errorf("Role = %q, want %q", u.Role, model.RoleStudent)
	}
	if u.Verified {
		t.Error("new accounts must start unverified")
	}
	if u.LearningStyle != model.StyleVisual {
		t.Errorf("LearningStyle = %q, want %q", u.LearningStyle, model.StyleVisual)
	}
	if !u.NotificationSettings.EmailOnNewRecommendation || !u.NotificationSettings.EmailOnApplicationDeadline {
		t.Error("notification settings should default to enabled")
	}
	if u.Applications == nil || u.QuizHistory == nil {
		t.Error("histories should be empty non-nil slices")
	}
	if u.Progress.QuizCompleted || u.Progress.CollegesSearched != 0 || u.Progress.RecommendationsViewed != 0 {
		t.Errorf("Progress should start zeroed, got %+v", u.Progress)
	}
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Register(ctx, "Asha Rao", "asha@example.com", ""); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := r.Register(ctx, "Imposter", "ASHA@Example.COM", "")
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Fatalf("Register() with same email (different case) error = %v, want ErrDuplicateEmail", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Register(ctx, "  ", "a@b.com", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank name: error = %v, want ErrValidation", err)
	}
	if _, err := r.Register(ctx, "Asha", "   ", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank email: error = %v, want ErrValidation", err)
	}
}

func TestAddUser_AdminCreateIsVerified(t *testing.T) {
	r, _ := newTestRegistry(t)

	u, err := r.AddUser(context.Background(), model.User{
		Name:  "Counselor Carla",
		Email: "carla@example.com",
		Role:  model.RoleCounselor,
	})
	if err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	if !u.Verified {
		t.Error("admin-created accounts should start verified")
	}
	if u.Role != model.RoleCounselor {
		t.Errorf("Role = %q, want %q", u.Role, model.RoleCounselor)
	}
}

func TestEditUser_EmailUniquenessRechecked(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	a, err := r.Register(ctx, "Asha", "asha@example.com", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := r.Register(ctx, "Bala", "bala@example.com", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	newEmail := "BALA@example.com"
	_, err = r.EditUser(ctx, a.ID, Update{Email: &newEmail})
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Fatalf("EditUser() to taken email error = %v, want ErrDuplicateEmail", err)
	}

	// Re-saving your own email under different casing is allowed.
	own := "ASHA@example.com"
	u, err := r.EditUser(ctx, a.ID, Update{Email: &own})
	if err != nil {
		t.Fatalf("EditUser() to own email error = %v", err)
	}
	if u.Email != "ASHA@example.com" {
		t.Errorf("stored email = %q, want the casing as typed", u.Email)
	}
}

func TestEditUser_PartialUpdate(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	u, err := r.Register(ctx, "Asha", "asha@example.com", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	goals := "Get into a good engineering program"
	interests := []string{"coding", "music"}
	got, err := r.EditUser(ctx, u.ID, Update{
		AcademicGoals: &goals,
		Interests:     &interests,
	})
	if err != nil {
		t.Fatalf("EditUser() error = %v", err)
	}

	if got.AcademicGoals != goals {
		t.Errorf("AcademicGoals = %q, want %q", got.AcademicGoals, goals)
	}
	if len(got.Interests) != 2 {
		t.Errorf("Interests = %v", got.Interests)
	}
	// Untouched fields survive.
	if got.Name != "Asha" || got.Email != "asha@example.com" {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestDeleteUser(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	u, err := r.Register(ctx, "Asha", "asha@example.com", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := r.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, ok := r.Get(u.ID); ok {
		t.Error("Get() still finds a deleted user")
	}

	if err := r.DeleteUser(ctx, u.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteUser() of unknown id error = %v, want ErrNotFound", err)
	}
}

func TestVerifyUser(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	u, err := r.Register(ctx, "Asha", "asha@example.com", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := r.VerifyUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("VerifyUser() error = %v", err)
	}
	if !got.Verified {
		t.Error("VerifyUser() did not set Verified")
	}
}

func TestPut_IgnoresUnknownID(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if err := r.Put(ctx, model.User{ID: "admin-special-001", Name: "Nobody"}); err != nil {
		t.Fatalf("Put() of unknown id error = %v", err)
	}
	if len(r.List()) != 0 {
		t.Error("Put() of an unknown id must not insert a new entry")
	}
}

func TestFindByEmail_CaseInsensitive(t *testing.T) {
	r, _ := newTestRegistry(t)

	u, err := r.Register(context.Background(), "Asha", "Asha@Example.com", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := r.FindByEmail("asha@EXAMPLE.com")
	if !ok {
		t.Fatal("FindByEmail() missed a case-variant email")
	}
	if got.ID != u.ID {
		t.Errorf("FindByEmail() id = %q, want %q", got.ID, u.ID)
	}
}

func TestNew_ReloadsPersistedUsers(t *testing.T) {
	r, st := newTestRegistry(t)
	ctx := context.Background()

	u, err := r.Register(ctx, "Asha", "asha@example.com", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// A second registry over the same store sees the write-through.
	r2, err := New(ctx, st, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, ok := r2.Get(u.ID)
	if !ok {
		t.Fatal("reloaded registry is missing the registered user")
	}
	if got.Email != "asha@example.com" {
		t.Errorf("reloaded email = %q", got.Email)
	}
}

func TestRegister_Concurrent(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Register(ctx, "User", fmt.Sprintf("user%d@example.com", i), "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	users := r.List()
	if len(users) != n {
		t.Fatalf("len(List()) = %d, want %d", len(users), n)
	}
	seen := make(map[string]bool, n)
	for _, u := range users {
		if seen[u.Email] {
			t.Errorf("duplicate entry for %q", u.Email)
		}
		seen[u.Email] = true
	}
}
