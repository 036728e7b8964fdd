package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(":memory:", logger)
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGet_MissingKey(t *testing.T) {
	s := newTestStore(t)

	var out testDoc
	found, err := s.Get(context.Background(), "no-such-key", &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatal("Get() found = true for a key that was never set")
	}
}

func TestSetGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := testDoc{Name: "asha", Count: 3}
	if err := s.Set(ctx, "doc-1", in); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var out testDoc
	found, err := s.Get(ctx, "doc-1", &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false after Set")
	}
	if out != in {
		t.Errorf("Get() = %+v, want %+v", out, in)
	}
}

func TestSet_ReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "doc-1", testDoc{Name: "old"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, "doc-1", testDoc{Name: "new", Count: 7}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var out testDoc
	if _, err := s.Get(ctx, "doc-1", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.Name != "new" || out.Count != 7 {
		t.Errorf("Get() after overwrite = %+v", out)
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "doc-1", testDoc{Name: "x"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Remove(ctx, "doc-1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	var out testDoc
	found, err := s.Get(ctx, "doc-1", &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatal("Get() found = true after Remove")
	}

	// Removing again is fine.
	if err := s.Remove(ctx, "doc-1"); err != nil {
		t.Fatalf("Remove() of absent key: %v", err)
	}
}

func TestGet_MalformedDocumentDiscarded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Corrupt document planted directly, bypassing Set.
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO documents (key, doc) VALUES (?, ?)`,
		"corrupt", `{"name": truncated`,
	)
	if err != nil {
		t.Fatalf("planting corrupt doc: %v", err)
	}

	var out testDoc
	found, err := s.Get(ctx, "corrupt", &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatal("Get() found = true for a malformed document")
	}

	// The corrupt row must be gone.
	var n int
	if err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE key = ?`, "corrupt",
	).Scan(&n); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if n != 0 {
		t.Errorf("corrupt document still present after Get, rows = %d", n)
	}
}
