// Package store implements the persistent store adapter: a durable mapping
// from string keys to JSON documents, backed by SQLite.
//
// This is the only package with direct access to durable storage. The rest
// of the application addresses it through three fixed keys: KeySession (the
// current user snapshot), KeyRegistry (the ordered list of all users), and
// KeyQuizBank (the editable quiz question list).
//
// The driver is modernc.org/sqlite, a pure Go translation of SQLite, so no
// C compiler is needed and ":memory:" databases work in tests.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Fixed document keys. These are the system's entire durable surface.
const (
	KeySession  = "current-session"
	KeyRegistry = "user-registry"
	KeyQuizBank = "quiz-questions"
)

// Store is a key→document table over a SQLite file.
//
// Access is single-process and effectively single-writer; SQLite's WAL mode
// plus the synchronous write-through in the service layer is all the
// concurrency control required.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" in tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: pinging database: %w", err)
	}

	// WAL allows reads concurrent with the write-through flushes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: setting WAL mode: %w", err)
	}

	s := &Store{conn: conn, logger: logger}

	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying connection pool, flushing the WAL.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

// Get loads the document stored under key into out (a pointer). It returns
// false when the key is absent.
//
// A stored document that no longer parses is treated as absent: it is
// logged, deleted, and (false, nil) is returned. Get never fails on
// malformed content, only on I/O errors.
func (s *Store) Get(ctx context.Context, key string, out any) (bool, error) {
	var raw string
	err := s.conn.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE key = ?`, key,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: reading %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("discarding malformed stored document",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		if err := s.Remove(ctx, key); err != nil {
			return false, err
		}
		return false, nil
	}

	return true, nil
}

// Set serializes doc as JSON and stores it under key, replacing any
// previous document. The write is durable when Set returns.
func (s *Store) Set(ctx context.Context, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encoding %q: %w", key, err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO documents (key, doc) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET doc = excluded.doc`,
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("store: writing %q: %w", key, err)
	}
	return nil
}

// Remove deletes the document under key. Removing an absent key is not an
// error.
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("store: removing %q: %w", key, err)
	}
	return nil
}
