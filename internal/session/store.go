// Package session persists the bearer token obtained at login. Storage is a
// small SQLite database keyed by a browser session ID, so an app restart or
// page reload keeps partners logged in. The token's presence is the only
// authentication signal; there is no expiry or refresh handling.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a session ID has no stored token.
var ErrNotFound = errors.New("session not found")

type Store struct {
	db *sql.DB
}

// Open creates or opens the session database at dbPath and applies pending
// migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create session db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping session database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Login stores the token under a fresh session ID and returns the ID for
// the browser cookie.
func (s *Store) Login(ctx context.Context, token string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, created_at) VALUES (?, ?, ?)`,
		id, token, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	slog.InfoContext(ctx, "Session created", "session_id", id)
	return id, nil
}

// Token returns the bearer token for a session ID, or ErrNotFound.
func (s *Store) Token(ctx context.Context, id string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM sessions WHERE id = ?`, id).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query session: %w", err)
	}
	return token, nil
}

// Logout removes the session. Removing an unknown ID is not an error.
func (s *Store) Logout(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	slog.InfoContext(ctx, "Session removed", "session_id", id)
	return nil
}
