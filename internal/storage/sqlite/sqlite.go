// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/receiptsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers; SQLite would otherwise return SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession persists a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *storage.Session) error {
	// Generate IDs if not set
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.CreatedAt == 0 {
		sess.CreatedAt = s.now().Unix()
	}
	sess.UpdatedAt = sess.CreatedAt
	sess.State.SessionID = sess.ID

	state, err := json.Marshal(sess.State)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, state, phase, created_at, updated_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)",
		sess.ID, string(state), string(sess.State.Phase), sess.CreatedAt, sess.UpdatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a live session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*storage.Session, error) {
	sess := &storage.Session{}
	var state string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, state, created_at, updated_at, expires_at FROM sessions WHERE id = ? AND expires_at > ?",
		id, s.now().Unix(),
	).Scan(&sess.ID, &state, &sess.CreatedAt, &sess.UpdatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := json.Unmarshal([]byte(state), &sess.State); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	return sess, nil
}

// UpdateSession replaces the snapshot of a live session.
func (s *SQLiteStore) UpdateSession(ctx context.Context, sess *storage.Session) error {
	state, err := json.Marshal(sess.State)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	now := s.now().Unix()
	result, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET state = ?, phase = ?, updated_at = ?, expires_at = ? WHERE id = ? AND expires_at > ?",
		string(state), string(sess.State.Phase), now, sess.ExpiresAt, sess.ID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, sess.ID)
	}
	sess.UpdatedAt = now
	return nil
}

// DeleteExpired removes sessions that expired at or before now.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return n, nil
}
