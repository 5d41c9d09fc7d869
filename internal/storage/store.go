// Package storage provides abstractions for session storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/receiptsplit/internal/session"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is a stored snapshot of a split session.
type Session struct {
	// ID is the session ID (UUID format). It equals State.SessionID.
	ID string

	// State is the full session snapshot.
	State session.State

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64

	// ExpiresAt is the Unix timestamp after which the session is gone.
	ExpiresAt int64
}

// Expired reports whether the session has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt <= now.Unix()
}

// Store defines the interface for session storage operations.
// This abstraction allows swapping storage backends without changing the service layer.
// Sessions live only until they expire; nothing is kept beyond that.
type Store interface {
	// CreateSession persists a new session.
	// ID and CreatedAt are populated by the store when empty.
	CreateSession(ctx context.Context, s *Session) error

	// GetSession retrieves a live session by its ID.
	// Returns ErrNotFound if it does not exist or has expired.
	GetSession(ctx context.Context, id string) (*Session, error)

	// UpdateSession replaces the stored snapshot and expiry of a live session.
	// Returns ErrNotFound if it does not exist or has expired.
	UpdateSession(ctx context.Context, s *Session) error

	// DeleteExpired removes every session expired at now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
