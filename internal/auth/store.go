package auth

import (
	"context"
	"time"
)

// UserStore is the user-record collaborator. Postgres implements it in
// this package; tests substitute in-memory fakes.
type UserStore interface {
	// GetByUsername returns nil without error when no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)
	// Insert reports false when the username is already taken.
	Insert(ctx context.Context, user *User) (bool, error)
	// Update applies a partial mutation; reports false when the user is
	// missing.
	Update(ctx context.Context, username string, update UserUpdate) (bool, error)
	// List returns all users, newest first.
	List(ctx context.Context) ([]User, error)
	// Delete removes the user and, through the schema's cascade, all of
	// their sessions. Reports false when the user is missing.
	Delete(ctx context.Context, username string) (bool, error)
	// RecordFailedLogin atomically increments the failure counter and,
	// when the threshold is reached, sets the lock. Returns the lock
	// deadline when the account is (or already was) locked, nil otherwise.
	RecordFailedLogin(ctx context.Context, username string, threshold int, cooldown time.Duration, now time.Time) (*time.Time, error)
	// ClearLockState resets failed_attempts to zero and nulls the lock.
	// Idempotent.
	ClearLockState(ctx context.Context, username string) error
}

// SessionStore issues and resolves opaque bearer tokens.
type SessionStore interface {
	// Create mints a fresh token valid for the given lifetime.
	Create(ctx context.Context, username string, lifetime time.Duration) (string, error)
	// Get returns nil without error for unknown tokens, and deletes and
	// returns nil for expired ones.
	Get(ctx context.Context, token string) (*Session, error)
	// Invalidate removes the session if present. Idempotent.
	Invalidate(ctx context.Context, token string) error
}
