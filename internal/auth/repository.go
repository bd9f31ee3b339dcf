package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the Postgres-backed UserStore.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	var lockedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, failed_attempts, locked_until, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&user.FailedAttempts, &lockedUntil, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username: %w", err)
	}
	if lockedUntil.Valid {
		value := lockedUntil.Time.UTC()
		user.LockedUntil = &value
	}
	if normalized, ok := ParseRole(string(user.Role)); ok {
		user.Role = normalized
	}

	return &user, nil
}

func (r *Repository) Insert(ctx context.Context, user *User) (bool, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("generate user id: %w", err)
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, role, failed_attempts, locked_until, created_at)
		VALUES ($1, $2, $3, $4, 0, NULL, $5)
		ON CONFLICT (username) DO NOTHING
	`, id.String(), user.Username, user.PasswordHash, string(user.Role), now)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert user rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	user.ID = id.String()
	user.FailedAttempts = 0
	user.LockedUntil = nil
	user.CreatedAt = now
	return true, nil
}

func (r *Repository) Update(ctx context.Context, username string, update UserUpdate) (bool, error) {
	assignments := make([]string, 0, 4)
	params := []any{username}

	next := func() int { return len(params) + 1 }
	if update.PasswordHash != nil {
		assignments = append(assignments, fmt.Sprintf("password_hash = $%d", next()))
		params = append(params, *update.PasswordHash)
	}
	if update.Role != nil {
		assignments = append(assignments, fmt.Sprintf("role = $%d", next()))
		params = append(params, string(*update.Role))
	}
	if update.FailedAttempts != nil {
		assignments = append(assignments, fmt.Sprintf("failed_attempts = $%d", next()))
		params = append(params, *update.FailedAttempts)
	}
	switch {
	case update.LockedUntil.clear:
		assignments = append(assignments, "locked_until = NULL")
	case update.LockedUntil.set:
		assignments = append(assignments, fmt.Sprintf("locked_until = $%d", next()))
		params = append(params, update.LockedUntil.until)
	}

	if len(assignments) == 0 {
		return false, nil
	}

	query := "UPDATE users SET "
	for i, assignment := range assignments {
		if i > 0 {
			query += ", "
		}
		query += assignment
	}
	query += " WHERE username = $1"

	res, err := r.db.ExecContext(ctx, query, params...)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update user rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, role, failed_attempts, locked_until, created_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var user User
		var lockedUntil sql.NullTime
		if err := rows.Scan(&user.ID, &user.Username, &user.Role,
			&user.FailedAttempts, &lockedUntil, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if lockedUntil.Valid {
			value := lockedUntil.Time.UTC()
			user.LockedUntil = &value
		}
		if normalized, ok := ParseRole(string(user.Role)); ok {
			user.Role = normalized
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (r *Repository) Delete(ctx context.Context, username string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM users
		WHERE username = $1
	`, username)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user rows affected: %w", err)
	}

	return affected > 0, nil
}

// RecordFailedLogin runs the lockout failure transition in one
// transaction. The row lock serializes concurrent attempts for the same
// username, so two parallel wrong passwords cannot under-count or race
// past the threshold.
func (r *Repository) RecordFailedLogin(ctx context.Context, username string, threshold int, cooldown time.Duration, now time.Time) (*time.Time, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin failed login tx: %w", err)
	}
	defer tx.Rollback()

	var failed int
	var lockedUntil sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT failed_attempts, locked_until
		FROM users
		WHERE username = $1
		FOR UPDATE
	`, username).Scan(&failed, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Account disappeared between lookup and transition.
			if err := tx.Commit(); err != nil {
				return nil, fmt.Errorf("commit failed login tx: %w", err)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("lock user row: %w", err)
	}

	if lockedUntil.Valid && now.Before(lockedUntil.Time) {
		// Already locked by a concurrent attempt. The counter stays put.
		until := lockedUntil.Time.UTC()
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit existing lock tx: %w", err)
		}
		return &until, nil
	}

	if lockedUntil.Valid {
		// Expired lock encountered mid-transition: the cooldown already
		// bought the account a clean slate.
		failed = 0
	}

	failed++
	var nextLock *time.Time
	var nextLockValue any
	if failed >= threshold {
		until := now.UTC().Add(cooldown)
		nextLock = &until
		nextLockValue = until
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET failed_attempts = $2, locked_until = $3
		WHERE username = $1
	`, username, failed, nextLockValue)
	if err != nil {
		return nil, fmt.Errorf("record failed login: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit failed login tx: %w", err)
	}

	return nextLock, nil
}

func (r *Repository) ClearLockState(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET failed_attempts = 0, locked_until = NULL
		WHERE username = $1
	`, username)
	if err != nil {
		return fmt.Errorf("clear lock state: %w", err)
	}

	return nil
}
