package auth

import (
	"context"
	"fmt"
)

// DeleteExpired removes expired session rows in bounded batches. The
// lazy sweep on Get already keeps reads correct; this keeps the table
// from accumulating rows for tokens nobody ever presents again.
func (r *SessionRepository) DeleteExpired(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	res, err := r.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT token
			FROM sessions
			WHERE expires_at < NOW()
			ORDER BY expires_at ASC
			LIMIT $1
		)
		DELETE FROM sessions s
		USING stale
		WHERE s.token = stale.token
	`, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired sessions rows affected: %w", err)
	}

	return affected, nil
}

// ReleaseExpiredLocks clears locks whose cooldown has passed, together
// with their failure counters. Login does this lazily per account; the
// sweep tidies accounts that never attempt to log in again.
func (r *Repository) ReleaseExpiredLocks(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET failed_attempts = 0, locked_until = NULL
		WHERE locked_until IS NOT NULL AND locked_until < NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("release expired locks: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("released locks rows affected: %w", err)
	}

	return affected, nil
}
