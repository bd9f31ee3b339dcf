package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// sessionTokenBytes gives 256 bits of entropy per token.
const sessionTokenBytes = 32

const uniqueViolation = "23505"

// SessionRepository is the Postgres-backed SessionStore. Expired rows
// are deleted lazily on lookup; there is no background reaper.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, username string, lifetime time.Duration) (string, error) {
	// A token collision is astronomically unlikely, but the unique
	// constraint makes it a retry instead of a hijack.
	for attempt := 0; attempt < 3; attempt++ {
		token, err := newSessionToken()
		if err != nil {
			return "", err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generate session id: %w", err)
		}

		now := time.Now().UTC()
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO sessions (id, token, username, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5)
		`, id.String(), token, username, now, now.Add(lifetime))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				continue
			}
			return "", fmt.Errorf("insert session: %w", err)
		}

		return token, nil
	}

	return "", errors.New("session token collision persisted across retries")
}

func (r *SessionRepository) Get(ctx context.Context, token string) (*Session, error) {
	var session Session
	err := r.db.QueryRowContext(ctx, `
		SELECT token, username, created_at, expires_at
		FROM sessions
		WHERE token = $1
	`, token).Scan(&session.Token, &session.Username, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	if !time.Now().UTC().Before(session.ExpiresAt) {
		if _, err := r.db.ExecContext(ctx, `
			DELETE FROM sessions
			WHERE token = $1
		`, token); err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, nil
	}

	return &session, nil
}

func (r *SessionRepository) Invalidate(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE token = $1
	`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
