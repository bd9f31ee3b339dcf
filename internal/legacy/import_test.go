package legacy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashboard-serverless/internal/auth"
)

type recordingStore struct {
	inserted map[string]string
}

func newRecordingStore(existing ...string) *recordingStore {
	store := &recordingStore{inserted: make(map[string]string)}
	for _, username := range existing {
		store.inserted[username] = "preexisting"
	}
	return store
}

func (s *recordingStore) Insert(ctx context.Context, user *auth.User) (bool, error) {
	if _, ok := s.inserted[user.Username]; ok {
		return false, nil
	}
	s.inserted[user.Username] = user.PasswordHash
	return true, nil
}

func (s *recordingStore) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return nil, nil
}

func (s *recordingStore) Update(ctx context.Context, username string, update auth.UserUpdate) (bool, error) {
	return false, nil
}

func (s *recordingStore) List(ctx context.Context) ([]auth.User, error) { return nil, nil }

func (s *recordingStore) Delete(ctx context.Context, username string) (bool, error) {
	return false, nil
}

func (s *recordingStore) RecordFailedLogin(ctx context.Context, username string, threshold int, cooldown time.Duration, now time.Time) (*time.Time, error) {
	return nil, nil
}

func (s *recordingStore) ClearLockState(ctx context.Context, username string) error { return nil }

func writeUsersFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportUsersFile(t *testing.T) {
	path := writeUsersFile(t, `
alice,$2b$12$abcdefghijklmnopqrstuv
bob,$2b$12$wxyzabcdefghijklmnopqr

charlie,$2b$12$duplicatehashvalue123
no-comma-line
x,too-short-username
dave,
`)

	store := newRecordingStore("charlie")
	report, err := ImportUsersFile(context.Background(), path, store)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 3, report.Invalid)

	assert.Equal(t, "$2b$12$abcdefghijklmnopqrstuv", store.inserted["alice"])
	assert.Equal(t, "preexisting", store.inserted["charlie"])
	assert.NotContains(t, store.inserted, "dave")
}

func TestImportUsersFile_MissingFile(t *testing.T) {
	store := newRecordingStore()
	_, err := ImportUsersFile(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), store)
	assert.Error(t, err)
}
