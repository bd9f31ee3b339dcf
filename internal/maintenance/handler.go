// Package maintenance hosts the cron-triggered cleanup endpoint. The
// deployment platform calls it on a schedule with the shared cron
// secret; it is hidden entirely when no secret is configured.
package maintenance

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"dashboard-serverless/internal/observability"
)

type SessionPurger interface {
	DeleteExpired(ctx context.Context, batchSize int) (int64, error)
}

type LockReleaser interface {
	ReleaseExpiredLocks(ctx context.Context) (int64, error)
}

type CleanupHandler struct {
	sessions   SessionPurger
	users      LockReleaser
	logger     *observability.Logger
	cronSecret string
	batchSize  int
}

func NewCleanupHandler(
	sessions SessionPurger,
	users LockReleaser,
	logger *observability.Logger,
	cronSecret string,
	batchSize int,
) *CleanupHandler {
	return &CleanupHandler{
		sessions:   sessions,
		users:      users,
		logger:     logger,
		cronSecret: strings.TrimSpace(cronSecret),
		batchSize:  batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) != h.cronSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	deletedSessions, err := h.sessions.DeleteExpired(r.Context(), h.batchSize)
	if err != nil {
		h.logger.Error("session_cleanup_failed", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}

	releasedLocks, err := h.users.ReleaseExpiredLocks(r.Context())
	if err != nil {
		h.logger.Error("lock_cleanup_failed", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}

	h.logger.Info("auth_cleanup_completed", map[string]any{
		"deleted_sessions": deletedSessions,
		"released_locks":   releasedLocks,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"deleted_sessions": deletedSessions,
		"released_locks":   releasedLocks,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
