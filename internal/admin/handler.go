// Package admin is the user-administration surface of the dashboard:
// listing accounts, changing roles, manual lock/unlock, and deletion.
// Every route expects the session middleware plus the admin guard
// upstream.
package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"dashboard-serverless/internal/auth"
)

const maxJSONBodyBytes = 1 << 20

const defaultManualLock = 24 * time.Hour

type Handler struct {
	users auth.UserStore
}

func NewHandler(users auth.UserStore) *Handler {
	return &Handler{users: users}
}

type userView struct {
	auth.User
	Locked bool `json:"locked"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type lockRequest struct {
	Hours int `json:"hours"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	now := time.Now().UTC()
	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, userView{User: user, Locked: user.Locked(now)})
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	username, ok := pathUsername(w, r)
	if !ok {
		return
	}

	var body roleRequest
	if !decodeBody(w, r, &body) {
		return
	}

	role, ok := auth.ParseRole(strings.TrimSpace(body.Role))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	updated, err := h.users.Update(r.Context(), username, auth.UserUpdate{Role: &role})
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"username": username, "role": string(role)})
}

// Lock places a manual lock on the account. Unlike the lockout policy it
// leaves failed_attempts untouched, and an admin cannot lock themselves
// out.
func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	username, ok := pathUsername(w, r)
	if !ok {
		return
	}

	if identity, ok := auth.IdentityFrom(r.Context()); ok && identity.Username == username {
		writeError(w, http.StatusBadRequest, "cannot lock your own account")
		return
	}

	var body lockRequest
	if !decodeBody(w, r, &body) {
		return
	}

	duration := defaultManualLock
	if body.Hours > 0 {
		duration = time.Duration(body.Hours) * time.Hour
	}

	until := time.Now().UTC().Add(duration)
	updated, err := h.users.Update(r.Context(), username, auth.UserUpdate{
		LockedUntil: auth.SetLock(until),
	})
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to lock user")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"username": username, "locked_until": until})
}

func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	username, ok := pathUsername(w, r)
	if !ok {
		return
	}

	zero := 0
	updated, err := h.users.Update(r.Context(), username, auth.UserUpdate{
		FailedAttempts: &zero,
		LockedUntil:    auth.ClearLock(),
	})
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to unlock user")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"username": username})
}

// DeleteUser removes the account. The schema cascades the delete to the
// user's sessions, so a deleted user cannot keep an authenticated
// session alive.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username, ok := pathUsername(w, r)
	if !ok {
		return
	}

	if identity, ok := auth.IdentityFrom(r.Context()); ok && identity.Username == username {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	deleted, err := h.users.Delete(r.Context(), username)
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	username := strings.TrimSpace(r.PathValue("username"))
	if err := auth.ValidateUsername(username); err != nil {
		writeError(w, http.StatusBadRequest, "invalid username")
		return "", false
	}
	return username, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	// An empty body means "use the defaults".
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
