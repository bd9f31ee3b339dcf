package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*Handler, *Service, *fakeUserStore, *fakeSessionStore) {
	t.Helper()
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	service := NewService(users, sessions, Config{BcryptCost: bcrypt.MinCost})
	return NewHandler(service), service, users, sessions
}

func postJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandler_RegisterAndConflict(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	rec := postJSON(t, handler.Register, "/auth/register", `{"username":"alice","password":"Passw0rd!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Strong", body["password_strength"])

	rec = postJSON(t, handler.Register, "/auth/register", `{"username":"alice","password":"Other1$xx"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_RegisterValidationFailure(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	rec := postJSON(t, handler.Register, "/auth/register", `{"username":"alice","password":"short1!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 8 characters")

	rec = postJSON(t, handler.Register, "/auth/register", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, handler.Register, "/auth/register", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_LoginFlow(t *testing.T) {
	handler, service, _, _ := newTestHandler(t)
	require.NoError(t, service.Register(context.Background(), "alice", "Passw0rd!", RoleUser))

	rec := postJSON(t, handler.Login, "/auth/login", `{"username":"alice","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, RoleUser, body.Role)
	assert.Equal(t, int64((24 * time.Hour).Seconds()), body.ExpiresIn)
}

func TestHandler_LoginHidesUserExistence(t *testing.T) {
	handler, service, _, _ := newTestHandler(t)
	require.NoError(t, service.Register(context.Background(), "alice", "Passw0rd!", RoleUser))

	unknown := postJSON(t, handler.Login, "/auth/login", `{"username":"ghost","password":"Passw0rd!"}`)
	wrong := postJSON(t, handler.Login, "/auth/login", `{"username":"alice","password":"Wrong1!pw"}`)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.JSONEq(t, unknown.Body.String(), wrong.Body.String())
}

func TestHandler_LoginLockedSetsRetryAfter(t *testing.T) {
	handler, service, users, _ := newTestHandler(t)
	require.NoError(t, service.Register(context.Background(), "alice", "Passw0rd!", RoleUser))

	future := time.Now().UTC().Add(10 * time.Minute)
	users.users["alice"].LockedUntil = &future

	rec := postJSON(t, handler.Login, "/auth/login", `{"username":"alice","password":"Passw0rd!"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestHandler_LogoutIdempotent(t *testing.T) {
	handler, service, _, sessions := newTestHandler(t)
	require.NoError(t, service.Register(context.Background(), "alice", "Passw0rd!", RoleUser))

	token, err := sessions.Create(context.Background(), "alice", time.Hour)
	require.NoError(t, err)

	logout := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.Logout(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, logout().Code)
	assert.Equal(t, http.StatusNoContent, logout().Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Session(t *testing.T) {
	handler, service, _, sessions := newTestHandler(t)
	require.NoError(t, service.Register(context.Background(), "alice", "Passw0rd!", RoleUser))

	token, err := sessions.Create(context.Background(), "alice", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.Session(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, RoleUser, body.Role)

	req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec = httptest.NewRecorder()
	handler.Session(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
