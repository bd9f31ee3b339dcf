package auth

import (
	"context"
	"strings"
	"time"
)

// Service orchestrates credential verification, the lockout policy, and
// session issuance. It is the only entry point the HTTP layer talks to.
type Service struct {
	users    UserStore
	sessions SessionStore
	hasher   *Hasher
	cfg      Config
}

func NewService(users UserStore, sessions SessionStore, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   NewHasher(cfg.BcryptCost),
		cfg:      cfg,
	}
}

// Register validates the credentials, hashes the password, and inserts
// the user. Username conflicts surface as ErrUsernameTaken.
func (s *Service) Register(ctx context.Context, username, password string, role Role) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	normalizedRole, ok := ParseRole(string(role))
	if !ok {
		return &ValidationError{Reason: "Unknown role."}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return storeFailure("register", err)
	}

	inserted, err := s.users.Insert(ctx, &User{
		Username:     username,
		PasswordHash: hash,
		Role:         normalizedRole,
	})
	if err != nil {
		return storeFailure("register", err)
	}
	if !inserted {
		return ErrUsernameTaken
	}

	return nil
}

// Login runs the security-critical sequence: lookup, lock check, lazy
// lock expiry, password verification, and only then session issuance.
// The lock check always precedes the password check so a locked account
// cannot be used to probe password correctness.
func (s *Service) Login(ctx context.Context, username, password string) (Role, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", "", storeFailure("login", err)
	}
	if user == nil {
		return "", "", ErrUserNotFound
	}

	now := time.Now().UTC()
	if user.Locked(now) {
		return "", "", &AccountLockedError{Until: *user.LockedUntil}
	}
	if user.LockedUntil != nil {
		// Lock expired: clear it before this attempt is judged.
		if err := s.users.ClearLockState(ctx, username); err != nil {
			return "", "", storeFailure("login", err)
		}
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		if _, err := s.users.RecordFailedLogin(ctx, username, s.cfg.LockThreshold, s.cfg.LockCooldown, now); err != nil {
			return "", "", storeFailure("login", err)
		}
		return "", "", ErrWrongPassword
	}

	// Clearing is idempotent; it stays cleared even if session creation
	// fails right after.
	if err := s.users.ClearLockState(ctx, username); err != nil {
		return "", "", storeFailure("login", err)
	}

	token, err := s.sessions.Create(ctx, username, s.cfg.SessionLifetime)
	if err != nil {
		return "", "", storeFailure("create session", err)
	}

	return user.Role, token, nil
}

// GetSession resolves a bearer token. Unknown and expired tokens are the
// same outcome: nil session, no error.
func (s *Service) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, storeFailure("get session", err)
	}
	return session, nil
}

// InvalidateSession logs a session out. Unknown tokens are a no-op.
func (s *Service) InvalidateSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Invalidate(ctx, token); err != nil {
		return storeFailure("invalidate session", err)
	}
	return nil
}

// Identity is a resolved session: the session record plus the owning
// user's role.
type Identity struct {
	Username  string
	Role      Role
	ExpiresAt time.Time
}

// Resolve maps a bearer token to the identity it proves. A valid session
// whose user has since been deleted resolves to nothing.
func (s *Service) Resolve(ctx context.Context, token string) (*Identity, error) {
	session, err := s.GetSession(ctx, token)
	if err != nil || session == nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, session.Username)
	if err != nil {
		return nil, storeFailure("resolve session", err)
	}
	if user == nil {
		return nil, nil
	}

	return &Identity{
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// IsAccountLocked reports the lock state, lazily clearing a lock whose
// cooldown has passed. Unknown accounts are simply not locked.
func (s *Service) IsAccountLocked(ctx context.Context, username string) (bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, storeFailure("lock check", err)
	}
	if user == nil || user.LockedUntil == nil {
		return false, nil
	}

	if user.Locked(time.Now().UTC()) {
		return true, nil
	}

	if err := s.users.ClearLockState(ctx, username); err != nil {
		return false, storeFailure("lock check", err)
	}
	return false, nil
}

// BootstrapAdmin seeds or repairs the admin account named by the
// ADMIN_USERNAME/ADMIN_PASSWORD pair. Both empty means no bootstrap;
// only one set is a configuration error.
func (s *Service) BootstrapAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" && password == "" {
		return nil
	}
	if username == "" || password == "" {
		return &ValidationError{Reason: "ADMIN_USERNAME and ADMIN_PASSWORD are required together"}
	}
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return storeFailure("bootstrap admin", err)
	}

	inserted, err := s.users.Insert(ctx, &User{
		Username:     username,
		PasswordHash: hash,
		Role:         RoleAdmin,
	})
	if err != nil {
		return storeFailure("bootstrap admin", err)
	}
	if inserted {
		return nil
	}

	// Account exists: refresh the credential and make sure it still
	// holds the admin role.
	role := RoleAdmin
	if _, err := s.users.Update(ctx, username, UserUpdate{
		PasswordHash: &hash,
		Role:         &role,
	}); err != nil {
		return storeFailure("bootstrap admin", err)
	}

	return nil
}
