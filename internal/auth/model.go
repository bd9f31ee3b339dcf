package auth

import "time"

// Role is the fixed role enumeration. The historical "tickets_admin"
// spelling is accepted on input and normalized to RoleITAdmin.
type Role string

const (
	RoleAdmin              Role = "admin"
	RoleUser               Role = "user"
	RoleDatasetsAdmin      Role = "datasets_admin"
	RoleCybersecurityAdmin Role = "cybersecurity_admin"
	RoleITAdmin            Role = "it_admin"

	legacyTicketsAdmin Role = "tickets_admin"
)

// ParseRole normalizes a stored or submitted role string. Unknown values
// report ok=false so callers reject them instead of guessing.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleAdmin, RoleUser, RoleDatasetsAdmin, RoleCybersecurityAdmin, RoleITAdmin:
		return Role(value), true
	case legacyTicketsAdmin:
		return RoleITAdmin, true
	default:
		return "", false
	}
}

// User is the canonical user record. Store adapters always produce this
// shape; nothing downstream branches on row representation.
type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	PasswordHash   string     `json:"-"`
	Role           Role       `json:"role"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Locked reports whether the record carries a lock that has not expired
// at the given instant.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Session is an issued bearer session. Immutable once created; it is
// removed by logout or by the lazy expiry sweep on lookup.
type Session struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LockChange is a tagged update for the locked_until column. The zero
// value keeps the stored value; SetLock and ClearLock replace or null it.
// This removes the empty-string-as-null convention the flat-file era used.
type LockChange struct {
	set   bool
	clear bool
	until time.Time
}

func KeepLock() LockChange               { return LockChange{} }
func SetLock(until time.Time) LockChange { return LockChange{set: true, until: until.UTC()} }
func ClearLock() LockChange              { return LockChange{clear: true} }

// Apply resolves the change against a current value. UserStore
// implementations that hold users in memory use this instead of
// building SQL.
func (c LockChange) Apply(current *time.Time) *time.Time {
	switch {
	case c.clear:
		return nil
	case c.set:
		until := c.until
		return &until
	default:
		return current
	}
}

// UserUpdate carries a partial user mutation. Nil pointer fields are left
// untouched.
type UserUpdate struct {
	PasswordHash   *string
	Role           *Role
	FailedAttempts *int
	LockedUntil    LockChange
}

// Config collects the security knobs. It is passed to constructors
// explicitly; there is no package-level mutable state.
type Config struct {
	LockThreshold   int
	LockCooldown    time.Duration
	SessionLifetime time.Duration
	BcryptCost      int
}

const (
	defaultLockThreshold   = 3
	defaultLockCooldown    = 15 * time.Minute
	defaultSessionLifetime = 24 * time.Hour
)

func (c Config) withDefaults() Config {
	if c.LockThreshold <= 0 {
		c.LockThreshold = defaultLockThreshold
	}
	if c.LockCooldown <= 0 {
		c.LockCooldown = defaultLockCooldown
	}
	if c.SessionLifetime <= 0 {
		c.SessionLifetime = defaultSessionLifetime
	}
	return c
}
