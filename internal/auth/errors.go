package auth

import (
	"errors"
	"fmt"
	"time"
)

// Login and registration outcomes. The HTTP layer may present
// ErrUserNotFound and ErrWrongPassword identically to avoid username
// enumeration, but the service never conflates them.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrUsernameTaken = errors.New("username already taken")
)

// AccountLockedError rejects a login attempt while the account lock is
// still in effect. Until tells the caller when attempts resume.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return "account temporarily locked"
}

// ValidationError carries a human-readable reason that is safe to show
// to the end user verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StoreError wraps an underlying persistence failure. It is never
// conflated with a not-found outcome and always keeps its cause for
// logging and Sentry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeFailure(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
