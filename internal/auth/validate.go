package auth

import (
	"strings"
	"unicode"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 20
	minPasswordLen = 8
	maxPasswordLen = 50
)

const specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// ValidateUsername enforces the account-name format: 3-20 characters,
// letters, digits, and underscores only. The returned error is a
// ValidationError whose reason is shown to the user verbatim.
func ValidateUsername(username string) error {
	if username == "" {
		return &ValidationError{Reason: "Username cannot be empty."}
	}
	if len(username) < minUsernameLen {
		return &ValidationError{Reason: "Username must be at least 3 characters long."}
	}
	if len(username) > maxUsernameLen {
		return &ValidationError{Reason: "Username must be no more than 20 characters long."}
	}
	for _, r := range username {
		if r == '_' {
			continue
		}
		if r > unicode.MaxASCII || (!unicode.IsLetter(r) && !unicode.IsDigit(r)) {
			return &ValidationError{Reason: "Username may only contain letters, numbers, and underscores (no spaces or symbols)."}
		}
	}
	return nil
}

// ValidatePassword is the registration gate: 8-50 characters with at
// least one uppercase letter, one digit, and one special character.
func ValidatePassword(password string) error {
	if password == "" {
		return &ValidationError{Reason: "Password cannot be empty"}
	}
	if len(password) < minPasswordLen {
		return &ValidationError{Reason: "Password must be at least 8 characters long"}
	}
	if len(password) > maxPasswordLen {
		return &ValidationError{Reason: "Password must be no more than 50 characters long"}
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return &ValidationError{Reason: "Password must contain at least one uppercase letter"}
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return &ValidationError{Reason: "Password must contain at least one number"}
	}
	if !strings.ContainsAny(password, specialChars) {
		return &ValidationError{Reason: "Password must contain at least one special character (" + specialChars + ")"}
	}
	return nil
}

// Strength is the advisory password rating. It never gates registration.
type Strength string

const (
	StrengthWeak   Strength = "Weak"
	StrengthMedium Strength = "Medium"
	StrengthStrong Strength = "Strong"
)

// PasswordStrength scores one point per satisfied criterion and maps the
// 0-6 score to Weak (<=2), Medium (<=4), or Strong.
func PasswordStrength(password string) Strength {
	score := 0
	if len(password) >= 8 {
		score++
	}
	if len(password) >= 12 {
		score++
	}
	if strings.ContainsFunc(password, unicode.IsLower) {
		score++
	}
	if strings.ContainsFunc(password, unicode.IsUpper) {
		score++
	}
	if strings.ContainsFunc(password, unicode.IsDigit) {
		score++
	}
	if strings.ContainsAny(password, specialChars) {
		score++
	}

	switch {
	case score <= 2:
		return StrengthWeak
	case score <= 4:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}
