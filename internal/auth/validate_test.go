package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  string
	}{
		{"valid simple", "alice", ""},
		{"valid with underscore and digits", "it_admin_42", ""},
		{"empty", "", "Username cannot be empty."},
		{"too short", "ab", "Username must be at least 3 characters long."},
		{"too long", strings.Repeat("a", 21), "Username must be no more than 20 characters long."},
		{"space", "bad name", "Username may only contain letters, numbers, and underscores (no spaces or symbols)."},
		{"symbol", "bad-name", "Username may only contain letters, numbers, and underscores (no spaces or symbols)."},
		{"non-ascii letter", "aliçe", "Username may only contain letters, numbers, and underscores (no spaces or symbols)."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUsername(tc.username)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.wantErr, validationErr.Reason)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "Valid123!", true},
		{"too short", "short1!A", true},
		{"actually too short", "short1!", false},
		{"no special", "longenoughbutnospecial1A", false},
		{"no uppercase", "valid123!", false},
		{"no digit", "ValidPass!", false},
		{"empty", "", false},
		{"too long", strings.Repeat("Aa1!", 13), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
			}
		})
	}
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     Strength
	}{
		{"abc", StrengthWeak},            // lowercase only
		{"password", StrengthWeak},       // length + lowercase
		{"Password1", StrengthMedium},    // length, lower, upper, digit
		{"Password1!", StrengthStrong},   // adds special
		{"LongPassword123!", StrengthStrong},
		{"", StrengthWeak},
	}

	for _, tc := range tests {
		t.Run(tc.password, func(t *testing.T) {
			assert.Equal(t, tc.want, PasswordStrength(tc.password))
		})
	}
}
