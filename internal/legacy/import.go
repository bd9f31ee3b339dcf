// Package legacy imports credentials from the historical flat-file
// format, one "username,bcrypt-hash" pair per line. This is a one-time,
// explicitly invoked migration path; nothing in the login flow ever
// reads the file.
package legacy

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"dashboard-serverless/internal/auth"
)

// Report summarizes an import run for the operator.
type Report struct {
	Imported int
	Skipped  int
	Invalid  int
}

// ImportUsersFile loads every well-formed line into the user store with
// the default user role. Existing usernames and malformed lines are
// skipped, never overwritten; the hashes are stored as-is since the
// flat file already held bcrypt output.
func ImportUsersFile(ctx context.Context, path string, users auth.UserStore) (Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open legacy user file: %w", err)
	}
	defer file.Close()

	var report Report
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		username, hash, ok := strings.Cut(line, ",")
		username = strings.TrimSpace(username)
		hash = strings.TrimSpace(hash)
		if !ok || hash == "" || auth.ValidateUsername(username) != nil {
			report.Invalid++
			continue
		}

		inserted, err := users.Insert(ctx, &auth.User{
			Username:     username,
			PasswordHash: hash,
			Role:         auth.RoleUser,
		})
		if err != nil {
			return report, fmt.Errorf("import user %s: %w", username, err)
		}
		if !inserted {
			report.Skipped++
			continue
		}
		report.Imported++
	}

	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("read legacy user file: %w", err)
	}

	return report, nil
}
