package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. A constraintName match is checked first; sqlite
// reports column names rather than index names, so the generic duplicate
// messages are accepted as a fallback.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
