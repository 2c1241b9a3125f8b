package domain

import (
	"strings"
)

// NormalizeName trims a display name and compresses runs of spaces into one.
// Case is preserved.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeEmail trims surrounding whitespace. The address is otherwise kept
// exactly as entered since it is shown back to the user.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
