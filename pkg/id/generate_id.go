package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns a random (v4) UUID as exactly 32 lowercase hex characters,
// hyphens stripped. Used as the public id of every ledger row.
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Valid reports whether s has the shape produced by NewID32.
func Valid(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
