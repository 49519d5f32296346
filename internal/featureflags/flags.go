package featureflags

import (
	"os"
	"strings"
)

// UniqueMembership gates the store-boundary duplicate check on member
// assignment. Off by default to preserve the legacy behavior where the
// candidate filter is the only guard.
const UniqueMembership = "unique_membership"

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive)
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
