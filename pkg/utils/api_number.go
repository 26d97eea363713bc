package utils

import (
	"strings"
)

// NormalizeAPI canonicalizes a well API/UWI number for matching.
// Warehouse tables are inconsistent about dashes ("42-041-32667" vs
// "4204132667"), so all joins and lookups go through this form:
// upper-cased, trimmed, with dashes, dots, and interior spaces removed.
func NormalizeAPI(api string) string {
	s := strings.ToUpper(strings.TrimSpace(api))
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '-', '.', ' ', '_':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SameAPI reports whether two well identifiers refer to the same well
// under dash-insensitive matching.
func SameAPI(a, b string) bool {
	return NormalizeAPI(a) == NormalizeAPI(b) && NormalizeAPI(a) != ""
}

// SanitizeFilename strips path separators and control characters from a
// user-supplied filename so it is safe to embed in an object-store key.
// Returns "" if nothing usable remains.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	// Keep only the final path element no matter which separator the
	// client used.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			continue
		case strings.ContainsRune(`<>:"|?*`, r):
			continue
		case r == ' ':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ". ")
	return out
}
