package cache

import (
	"regexp"
	"strings"
)

// compilePattern translates a glob pattern into an anchored regular
// expression. Every regex metacharacter is escaped so only * acts as a
// wildcard; keys containing dots, brackets, or colons match literally.
// Returns nil when the translation fails, in which case callers fall back to
// literal comparison.
func compilePattern(glob string) *regexp.Regexp {
	parts := strings.Split(glob, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return nil
	}
	return re
}
