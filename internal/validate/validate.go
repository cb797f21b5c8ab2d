// Package validate screens raw SQL from standard-tier callers.
//
// This is a denylist, not a SQL parser: it rejects the obviously
// destructive patterns and comment smuggling, and is inherently
// incomplete against injection variants. Privileged callers bypass it
// entirely, which is intentional.
package validate

import (
	"errors"
	"regexp"
)

var (
	ErrTooLong = errors.New("query exceeds maximum length")
	ErrUnsafe  = errors.New("query matches a disallowed pattern")
)

// dangerous lists the denylist patterns: a statement separator followed by
// a destructive command, and both SQL comment forms (usable to smuggle
// disallowed clauses past naive filters).
var dangerous = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*(DROP|ALTER|CREATE|TRUNCATE)`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`(?s)/\*.*?\*/`),
}

// Query checks q against the length ceiling and the denylist.
// A query of exactly maxLength bytes passes the length check.
func Query(q string, maxLength int) error {
	if len(q) > maxLength {
		return ErrTooLong
	}
	for _, re := range dangerous {
		if re.MatchString(q) {
			return ErrUnsafe
		}
	}
	return nil
}
