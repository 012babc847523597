package util

import "regexp"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s is a valid agent type name.
func IsIdentifier(s string) bool { return identRe.MatchString(s) }
