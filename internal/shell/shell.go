// Package shell renders argument vectors as shell-safe command lines.
package shell

import (
	"strings"
	"unicode"
)

// needsEscape reports whether r must be backslash-escaped in an unquoted word.
func needsEscape(r rune) bool {
	switch r {
	case '"', '\\', '\'', '$', '`', '!':
		return true
	}
	return unicode.IsSpace(r)
}

// Escape backslash-escapes shell metacharacters in v.
// Strings without metacharacters are returned unchanged.
func Escape(v string) string {
	if strings.IndexFunc(v, needsEscape) < 0 {
		return v
	}
	var sb strings.Builder
	sb.Grow(len(v) + 8)
	for _, r := range v {
		if needsEscape(r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Join escapes each element of argv and joins them with single spaces.
func Join(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		parts[i] = Escape(a)
	}
	return strings.Join(parts, " ")
}
