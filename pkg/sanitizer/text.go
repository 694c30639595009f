package sanitizer

import (
	"strings"
	"unicode"
)

// NormalizeText trims s and collapses every whitespace run into one space.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return b.String()
}

// NormalizeDescription trims surrounding whitespace and keeps line breaks.
func NormalizeDescription(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = NormalizeText(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// NormalizeIdentifier trims an opaque id such as a user id.
func NormalizeIdentifier(s string) string {
	return strings.TrimSpace(s)
}
