package utils

import (
	"strings"
	"unicode/utf8"
)

// TrimStrToRect bounds s to maxHeight lines of at most maxWidth bytes each.
// Cut lines and a cut line count are marked with "[...]". Lines are never
// cut inside a UTF-8 sequence.
func TrimStrToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, "[...]")
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if len(line) > maxWidth {
			w := maxWidth
			for w > 0 && !utf8.RuneStart(line[w]) {
				w--
			}
			b.WriteString(line[:w])
			b.WriteString("[...]")
		} else {
			b.WriteString(line)
		}
	}
	return b.String()
}

// StrPtrIfNotEmpty returns nil for an empty string.
func StrPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
