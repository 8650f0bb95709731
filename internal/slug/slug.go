// Package slug turns arbitrary remote names into filesystem-safe path segments.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Segment resolves one path component. It composes the text (NFC), lowercases it,
// drops everything that is not a word character, whitespace, '.' or '-',
// collapses whitespace/dash runs into a single '-' and trims '-' and '_' from both ends.
//
// Segment is applied to each component separately, never to a joined path.
func Segment(text string) string {
	s := strings.ToLower(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(s))

	pendingDash := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == '-':
			pendingDash = true
		case isWord(r) || r == '.':
			if pendingDash {
				b.WriteByte('-')
				pendingDash = false
			}
			b.WriteRune(r)
		}
	}
	if pendingDash {
		b.WriteByte('-')
	}

	return strings.Trim(b.String(), "-_")
}

// isWord matches the \w class of Unicode regular expressions: letters, digits, marks and '_'.
func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
