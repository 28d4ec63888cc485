package reconcile

import (
	"strings"
	"unicode"
)

// Normalize lowercases a title, strips punctuation, and collapses
// whitespace so that "Scarlet Begonias ->" and "scarlet begonias"
// compare equal. Segue arrows and take markers common in Archive.org
// file titles are dropped along with the rest of the punctuation.
func Normalize(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastSpace := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '/' || r == '>':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}
