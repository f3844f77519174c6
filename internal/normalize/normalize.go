// Package normalize provides the string normalizations used for identity
// resolution and preference matching.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
)

// identitySeparator joins title and author in an identity key. A unit
// separator cannot appear in spreadsheet text, so "a|b"+"c" and "a"+"b|c"
// never collide.
const identitySeparator = "\x1f"

// Text lower-cases and trims s.
func Text(s string) string {
	return strings.ToLower(strings.TrimSpace(sanitizeString(s)))
}

// TitleAuthorKey returns the identity key for a title and author pair.
// Blank components normalize to "" and collide with other blank entries.
func TitleAuthorKey(title, author string) string {
	return Text(title) + identitySeparator + Text(author)
}

// Fold case-folds and trims s for case-insensitive equality.
// A new Caser is created per call because cases.Caser is not safe for
// concurrent use.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// EqualFold reports whether a and b are equal after folding. Two blank values
// are never equal: a missing value neither matches nor errors.
func EqualFold(a, b string) bool {
	fa, fb := Fold(a), Fold(b)
	if fa == "" || fb == "" {
		return false
	}
	return fa == fb
}

// sanitizeString removes null bytes, which some spreadsheet exports leave
// at the end of cells.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
