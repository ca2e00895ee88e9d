// Package pattern implements the wildcard search syntax for HTTP status
// codes: 1 to 3 characters, each a digit or the wildcard marker "x"/"X".
// A pattern shorter than 3 characters is right-padded with wildcards, so
// "4" means 4xx and "30" means 30x.
package pattern

import "strings"

const (
	// Wildcard matches any single digit position.
	Wildcard = 'x'
	// Length is the fixed number of digits in an HTTP status code.
	Length = 3
)

// Normalize validates and canonicalizes a raw user-supplied pattern.
// It trims whitespace, rejects anything that is not digits or wildcard
// markers, lowercases the markers, and pads the result to exactly Length
// characters. The second return value is false for patterns that cannot
// be used as a filter (empty, too long, or containing other characters);
// callers are expected to fall back to an unfiltered catalog in that case.
func Normalize(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > Length {
		return "", false
	}
	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune(Wildcard)
		default:
			return "", false
		}
	}
	norm := b.String()
	for len(norm) < Length {
		norm += string(Wildcard)
	}
	return norm, true
}

// Matches reports whether a status code matches a normalized pattern.
// Each fixed digit position must equal the code's digit at that position;
// wildcard positions match any digit. Codes outside the 3-digit range
// never match.
func Matches(norm string, code int) bool {
	if len(norm) != Length || code < 100 || code > 999 {
		return false
	}
	digits := [Length]byte{
		byte('0' + code/100),
		byte('0' + code/10%10),
		byte('0' + code%10),
	}
	for i := 0; i < Length; i++ {
		if norm[i] == Wildcard {
			continue
		}
		if norm[i] != digits[i] {
			return false
		}
	}
	return true
}

// LikeExpr converts a normalized pattern into a SQL LIKE expression over
// the textual rendering of the code column ("4xx" -> "4__").
func LikeExpr(norm string) string {
	return strings.ReplaceAll(norm, string(Wildcard), "_")
}
