// Package stringutil provides common string manipulation utilities.
package stringutil

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes drops invalid UTF-8 from s and cuts it to at most n runes.
// Cutting by runes keeps multi-byte characters whole.
//
// Example:
//
//	TruncateRunes("資訊工程", 2) returns "資訊"
func TruncateRunes(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// PhoneDigits keeps only the digits and '+' of a phone number, the form a
// tel: link expects.
//
// Example:
//
//	PhoneDigits("+1 (555) 123-4567") returns "+15551234567"
func PhoneDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
