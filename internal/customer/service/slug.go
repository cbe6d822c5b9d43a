package service

import (
	"strconv"
	"strings"
	"unicode"
)

// Slugify lowercases the name and collapses every run of non-alphanumeric
// characters into a single hyphen. An input with no usable characters falls
// back to "org".
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "org"
	}
	return slug
}

// suffixedSlug appends a numeric suffix to a base slug. A suffix of zero
// returns the base unchanged.
func suffixedSlug(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
