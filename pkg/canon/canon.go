// Package canon derives display tokens from raw snake_case record keys.
package canon

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Testament suffixes stripped before casing. Only an exact trailing match counts.
var testamentSuffixes = []string{"_nt", "_ot"}

// Canonicalize converts a raw key such as "arabia_nt" into its display token
// ("Arabia"). It never fails; the empty string maps to the empty string.
//
// A key without underscores whose first rune is upper-case, or has no case
// at all like a digit, is taken to be canonical and returned as is, so
// Canonicalize(Canonicalize(k)) equals Canonicalize(k). Any other key is
// recased segment by segment, so "mcDonald" becomes "Mcdonald".
func Canonicalize(raw string) string {
	if isCanonical(raw) {
		return raw
	}
	for _, suf := range testamentSuffixes {
		if strings.HasSuffix(raw, suf) {
			raw = strings.TrimSuffix(raw, suf)
			break
		}
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, seg := range strings.Split(raw, "_") {
		if seg == "" {
			continue
		}
		b.WriteString(titleSegment(seg))
	}
	return b.String()
}

// Template returns the canonical token wrapped in a single brace pair, the
// form used for label templates. An empty key yields "{}".
func Template(raw string) string {
	return "{" + Canonicalize(raw) + "}"
}

// Strip removes one enclosing brace pair from a template, if present.
func Strip(template string) string {
	if len(template) >= 2 && strings.HasPrefix(template, "{") && strings.HasSuffix(template, "}") {
		return template[1 : len(template)-1]
	}
	return template
}

func isCanonical(s string) bool {
	if s == "" || strings.Contains(s, "_") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.ToUpper(r) == r
}

// titleSegment upper-cases the first rune and lower-cases the rest.
func titleSegment(seg string) string {
	r, size := utf8.DecodeRuneInString(seg)
	return string(unicode.ToUpper(r)) + strings.ToLower(seg[size:])
}
