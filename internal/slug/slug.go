// Package slug turns arbitrary label text into URL-safe identifiers.
//
// Slugify is pure and deterministic: the same label yields the same slug
// within and across builds. Collision handling (e.g. for heading anchors)
// is the caller's responsibility.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeBase ensures a site base path has exactly one leading and one
// trailing slash, so routes can be joined by plain concatenation.
func NormalizeBase(path string) string {
	p := strings.Trim(path, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// Slugify lowercases the label and reduces it to [a-z0-9], CJK ideographs
// and single hyphens. Whitespace runs become one hyphen, repeated hyphens
// collapse, and leading/trailing hyphens are trimmed.
func Slugify(label string) string {
	normalized := norm.NFKC.String(label)

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range strings.ToLower(normalized) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.Is(unicode.Han, r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-':
			b.WriteByte('-')
		default:
			// dropped
		}
	}

	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}
