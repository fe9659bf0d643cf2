// Package reconciler implements the record matching and merge engine for
// the medication catalogue: name normalization, fuzzy matching between
// the catalogue and an incoming feed, field merging, and recomputation
// of the reimbursement-derived financial fields.
package reconciler

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a raw medication name or DCI into a comparable
// key: uppercase, runs of whitespace collapsed to a single space, and
// everything that is not alphanumeric or whitespace stripped. Accented
// letters are kept as-is; equality decisions never fold accents.
// An empty or absent input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToUpper(s)
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// slugFolder strips combining marks after NFD decomposition, folding
// é->e, à->a, ç->c and the rest of the French accent set.
var slugFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify produces the URL-path-safe token used for medication page
// links: transliterated to unaccented lowercase ASCII, whitespace
// replaced with hyphens, repeated hyphens collapsed. This is a one-way
// presentation-boundary transform and must never be used for matching.
func Slugify(name string) string {
	folded, _, err := transform.String(slugFolder, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)
	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		}
	}
	return b.String()
}
