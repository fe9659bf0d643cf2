package reconciler

import (
	"regexp"
	"strings"
)

// baseNameSplit marks where the family name ends: the first comma, open
// parenthesis, or numeric dosage token (digits followed by a unit).
var baseNameSplit = regexp.MustCompile(`[,(]|\d+\s*(?:MG|MCG|ML|G|UI|%)`)

// BaseName strips dosage, form and marker suffixes from a full display
// name to recover the family name used for coarse grouping:
//
//	"A.V.T. , COMPRIMÉ EFFERVESCENT"      -> "AVT"
//	"ABIP 15 MG, COMPRIMÉ PELLICULÉ [P]"  -> "ABIP"
//	"ALFACEFAL 125 MG/5 ML"               -> "ALFACEFAL"
func BaseName(fullName string) string {
	s := strings.ToUpper(fullName)
	if loc := baseNameSplit.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return Normalize(s)
}
