package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugFolder strips combining marks so accented heading text folds to plain
// ASCII before slugging ("Intérieur" -> "interieur").
var slugFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a URL-safe identity slug from heading text, in the same
// underscore style the source uses for its own path segments
// ("Oil pan & oil strainer" -> "oil_pan_oil_strainer").
//
// Slugs are identity, not display: the original heading is kept separately
// as the record name.
func Slugify(name string) string {
	folded, _, err := transform.String(slugFolder, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	lastUnderscore := true // suppress leading separator
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
