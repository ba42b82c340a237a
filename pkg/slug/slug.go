package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// accentFolder maps the Latin diacritics that show up in antique listings
// (maker names, origins) to plain ASCII.
var accentFolder = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "å", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o", "ø", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n", "ß", "ss",
)

// Generate derives a URL-friendly slug from a product name.
//
// Examples:
//   - "Fabergé Style Egg" → "faberge-style-egg"
//   - "Art Nouveau  Décor!" → "art-nouveau-decor"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = accentFolder.Replace(s)

	// Everything that is not a letter or digit becomes a single hyphen.
	s = nonAlnum.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
