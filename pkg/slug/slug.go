package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// letters that do not decompose into a base letter plus marks.
var foldLetters = strings.NewReplacer(
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"ß", "ss",
	"ı", "i",
	"đ", "d",
	"ł", "l",
	"þ", "th",
)

// Generate turns a title into a URL handle: lower case ASCII letters and
// digits separated by single hyphens. Accents are dropped, so
// "Nordic Læder Øre" becomes "nordic-laeder-ore" and "Çocuk Ürünleri"
// becomes "cocuk-urunleri".
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = foldLetters.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}
