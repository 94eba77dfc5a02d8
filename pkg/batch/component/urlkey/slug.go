package urlkey

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into a base letter plus combining marks.
var transliterations = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"ø", "o",
	"ł", "l",
	"đ", "d",
	"œ", "oe",
	"þ", "th",
	"&", " and ",
)

// Slugify converts free text into a URL-safe base key: lowercase ASCII letters,
// digits and single dashes, with no leading or trailing dash.
// The result is empty when text has no letters or digits.
func Slugify(text string) string {
	s := transliterations.Replace(strings.ToLower(strings.ToValidUTF8(text, " ")))

	// The chain only fails on malformed input, which ToValidUTF8 has removed;
	// on failure the transliterated text is used as is.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
