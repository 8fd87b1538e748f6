// Package songtext normalizes song titles and artists for matching, and
// sanitizes them into the automation software's filename dialect.
package songtext

import "strings"

var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
	"Á", "A", "À", "A", "Â", "A", "Ã", "A", "Ä", "A",
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"Í", "I", "Ì", "I", "Î", "I", "Ï", "I",
	"Ó", "O", "Ò", "O", "Ô", "O", "Õ", "O", "Ö", "O",
	"Ú", "U", "Ù", "U", "Û", "U", "Ü", "U",
	"Ç", "C", "Ñ", "N",
)

// StripAccents replaces accented Latin letters with their base form.
func StripAccents(s string) string {
	return accentReplacer.Replace(s)
}

// Normalize produces the canonical form used for deduplication and
// repetition checks: accent-free, lowercase, single-spaced.
func Normalize(s string) string {
	s = StripAccents(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// Key builds the (artist, title) dedup key.
func Key(artist, title string) string {
	return Normalize(artist) + "|" + Normalize(title)
}

// SanitizeFilename converts artist and title into the quoted-token filename
// the automation software expects: accents stripped, ampersand spelled out,
// uppercase, anything else non-alphanumeric collapsed to spaces.
func SanitizeFilename(artist, title string) string {
	name := sanitizePart(artist) + " - " + sanitizePart(title)
	return name + ".mp3"
}

func sanitizePart(s string) string {
	s = StripAccents(s)
	s = strings.ReplaceAll(s, "&", " E ")
	s = strings.ToUpper(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits a normalized string into comparison tokens.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// Similarity returns the fraction of want's tokens present in have's token
// set. It is deliberately forgiving about word order and extra words.
func Similarity(want, have string) float64 {
	wantTokens := Tokens(want)
	if len(wantTokens) == 0 {
		return 0
	}
	haveSet := make(map[string]struct{})
	for _, t := range Tokens(have) {
		haveSet[t] = struct{}{}
	}
	matched := 0
	for _, t := range wantTokens {
		if _, ok := haveSet[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(wantTokens))
}
