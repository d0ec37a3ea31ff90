package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// GenerateSlug turns a display name into a URL slug:
// "Áo khoác Nữ / Mùa đông" -> "ao-khoac-nu-mua-dong".
func GenerateSlug(input string) string {
	s := strings.ToLower(RemoveDiacritics(input))
	s = strings.Join(strings.Fields(s), "-")
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// RemoveDiacritics strips combining marks after NFD decomposition. The
// letter d-with-stroke has no decomposition and is mapped by hand.
func RemoveDiacritics(input string) string {
	input = strings.NewReplacer("đ", "d", "Đ", "D").Replace(input)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}
