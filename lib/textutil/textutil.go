package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize decomposes unicode, removes combining diacritics, lowercases
// and trims surrounding whitespace. Empty input yields "".
func Normalize(text string) string {
	out, _, err := transform.String(stripDiacritics, text)
	if err != nil {
		// the transform chain never fails on valid utf-8, fall back to
		// the raw string for anything else
		out = text
	}
	out = strings.ToLower(out)
	return strings.Trim(out, " \n\t")
}

// NormalizeCompact is Normalize with all inner whitespace collapsed
// to single spaces, for matching surfaces built from multiple fields.
func NormalizeCompact(text string) string {
	return whitespaceRegex.ReplaceAllString(Normalize(text), " ")
}

// Clean strips diacritics and trims without lowercasing, keeping
// display casing intact.
func Clean(text string) string {
	out, _, err := transform.String(stripDiacritics, text)
	if err != nil {
		out = text
	}
	return strings.Trim(out, " \n\t")
}

var titleCaser = cases.Title(language.Und)

// TitleCase renders a normalized (lowercased) value for display.
func TitleCase(text string) string {
	return titleCaser.String(text)
}
