package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"medisearch-backend/lib/textutil"
)

// concentration patterns, checked in order. mcg must come before g and
// mg so that "500 mcg" is not read as grams.
var dosePatterns = []struct {
	regex   *regexp.Regexp
	unit    string
	convert func(float64) float64
}{
	{
		regex:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mcg\b`),
		unit:    "mg",
		convert: func(v float64) float64 { return v / 1000 },
	},
	{
		regex:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*g\b`),
		unit:    "mg",
		convert: func(v float64) float64 { return v * 1000 },
	},
	{
		regex:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mg\b`),
		unit:    "mg",
		convert: func(v float64) float64 { return v },
	},
	{
		// international units are never converted
		regex:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:ui\b|u\.i\.)`),
		unit:    "ui",
		convert: func(v float64) float64 { return v },
	},
}

// ParseDose scans free text for a concentration like "500 mg",
// "500 mcg" or "50000 UI" and returns the amount (as a decimal string,
// normalized to milligrams where convertible) and the unit. Both come
// back empty when no pattern matches.
func ParseDose(text string) (amount, unit string) {
	normalized := strings.ReplaceAll(textutil.Normalize(text), ",", ".")
	for _, pattern := range dosePatterns {
		groups := pattern.regex.FindStringSubmatch(normalized)
		if len(groups) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(groups[1], 64)
		if err != nil {
			continue
		}
		converted := pattern.convert(value)
		return strconv.FormatFloat(converted, 'f', -1, 64), pattern.unit
	}
	return "", ""
}

var unitTokenRegex = regexp.MustCompile(`(\d+(?:[.,]\d+)?)(\s*)([a-z.%]+)`)

// CanonicalizeUnits rewrites the unit token after each number to its
// canonical dictionary spelling ("gr" -> "g", "ug" -> "mcg",
// "u.i." -> "ui") so the dose scan only has to know one spelling per
// unit. Tokens the dictionary does not know stay untouched.
func CanonicalizeUnits(text string, units interface{ MatchExact(string) (string, bool) }) string {
	normalized := textutil.Normalize(text)
	return unitTokenRegex.ReplaceAllStringFunc(normalized, func(match string) string {
		groups := unitTokenRegex.FindStringSubmatch(match)
		canonical, hit := units.MatchExact(groups[3])
		if !hit {
			return match
		}
		return groups[1] + groups[2] + canonical
	})
}

var firstIntegerRegex = regexp.MustCompile(`\b(\d{1,4})\b`)
var countWordRegex = regexp.MustCompile(`(?:x\s*)?(\d{1,4})\s*([a-z]+)`)

// ParseUnitCount finds the package unit count in a product name: the
// first integer followed by a known pharmaceutical-form word
// ("x 30 comprimidos" -> 30), falling back to the first bare integer
// anywhere in the text. nil means no integer at all.
func ParseUnitCount(text string, forms interface{ Match(string) (string, bool) }) *int {
	normalized := textutil.Normalize(text)

	for _, groups := range countWordRegex.FindAllStringSubmatch(normalized, -1) {
		if _, hit := forms.Match(groups[2]); !hit {
			continue
		}
		n, err := strconv.Atoi(groups[1])
		if err != nil {
			continue
		}
		return &n
	}

	groups := firstIntegerRegex.FindStringSubmatch(normalized)
	if len(groups) < 2 {
		return nil
	}
	n, err := strconv.Atoi(groups[1])
	if err != nil {
		return nil
	}
	return &n
}
