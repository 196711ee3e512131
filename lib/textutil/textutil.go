package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a name and removes all whitespace from it.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// StripCurrency removes currency symbols and surrounding whitespace, "$1,024.50 " -> "1,024.50".
func StripCurrency(text string) string {
	text = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥':
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}

var parenthesizedRegex = regexp.MustCompile(`.*\((.*)\)`)

// Parenthesized returns the contents of the last pair of parentheses in
// text, "+1.20 (+0.52%)" -> "+0.52%". It returns an empty string if there
// are none.
func Parenthesized(text string) string {
	groups := parenthesizedRegex.FindStringSubmatch(text)
	if len(groups) < 2 {
		return ""
	}
	return groups[1]
}

func Trim(text string) string {
	return strings.TrimSpace(text)
}

func Identity(text string) string {
	return text
}
