package htmlutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || c == '\n' {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// FlattenFragment turns an html fragment (a product description blob,
// usually) into plain text with collapsed whitespace. A fragment that
// fails to parse comes back as-is, trimmed.
func FlattenFragment(fragment string) string {
	node, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var parts []string
	collectTextParts(node, &parts)
	text := strings.Join(parts, " ")
	text = removeNonPrintable(text)
	text = innerWhitespace.ReplaceAllString(text, " ")
	return strings.Trim(text, " \t\n")
}

func collectTextParts(node *html.Node, parts *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		trimmed := strings.TrimSpace(node.Data)
		if trimmed != "" {
			*parts = append(*parts, trimmed)
		}
		return
	}
	child := node.FirstChild
	for child != nil {
		collectTextParts(child, parts)
		child = child.NextSibling
	}
}
