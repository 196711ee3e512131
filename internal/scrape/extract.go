package scrape

import (
	"fmt"

	"quotescraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Extract tries `selectors` in order and returns `transform` applied to the
// text of the first element matched by the first selector that matches anything.
//
// A selector that fails to parse stops the search with ErrSelectorSyntax,
// later selectors are not tried.
func Extract(doc *goquery.Document, selectors []string, transform Transform) (string, error) {
	if transform == nil {
		transform = identity
	}
	for _, selector := range selectors {
		compiled, err := cascadia.Compile(selector)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %w", ErrSelectorSyntax, selector, err)
		}
		match := doc.FindMatcher(compiled)
		if match.Length() == 0 {
			continue
		}
		return transform(htmlutil.GetText(match.Nodes[0])), nil
	}
	return "", ErrNotFound
}

func identity(text string) string {
	return text
}
