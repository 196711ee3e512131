package scrape

import (
	"fmt"
	"net/url"
)

// SourceId names a data source.
type SourceId string

// SelectorProvider returns the candidate selectors for an attribute in the
// order they should be tried, it may embed details of the stock.
type SelectorProvider func(stock Stock) []string

// Transform cleans up the raw text of a matched element, it must not fail.
type Transform func(text string) string

// UrlBuilder builds the page url of a stock from a source's base url.
type UrlBuilder func(baseUrl string, stock Stock) (string, error)

// AttributeRule describes how to extract one attribute from a source's page.
type AttributeRule struct {
	Selectors SelectorProvider
	Transform Transform
}

// Source is the static description of a page that offers stock attributes.
type Source struct {
	Id            SourceId
	BaseUrl       string
	BuildUrl      UrlBuilder
	NeedsExchange bool
	Rules         map[AttrId]AttributeRule
}

// Url builds the page url for `stock`, failing with ErrExchangeMissing when
// the source needs an exchange the stock does not have.
func (s Source) Url(stock Stock) (string, error) {
	if s.NeedsExchange && !stock.HasExchange() {
		return "", fmt.Errorf("%s: %w", s.Id, ErrExchangeMissing)
	}
	if s.BuildUrl == nil {
		return TickerPath(s.BaseUrl, stock)
	}
	return s.BuildUrl(s.BaseUrl, stock)
}

func (s Source) Supports(attr AttrId) bool {
	_, ok := s.Rules[attr]
	return ok
}

// StaticSelectors returns a SelectorProvider that ignores the stock.
func StaticSelectors(selectors ...string) SelectorProvider {
	return func(Stock) []string {
		return selectors
	}
}

// TickerPath builds `<base><ticker>/`, the ticker is escaped as a single
// path segment.
func TickerPath(baseUrl string, stock Stock) (string, error) {
	return fmt.Sprintf("%s%s/", baseUrl, url.PathEscape(stock.Ticker)), nil
}

// TickerExchangePath builds `<base><ticker>:<exchange>`.
func TickerExchangePath(baseUrl string, stock Stock) (string, error) {
	if !stock.HasExchange() {
		return "", ErrExchangeMissing
	}
	return fmt.Sprintf("%s%s:%s", baseUrl, url.PathEscape(stock.Ticker), url.PathEscape(stock.Exchange)), nil
}
