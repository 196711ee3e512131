// Package sources holds the registry of pages quotes are scraped from.
package sources

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"quotescraper/internal/scrape"
	"quotescraper/lib/htmlutil"
	"quotescraper/lib/textutil"
)

const (
	Yahoo         scrape.SourceId = "yahoo"
	SeekingAlpha  scrape.SourceId = "seekingalpha"
	GoogleFinance scrape.SourceId = "googlefinance"
	CNBC          scrape.SourceId = "cnbc"
)

func price(text string) string {
	return textutil.StripCurrency(htmlutil.CleanText(text))
}

func parenthesized(text string) string {
	return textutil.Parenthesized(htmlutil.CleanText(text))
}

func clean(text string) string {
	return htmlutil.CleanText(text)
}

var yahoo = scrape.Source{
	Id:       Yahoo,
	BaseUrl:  "https://finance.yahoo.com/quote/",
	BuildUrl: scrape.TickerPath,
	Rules: map[scrape.AttrId]scrape.AttributeRule{
		scrape.Price: {
			Selectors: func(stock scrape.Stock) []string {
				return []string{
					`fin-streamer[data-field="regularMarketPrice"][data-symbol="` + cssString(stock.Ticker) + `"]`,
					`fin-streamer.Fw\(b\).Fz\(36px\).Mb\(-4px\).D\(ib\)`,
				}
			},
			Transform: price,
		},
		scrape.PercentChange: {
			Selectors: func(stock scrape.Stock) []string {
				return []string{
					`fin-streamer[data-field="regularMarketChangePercent"][data-symbol="` + cssString(stock.Ticker) + `"]`,
				}
			},
			Transform: parenthesized,
		},
		scrape.PriceToEarnings: {
			Selectors: scrape.StaticSelectors(
				`fin-streamer[data-field="trailingPE"]`,
				`td[data-test="PE_RATIO-value"]`,
			),
			Transform: clean,
		},
	},
}

var seekingAlpha = scrape.Source{
	Id:       SeekingAlpha,
	BaseUrl:  "https://seekingalpha.com/symbol/",
	BuildUrl: scrape.TickerPath,
	Rules: map[scrape.AttrId]scrape.AttributeRule{
		scrape.Price: {
			Selectors: scrape.StaticSelectors(`[data-test-id="symbol-price"]`),
			Transform: price,
		},
		scrape.PercentChange: {
			Selectors: scrape.StaticSelectors(`[data-test-id="symbol-change"]`),
			Transform: parenthesized,
		},
	},
}

var googleFinance = scrape.Source{
	Id:            GoogleFinance,
	BaseUrl:       "https://www.google.com/finance/quote/",
	BuildUrl:      scrape.TickerExchangePath,
	NeedsExchange: true,
	Rules: map[scrape.AttrId]scrape.AttributeRule{
		scrape.Price: {
			Selectors: scrape.StaticSelectors(`div.YMlKec.fxKbKc`),
			Transform: price,
		},
		scrape.PercentChange: {
			Selectors: scrape.StaticSelectors(`div.yWOrNb span[jsname="Fe7oBc"].NydbP div.JwB6zf`),
			Transform: clean,
		},
	},
}

var cnbc = scrape.Source{
	Id:       CNBC,
	BaseUrl:  "https://www.cnbc.com/quotes/",
	BuildUrl: cnbcUrl,
	Rules: map[scrape.AttrId]scrape.AttributeRule{
		scrape.Price: {
			Selectors: scrape.StaticSelectors(`span.QuoteStrip-lastPrice`),
			Transform: price,
		},
		scrape.PercentChange: {
			Selectors: scrape.StaticSelectors(
				`span.QuoteStrip-changeUp`,
				`span.QuoteStrip-changeDown`,
				`span.QuoteStrip-unchanged`,
			),
			Transform: parenthesized,
		},
		scrape.PriceToEarnings: {
			Selectors: scrape.StaticSelectors(
				`li.Summary-stat:has(span.Summary-label:contains("P/E")) span.Summary-value`,
			),
			Transform: clean,
		},
	},
}

// cnbc quote pages have no trailing slash.
func cnbcUrl(baseUrl string, stock scrape.Stock) (string, error) {
	return baseUrl + url.PathEscape(stock.Ticker), nil
}

var cssStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// cssString escapes s for use inside a double quoted selector string.
func cssString(s string) string {
	return cssStringEscaper.Replace(s)
}

var registry = []scrape.Source{yahoo, seekingAlpha, googleFinance, cnbc}

// All returns every configured source, the returned slice may be modified.
func All() []scrape.Source {
	out := make([]scrape.Source, len(registry))
	copy(out, registry)
	return out
}

// Ids returns the ids of every configured source, sorted.
func Ids() []string {
	ids := make([]string, len(registry))
	for i, s := range registry {
		ids[i] = string(s.Id)
	}
	sort.Strings(ids)
	return ids
}

// Get looks up a source by id, ignoring case and whitespace.
func Get(name string) (scrape.Source, error) {
	normalized := textutil.NormalizeName(name)
	for _, s := range registry {
		if string(s.Id) == normalized {
			return s, nil
		}
	}
	suggestion := scrape.Suggest(normalized, Ids())
	if suggestion != "" {
		return scrape.Source{}, fmt.Errorf("unknown source %q, did you mean %q?", name, suggestion)
	}
	return scrape.Source{}, fmt.Errorf("unknown source %q, known sources: %s", name, strings.Join(Ids(), ", "))
}

// Lookup resolves a list of source ids, an empty list means every source.
func Lookup(names []string) ([]scrape.Source, error) {
	if len(names) == 0 {
		return All(), nil
	}
	seen := map[scrape.SourceId]bool{}
	var out []scrape.Source
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		s, err := Get(name)
		if err != nil {
			return nil, err
		}
		if seen[s.Id] {
			continue
		}
		seen[s.Id] = true
		out = append(out, s)
	}
	if len(out) == 0 {
		return All(), nil
	}
	return out, nil
}
