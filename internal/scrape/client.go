package scrape

import (
	"context"
	"fmt"
)

// Placeholder is shown in place of attributes that could not be resolved.
const Placeholder = "?"

// Client resolves attributes against a fixed list of sources.
type Client struct {
	engine  *Engine
	sources []Source
}

func NewClient(engine *Engine, sources []Source) Client {
	return Client{engine: engine, sources: sources}
}

func (c Client) Sources() []Source {
	return c.sources
}

// Resolve looks up `attrs` for a ticker, with no attrs meaning all of them.
// An empty exchange means the exchange is unknown. It only fails when the
// ticker is empty.
func (c Client) Resolve(ctx context.Context, ticker, exchange string, attrs ...AttrId) (ResolutionMap, error) {
	stock, err := NewStock(ticker, exchange)
	if err != nil {
		return nil, err
	}
	return c.ResolveStock(ctx, stock, attrs...), nil
}

func (c Client) ResolveStock(ctx context.Context, stock Stock, attrs ...AttrId) ResolutionMap {
	if len(attrs) == 0 {
		attrs = AllAttrs()
	}
	return c.engine.ResolveAll(ctx, stock, c.sources, attrs)
}

// Quote resolves the price and percent change of a stock into a single line.
func (c Client) Quote(ctx context.Context, stock Stock) string {
	m := c.ResolveStock(ctx, stock, Price, PercentChange)
	return FormatQuote(stock, m)
}

// FormatQuote renders `{ticker}: {price} ({percent change})`, unresolved
// attributes are replaced with Placeholder.
func FormatQuote(stock Stock, m ResolutionMap) string {
	return fmt.Sprintf(
		"%s: %s (%s)",
		stock.Ticker,
		m.ValueOr(Price, Placeholder),
		m.ValueOr(PercentChange, Placeholder),
	)
}
