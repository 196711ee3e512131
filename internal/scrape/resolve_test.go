package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveFromSource(t *testing.T) {
	ctx := context.Background()
	stock := Stock{Ticker: "GOOG", Exchange: "NASDAQ"}

	t.Run("one fetch for every attribute", func(t *testing.T) {
		provider := newFakeProvider()
		source := testSource("alpha", Price, PercentChange, PriceToEarnings)
		url := sourceUrl(source, stock)
		provider.pages[url] = page("price", "101.50", "pctch", "+1.2%", "pe", "24.1")

		engine := NewEngine(provider, EngineOptions{Telemetry: &recordingAPI{}})
		results, err := engine.ResolveFromSource(ctx, stock, source, []AttrId{Price, PercentChange, PriceToEarnings, Price})
		require.NoError(t, err)
		require.Equal(t, 1, provider.callsTo(url))
		require.Equal(t, ResolutionMap{
			Price:           Ok("101.50"),
			PercentChange:   Ok("+1.2%"),
			PriceToEarnings: Ok("24.1"),
		}, results)
	})

	t.Run("exchange missing never fetches", func(t *testing.T) {
		provider := newFakeProvider()
		source := testSource("exchanged", Price)
		source.NeedsExchange = true

		engine := NewEngine(provider, EngineOptions{Telemetry: &recordingAPI{}})
		results, err := engine.ResolveFromSource(ctx, Stock{Ticker: "GOOG"}, source, []AttrId{Price})
		require.ErrorIs(t, err, ErrExchangeMissing)
		require.Nil(t, results)
		require.Equal(t, 0, provider.totalCalls())
	})

	t.Run("fetch failure fails the whole source", func(t *testing.T) {
		provider := newFakeProvider()
		source := testSource("down", Price)

		engine := NewEngine(provider, EngineOptions{Telemetry: &recordingAPI{}})
		results, err := engine.ResolveFromSource(ctx, stock, source, []AttrId{Price})
		require.ErrorIs(t, err, ErrFetchFailed)
		require.ErrorContains(t, err, "down")
		require.Nil(t, results)
	})

	t.Run("per attribute failures", func(t *testing.T) {
		provider := newFakeProvider()
		source := testSource("partial", Price, PercentChange)
		provider.pages[sourceUrl(source, stock)] = page("price", "101.50")

		engine := NewEngine(provider, EngineOptions{Telemetry: &recordingAPI{}})
		results, err := engine.ResolveFromSource(ctx, stock, source, []AttrId{Price, PercentChange, PriceToEarnings})
		require.NoError(t, err)
		require.Len(t, results, 3)
		require.Equal(t, Ok("101.50"), results[Price])
		require.ErrorIs(t, results[PercentChange].Err, ErrNotFound)
		require.ErrorIs(t, results[PriceToEarnings].Err, ErrUnsupportedAttribute)
		require.ErrorContains(t, results[PriceToEarnings].Err, "partial")
	})

	t.Run("broken selector is reported", func(t *testing.T) {
		provider := newFakeProvider()
		source := testSource("broken", Price)
		source.Rules[PercentChange] = AttributeRule{
			Selectors: StaticSelectors("div[", "#pctch"),
		}
		provider.pages[sourceUrl(source, stock)] = page("price", "101.50", "pctch", "+1.2%")

		tel := &recordingAPI{}
		engine := NewEngine(provider, EngineOptions{Telemetry: tel})
		results, err := engine.ResolveFromSource(ctx, stock, source, []AttrId{Price, PercentChange})
		require.NoError(t, err)
		require.Equal(t, Ok("101.50"), results[Price])
		require.ErrorIs(t, results[PercentChange].Err, ErrSelectorSyntax)
		require.Len(t, tel.find("broken", "scrape: extractor.compile-selector"), 1)
	})

	t.Run("selectors may depend on the stock", func(t *testing.T) {
		provider := newFakeProvider()
		source := testSource("dynamic")
		source.Rules[Price] = AttributeRule{
			Selectors: func(s Stock) []string {
				return []string{`[data-symbol="` + s.Ticker + `"]`}
			},
		}
		provider.pages[sourceUrl(source, stock)] = `<span data-symbol="MSFT">1</span><span data-symbol="GOOG">2</span>`

		engine := NewEngine(provider, EngineOptions{Telemetry: &recordingAPI{}})
		results, err := engine.ResolveFromSource(ctx, stock, source, []AttrId{Price})
		require.NoError(t, err)
		require.Equal(t, Ok("2"), results[Price])
	})
}
