package scrape

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestResolveAllCombinesSources(t *testing.T) {
	stock := Stock{Ticker: "GOOG", Exchange: "NASDAQ"}
	priceOnly := testSource("priceonly", Price)
	pctchOnly := testSource("pctchonly", PercentChange)
	sources := []Source{priceOnly, pctchOnly}

	for _, order := range [][]int{{0, 1}, {1, 0}} {
		provider := newFakeProvider()
		provider.pages[sourceUrl(priceOnly, stock)] = page("price", "101.50")
		provider.pages[sourceUrl(pctchOnly, stock)] = page("pctch", "+1.2%")

		engine := NewEngine(provider, EngineOptions{
			Telemetry: &recordingAPI{},
			Order:     fixedOrder(order...),
		})
		result := engine.ResolveAll(context.Background(), stock, sources, []AttrId{Price, PercentChange})

		require.Equal(t, ResolutionMap{
			Price:         Ok("101.50"),
			PercentChange: Ok("+1.2%"),
		}, result)
		require.Equal(t, 2, provider.totalCalls())
	}
}

func TestResolveAllKeepsFirstValue(t *testing.T) {
	provider := newFakeProvider()
	stock := Stock{Ticker: "GOOG", Exchange: "NASDAQ"}

	priceOnly := testSource("priceonly", Price)
	both := testSource("both", Price, PercentChange)
	provider.pages[sourceUrl(priceOnly, stock)] = page("price", "101.50")
	provider.pages[sourceUrl(both, stock)] = page("price", "999", "pctch", "+1.2%")

	engine := NewEngine(provider, EngineOptions{
		Telemetry: &recordingAPI{},
		Order:     fixedOrder(0, 1),
	})
	result := engine.ResolveAll(context.Background(), stock, []Source{priceOnly, both}, []AttrId{Price, PercentChange})

	require.Equal(t, ResolutionMap{
		Price:         Ok("101.50"),
		PercentChange: Ok("+1.2%"),
	}, result)
	require.Equal(t, 2, provider.totalCalls())
}

func TestResolveAllExchangeRequired(t *testing.T) {
	provider := newFakeProvider()
	source := testSource("exchanged", Price)
	source.NeedsExchange = true
	source.BuildUrl = TickerExchangePath

	tel := &recordingAPI{}
	engine := NewEngine(provider, EngineOptions{Telemetry: tel})
	result := engine.ResolveAll(context.Background(), Stock{Ticker: "GOOG"}, []Source{source}, []AttrId{Price})

	require.Len(t, result, 1)
	require.ErrorIs(t, result[Price].Err, ErrNotFound)
	require.Equal(t, 0, provider.totalCalls())
	// an exchange-less stock is an expected skip, not something to warn about
	require.Empty(t, tel.find("warning", "scrape: engine.resolve-source"))
	require.Len(t, tel.find("debug", "scrape: engine.resolve-source"), 1)
}

func TestResolveAllStopsWhenComplete(t *testing.T) {
	provider := newFakeProvider()
	stock := Stock{Ticker: "MSFT"}

	var sources []Source
	for i := 0; i < 4; i++ {
		s := testSource(SourceId(fmt.Sprintf("s%d", i)), Price, PercentChange)
		provider.pages[sourceUrl(s, stock)] = page("price", "1", "pctch", "2")
		sources = append(sources, s)
	}

	engine := NewEngine(provider, EngineOptions{
		Telemetry: &recordingAPI{},
		Order:     fixedOrder(2, 0, 1, 3),
	})
	result := engine.ResolveAll(context.Background(), stock, sources, []AttrId{Price, PercentChange})

	require.True(t, result.Complete())
	require.Equal(t, 1, provider.totalCalls())
	require.Equal(t, 1, provider.callsTo(sourceUrl(sources[2], stock)))
}

func TestResolveAllNothingRequested(t *testing.T) {
	provider := newFakeProvider()
	engine := NewEngine(provider, EngineOptions{Telemetry: &recordingAPI{}})
	result := engine.ResolveAll(context.Background(), Stock{Ticker: "MSFT"}, []Source{testSource("a", Price)}, nil)
	require.Empty(t, result)
	require.Equal(t, 0, provider.totalCalls())
}

func TestResolveAllNoSources(t *testing.T) {
	engine := NewEngine(newFakeProvider(), EngineOptions{Telemetry: &recordingAPI{}})
	result := engine.ResolveAll(context.Background(), Stock{Ticker: "MSFT"}, nil, AllAttrs())
	require.Len(t, result, len(AllAttrs()))
	for _, r := range result {
		require.ErrorIs(t, r.Err, ErrNotFound)
	}
}

func TestResolveAllFailedSourceContributesNothing(t *testing.T) {
	provider := newFakeProvider()
	stock := Stock{Ticker: "MSFT"}

	partial := testSource("partial", Price)
	down := testSource("down", Price, PercentChange)
	provider.pages[sourceUrl(partial, stock)] = page("price", "1")

	tel := &recordingAPI{}
	engine := NewEngine(provider, EngineOptions{
		Telemetry: tel,
		Order:     fixedOrder(0, 1),
	})
	result := engine.ResolveAll(context.Background(), stock, []Source{partial, down}, []AttrId{Price, PercentChange})

	require.Equal(t, Ok("1"), result[Price])
	// the error comes from "partial", "down" never produced a map
	require.ErrorIs(t, result[PercentChange].Err, ErrUnsupportedAttribute)
	require.ErrorContains(t, result[PercentChange].Err, "partial")

	warnings := tel.find("warning", "scrape: engine.resolve-source")
	require.Len(t, warnings, 1)
	require.Equal(t, SourceId("down"), warnings[0].params[1])
}

func TestResolveAllLastErrorWins(t *testing.T) {
	provider := newFakeProvider()
	stock := Stock{Ticker: "MSFT"}

	missing := testSource("missing", Price)
	unsupported := testSource("unsupported", PercentChange)
	provider.pages[sourceUrl(missing, stock)] = page()
	provider.pages[sourceUrl(unsupported, stock)] = page()

	engine := NewEngine(provider, EngineOptions{
		Telemetry: &recordingAPI{},
		Order:     fixedOrder(0, 1),
	})
	result := engine.ResolveAll(context.Background(), stock, []Source{missing, unsupported}, []AttrId{Price})
	require.ErrorIs(t, result[Price].Err, ErrUnsupportedAttribute)

	engine = NewEngine(provider, EngineOptions{
		Telemetry: &recordingAPI{},
		Order:     fixedOrder(1, 0),
	})
	result = engine.ResolveAll(context.Background(), stock, []Source{missing, unsupported}, []AttrId{Price})
	require.ErrorIs(t, result[Price].Err, ErrNotFound)
	require.ErrorContains(t, result[Price].Err, "missing")
}

func TestResolveAllFirstSuccessWins(t *testing.T) {
	stock := Stock{Ticker: "AAPL"}
	provider := newFakeProvider()

	var sources []Source
	for i := 0; i < 6; i++ {
		s := testSource(SourceId(fmt.Sprintf("s%d", i)), Price)
		if i%2 == 0 {
			provider.pages[sourceUrl(s, stock)] = page("price", fmt.Sprintf("v%d", i))
		} else {
			provider.pages[sourceUrl(s, stock)] = page()
		}
		sources = append(sources, s)
	}

	for seed := int64(0); seed < 20; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			order := func(n int) []int {
				return rand.New(rand.NewSource(seed)).Perm(n)
			}
			expected := ""
			for _, idx := range order(len(sources)) {
				if idx%2 == 0 {
					expected = fmt.Sprintf("v%d", idx)
					break
				}
			}

			engine := NewEngine(provider, EngineOptions{
				Telemetry: &recordingAPI{},
				Order:     order,
			})
			result := engine.ResolveAll(context.Background(), stock, sources, []AttrId{Price})
			require.Equal(t, Ok(expected), result[Price])
		})
	}
}

func TestResolveAllCancelled(t *testing.T) {
	provider := newFakeProvider()
	stock := Stock{Ticker: "MSFT"}
	source := testSource("a", Price)
	provider.pages[sourceUrl(source, stock)] = page("price", "1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(provider, EngineOptions{Telemetry: &recordingAPI{}})
	result := engine.ResolveAll(ctx, stock, []Source{source}, []AttrId{Price})
	require.ErrorIs(t, result[Price].Err, ErrNotFound)
	require.Equal(t, 0, provider.totalCalls())
}

func TestResolveAllParallelMatchesSequential(t *testing.T) {
	provider := newFakeProvider()
	stock := Stock{Ticker: "GOOG", Exchange: "NASDAQ"}

	price := testSource("price", Price)
	pctch := testSource("pctch", PercentChange)
	pe := testSource("pe", PriceToEarnings)
	down := testSource("down", Price, PercentChange, PriceToEarnings)
	provider.pages[sourceUrl(price, stock)] = page("price", "101.50")
	provider.pages[sourceUrl(pctch, stock)] = page("pctch", "+1.2%")
	provider.pages[sourceUrl(pe, stock)] = page("pe", "24.1")
	sources := []Source{down, price, pctch, pe}

	sequential := NewEngine(provider, EngineOptions{
		Telemetry: &recordingAPI{},
		Order:     fixedOrder(0, 1, 2, 3),
	})
	parallel := NewEngine(provider, EngineOptions{
		Telemetry:   &recordingAPI{},
		Order:       fixedOrder(0, 1, 2, 3),
		Parallelism: 3,
	})

	expected := sequential.ResolveAll(context.Background(), stock, sources, AllAttrs())
	require.True(t, expected.Complete())
	for i := 0; i < 10; i++ {
		require.Equal(t, expected, parallel.ResolveAll(context.Background(), stock, sources, AllAttrs()))
	}
}

// blockingProvider serves pages immediately except for urls in `block`,
// which only return once their context is cancelled.
type blockingProvider struct {
	*fakeProvider
	block map[string]bool
}

func (p blockingProvider) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if p.block[url] {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, ctx.Err())
	}
	return p.fakeProvider.Fetch(ctx, url)
}

func TestResolveAllParallelCancelsRemaining(t *testing.T) {
	stock := Stock{Ticker: "GOOG"}
	fast := testSource("fast", Price, PercentChange)
	slow := testSource("slow", Price, PercentChange)

	provider := blockingProvider{
		fakeProvider: newFakeProvider(),
		block:        map[string]bool{sourceUrl(slow, stock): true},
	}
	provider.pages[sourceUrl(fast, stock)] = page("price", "1", "pctch", "2")

	engine := NewEngine(provider, EngineOptions{
		Telemetry:   &recordingAPI{},
		Order:       fixedOrder(0, 1),
		Parallelism: 2,
	})

	done := make(chan ResolutionMap)
	go func() {
		done <- engine.ResolveAll(context.Background(), stock, []Source{slow, fast}, []AttrId{Price, PercentChange})
	}()

	select {
	case result := <-done:
		require.Equal(t, ResolutionMap{Price: Ok("1"), PercentChange: Ok("2")}, result)
	case <-time.After(5 * time.Second):
		t.Fatal("ResolveAll did not return after the map was complete")
	}
}

func TestRandomOrder(t *testing.T) {
	for n := 0; n < 8; n++ {
		order := RandomOrder(n)
		require.Len(t, order, n)
		seen := map[int]bool{}
		for _, idx := range order {
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, n)
			seen[idx] = true
		}
		require.Len(t, seen, n)
	}
}

func TestResolveAllDuplicateAttrs(t *testing.T) {
	provider := newFakeProvider()
	stock := Stock{Ticker: "MSFT"}
	source := testSource("a", Price)
	provider.pages[sourceUrl(source, stock)] = page("price", " 1 ")

	engine := NewEngine(provider, EngineOptions{Telemetry: &recordingAPI{}})
	result := engine.ResolveAll(context.Background(), stock, []Source{source}, []AttrId{Price, Price})
	require.Equal(t, ResolutionMap{Price: Ok("1")}, result)
	require.False(t, strings.Contains(result[Price].Value, " "))
}
