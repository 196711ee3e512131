package scrape

import (
	"context"
	"errors"
	"math/rand"

	"quotescraper/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// OrderFunc returns the order in which `n` sources are visited, as a
// permutation of [0, n).
type OrderFunc func(n int) []int

// RandomOrder is a uniformly random permutation, drawn fresh on every call.
func RandomOrder(n int) []int {
	return rand.Perm(n)
}

type EngineOptions struct {
	// if nil, reports go to telemetry.SlogAPI
	Telemetry telemetry.API
	// if nil, RandomOrder is used
	Order OrderFunc
	// the maximum amount of sources visited at once, values below 2 visit
	// sources one at a time in order
	Parallelism int
}

// Engine resolves stock attributes across several sources, visiting sources
// until every requested attribute has a value.
//
// An Engine is safe for concurrent use if its DocumentProvider is.
type Engine struct {
	provider    DocumentProvider
	tel         telemetry.API
	order       OrderFunc
	parallelism int
}

func NewEngine(provider DocumentProvider, opts EngineOptions) *Engine {
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	order := opts.Order
	if order == nil {
		order = RandomOrder
	}
	return &Engine{
		provider:    provider,
		tel:         telemetry.NewScopedAPI("scrape", tel),
		order:       order,
		parallelism: opts.Parallelism,
	}
}

// ResolveAll returns a map with exactly one entry per requested attribute.
//
// Sources are visited in the order given by the engine's OrderFunc. The
// first value found for an attribute is kept, later sources can only
// replace failures. Visiting stops as soon as every attribute has a value.
// A source that fails as a whole contributes nothing. ResolveAll itself never
// fails, attributes no source could provide hold the last error seen.
func (e *Engine) ResolveAll(ctx context.Context, stock Stock, sources []Source, attrs []AttrId) ResolutionMap {
	ctx, span := tracer.Start(ctx, "Engine:ResolveAll", trace.WithAttributes(
		attribute.String("stock", stock.String()),
		attribute.Int("sources", len(sources)),
	))
	defer span.End()

	attrs = uniqueAttrs(attrs)
	result := newResolutionMap(attrs)
	order := e.order(len(sources))

	if e.parallelism > 1 {
		e.resolveParallel(ctx, stock, sources, order, attrs, result)
	} else {
		e.resolveSequential(ctx, stock, sources, order, attrs, result)
	}

	span.SetAttributes(attribute.Bool("complete", result.Complete()))
	return result
}

func (e *Engine) resolveSequential(
	ctx context.Context,
	stock Stock,
	sources []Source,
	order []int,
	attrs []AttrId,
	result ResolutionMap,
) {
	for _, idx := range order {
		if result.Complete() || ctx.Err() != nil {
			return
		}
		source := sources[idx]
		found, err := e.ResolveFromSource(ctx, stock, source, attrs)
		e.merge(ctx, source, result, found, err)
	}
}

type visit struct {
	source Source
	found  ResolutionMap
	err    error
}

// resolveParallel visits up to e.parallelism sources at once. Results are
// merged only by the calling goroutine, once the map is complete the
// remaining visits are cancelled and their results dropped.
func (e *Engine) resolveParallel(
	ctx context.Context,
	stock Stock,
	sources []Source,
	order []int,
	attrs []AttrId,
	result ResolutionMap,
) {
	if result.Complete() {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	visits := make(chan visit)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.parallelism)

	go func() {
		defer close(visits)
		for _, idx := range order {
			if groupCtx.Err() != nil {
				break
			}
			source := sources[idx]
			group.Go(func() error {
				if groupCtx.Err() != nil {
					return nil
				}
				found, err := e.ResolveFromSource(groupCtx, stock, source, attrs)
				select {
				case visits <- visit{source: source, found: found, err: err}:
				case <-groupCtx.Done():
				}
				return nil
			})
		}
		group.Wait()
	}()

	for v := range visits {
		if result.Complete() {
			continue
		}
		e.merge(ctx, v.source, result, v.found, v.err)
		if result.Complete() {
			cancel()
		}
	}
}

func (e *Engine) merge(ctx context.Context, source Source, result ResolutionMap, found ResolutionMap, err error) {
	if err != nil {
		// stocks without an exchange skip such sources on every lookup
		if errors.Is(err, ErrExchangeMissing) {
			e.tel.ReportDebug(report_engine_resolve_source, err, source.Id)
		} else {
			e.tel.ReportWarning(report_engine_resolve_source, err, source.Id)
		}
		sourceVisits.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", string(source.Id)),
			attribute.String("outcome", "failed"),
		))
		return
	}
	result.Coalesce(found)
	sourceVisits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", string(source.Id)),
		attribute.String("outcome", "ok"),
	))
}
