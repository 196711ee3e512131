package scrape

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ResolveFromSource fetches the page of `source` once and extracts every
// requested attribute from it.
//
// It only fails when the url cannot be built or the page cannot be fetched,
// otherwise the returned map has one entry per requested attribute.
func (e *Engine) ResolveFromSource(ctx context.Context, stock Stock, source Source, attrs []AttrId) (ResolutionMap, error) {
	ctx, span := tracer.Start(ctx, "Engine:ResolveFromSource", trace.WithAttributes(
		attribute.String("source", string(source.Id)),
		attribute.String("stock", stock.String()),
	))
	defer span.End()

	link, err := source.Url(stock)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build url")
		return nil, err
	}
	span.SetAttributes(attribute.String("url", link))

	doc, err := e.provider.Fetch(ctx, link)
	if err != nil {
		err = fmt.Errorf("%s: %w", source.Id, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch document")
		return nil, err
	}

	attrs = uniqueAttrs(attrs)
	results := make(ResolutionMap, len(attrs))
	for _, attr := range attrs {
		rule, ok := source.Rules[attr]
		if !ok {
			results[attr] = Fail(fmt.Errorf("%s: %w: %s", source.Id, ErrUnsupportedAttribute, attr))
			continue
		}

		var selectors []string
		if rule.Selectors != nil {
			selectors = rule.Selectors(stock)
		}
		value, err := Extract(doc, selectors, rule.Transform)
		if err != nil {
			if errors.Is(err, ErrSelectorSyntax) {
				e.tel.ReportBroken(report_extractor_compile_selector, err, source.Id, attr.String())
			}
			results[attr] = Fail(fmt.Errorf("%s: %w", source.Id, err))
			continue
		}
		results[attr] = Ok(value)
	}

	return results, nil
}
