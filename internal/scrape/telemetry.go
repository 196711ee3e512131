package scrape

import (
	"quotescraper/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_engine_resolve_source      = "engine.resolve-source"
	report_extractor_compile_selector = "extractor.compile-selector"
)

var tracer = telemetry.Tracer("quotescraper.internal.scrape")

var meter = otel.Meter("quotescraper.internal.scrape")
var sourceVisits, _ = meter.Int64Counter(
	"scrape.source_visits",
	metric.WithDescription("source pages visited, by source and outcome"),
)
