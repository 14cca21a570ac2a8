package scraper

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("services/harvest/scraper")
