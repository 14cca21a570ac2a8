// Package harvest orchestrates live scraping of VitiBrasil datasets with a
// snapshot-store fallback, and the bulk re-harvest that keeps the snapshot
// store populated.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vitiharvest-backend/services/harvest/db"
	"vitiharvest-backend/services/harvest/query"
	"vitiharvest-backend/services/harvest/scraper"
	"vitiharvest-backend/services/harvest/table"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/harvest")

type Service struct {
	scraper scraper.Client
	store   db.Store
}

func NewService(client scraper.Client, store db.Store) Service {
	return Service{
		scraper: client,
		store:   store,
	}
}

// Result is one harvested dataset plus the echo of the request that
// produced it.
type Result struct {
	OriginalOption    query.Option `json:"original_option"`
	OriginalYear      string       `json:"original_year"`
	OriginalSubOption string       `json:"original_sub_option,omitempty"`
	table.Table
}

// FallbackUnavailableError means the live harvest failed and the snapshot
// store could not stand in for it either.
type FallbackUnavailableError struct {
	Live     error
	Fallback error
}

func (e *FallbackUnavailableError) Error() string {
	return fmt.Sprintf(
		"live harvest failed (%s) and the snapshot fallback failed too: %s",
		e.Live, e.Fallback,
	)
}

func (e *FallbackUnavailableError) Unwrap() error { return e.Fallback }

// shouldFallback narrows the fallback trigger to transient or structural
// live failures; anything else is a bug and propagates as-is.
func shouldFallback(err error) bool {
	var fetchErr *scraper.FetchError
	var markupErr *scraper.MarkupError
	return errors.As(err, &fetchErr) || errors.As(err, &markupErr)
}

// Harvest scrapes the live site for d and, when the site is unreachable or
// its markup unusable, substitutes the snapshot store transparently. The
// live source is never retried.
func (s Service) Harvest(ctx context.Context, d query.Descriptor) (Result, error) {
	ctx, span := tracer.Start(ctx, "Harvest")
	defer span.End()
	span.SetAttributes(
		attribute.String("option", string(d.OriginalOption)),
		attribute.String("year", d.OriginalYear),
		attribute.String("sub_option", d.OriginalSubOption),
	)

	t, liveErr := s.scraper.Scrape(ctx, d)
	if liveErr == nil {
		return s.result(d, t), nil
	}
	if !shouldFallback(liveErr) {
		span.RecordError(liveErr)
		span.SetStatus(codes.Error, "harvest failed")
		return Result{}, liveErr
	}

	span.AddEvent("falling back to snapshot store")
	slog.WarnContext(
		ctx, "live harvest failed, querying snapshot store",
		"option", d.OriginalOption,
		"year", d.OriginalYear,
		"err", liveErr,
	)

	t, err := s.store.QuerySnapshot(ctx, d)
	if err != nil {
		err = &FallbackUnavailableError{Live: liveErr, Fallback: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback unavailable")
		return Result{}, err
	}
	return s.result(d, t), nil
}

func (s Service) result(d query.Descriptor, t table.Table) Result {
	return Result{
		OriginalOption:    d.OriginalOption,
		OriginalYear:      d.OriginalYear,
		OriginalSubOption: d.OriginalSubOption,
		Table:             t,
	}
}
