// Package scraper fetches VitiBrasil pages and extracts their data tables.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"vitiharvest-backend/lib/restyutil"
	"vitiharvest-backend/services/harvest/query"
	"vitiharvest-backend/services/harvest/table"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

// FetchError is a failed request against the live site. It is one of the
// two conditions the orchestrator falls back on.
type FetchError struct {
	Url string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %s", e.Url, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to 30s
	Timeout time.Duration
}

type Client struct {
	http    *resty.Client
	baseUrl string
}

func NewClient(opts ClientOptions) Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	restyutil.InstrumentClient(client, "services/harvest/http")

	return Client{
		http:    client,
		baseUrl: opts.BaseUrl,
	}
}

// FetchDocument gets the page for d and parses it. Failures come back as
// *FetchError; a page that isn't the expected table is left for extraction
// to complain about.
func (c Client) FetchDocument(ctx context.Context, d query.Descriptor) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "FetchDocument")
	defer span.End()

	link := BuildUrl(c.baseUrl, d)

	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, &FetchError{Url: link, Err: err}
	}
	if res.IsError() {
		err = fmt.Errorf("upstream returned status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad status")
		return nil, &FetchError{Url: link, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparseable body")
		return nil, &FetchError{Url: link, Err: err}
	}
	return doc, nil
}

// Scrape fetches d's page and extracts the full data table in the
// discipline d's option dictates.
func (c Client) Scrape(ctx context.Context, d query.Descriptor) (table.Table, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	doc, err := c.FetchDocument(ctx, d)
	if err != nil {
		return table.Table{}, err
	}
	t, err := ExtractTable(doc, d.OriginalOption)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return table.Table{}, err
	}
	return t, nil
}
