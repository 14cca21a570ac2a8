package harvest

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"vitiharvest-backend/services/harvest/db"
	"vitiharvest-backend/services/harvest/query"
	"vitiharvest-backend/services/harvest/scraper"
	"vitiharvest-backend/services/harvest/table"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// BulkKey identifies one bulk-harvest iteration.
type BulkKey struct {
	Year      int    `json:"year"`
	SubOption string `json:"sub_option,omitempty"`
}

// BulkReport lists what a bulk run managed to persist and the per-iteration
// failures it tolerated along the way.
type BulkReport struct {
	Processed []BulkKey `json:"processed"`
	Errors    []string  `json:"errors,omitempty"`
}

// BulkHarvest re-harvests opt's entire historical span (every valid year,
// crossed with every sub-option when opt has them) from the live site and
// persists the results as snapshot records. The first write of the run
// replaces the option's table, every later write appends. A failed
// iteration is recorded and skipped, never fatal; only context
// cancellation aborts the run.
//
// progress may be nil; when set it is called after every iteration.
func (s Service) BulkHarvest(ctx context.Context, opt query.Option, progress func(done, total int)) (BulkReport, error) {
	ctx, span := tracer.Start(ctx, "BulkHarvest")
	defer span.End()
	span.SetAttributes(attribute.String("option", string(opt)))

	passes := opt.SubOptions()
	if len(passes) == 0 {
		passes = []string{""}
	}
	total := (opt.LastYear() - query.FirstYear + 1) * len(passes)

	var report BulkReport
	replaced := false
	done := 0

	for year := query.FirstYear; year <= opt.LastYear(); year++ {
		for _, sub := range passes {
			if err := ctx.Err(); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "canceled")
				return report, err
			}

			err := s.bulkIteration(ctx, opt, year, sub, !replaced)
			done++
			if progress != nil {
				progress(done, total)
			}
			if err != nil {
				report.Errors = append(report.Errors, bulkErrorMessage(year, sub, err))
				continue
			}
			replaced = true
			report.Processed = append(report.Processed, BulkKey{Year: year, SubOption: sub})
		}
	}

	span.SetAttributes(
		attribute.Int("processed", len(report.Processed)),
		attribute.Int("errors", len(report.Errors)),
	)
	return report, nil
}

func bulkErrorMessage(year int, sub string, err error) string {
	if sub == "" {
		return fmt.Sprintf("year %d: %s", year, err)
	}
	return fmt.Sprintf("year %d, sub-option %s: %s", year, sub, err)
}

func (s Service) bulkIteration(ctx context.Context, opt query.Option, year int, sub string, replace bool) error {
	params := map[string]string{
		"option": string(opt),
		"year":   strconv.Itoa(year),
	}
	if sub != "" {
		params["sub_option"] = sub
	}
	d, err := query.Validate(params)
	if err != nil {
		return err
	}

	doc, err := s.scraper.FetchDocument(ctx, d)
	if err != nil {
		return err
	}
	t, err := scraper.ExtractTable(doc, opt)
	if err != nil {
		return err
	}

	if opt.Discipline() == query.DisciplineCountry {
		records, err := countryRecords(t, sub, year)
		if err != nil {
			return err
		}
		return s.store.WriteCountryRows(ctx, opt, records, replace)
	}

	labeled, err := scraper.ExtractLabeledRows(doc)
	if err != nil {
		return err
	}
	records, err := categoryRecords(t, labeled, sub, year)
	if err != nil {
		return err
	}
	return s.store.WriteCategoryRows(ctx, opt, records, replace)
}

// normalizeQuantity strips thousands separators and maps the upstream's
// empty-value marker to zero.
func normalizeQuantity(q string) string {
	if q == "-" {
		return "0"
	}
	return strings.ReplaceAll(q, ".", "")
}

// categoryRecords reshapes one harvested category table into its persisted
// form: a header-echo row, one leveled row per body row (sub-items carry
// the category that was open above them) and a totals row.
func categoryRecords(t table.Table, labeled []scraper.LabeledRow, sub string, year int) ([]db.CategoryRecord, error) {
	if len(t.Headers) < 2 || len(t.Footers) < 2 {
		return nil, fmt.Errorf(
			"expected at least 2 header and footer cells, got %d and %d",
			len(t.Headers), len(t.Footers),
		)
	}

	records := []db.CategoryRecord{{
		Product:   t.Headers[0],
		Quantity:  t.Headers[1],
		Level:     db.LevelHeader,
		SubOption: sub,
		Year:      year,
	}}

	var currentCategory sql.NullString
	for _, row := range labeled {
		r := db.CategoryRecord{
			Product:   row.Product,
			Quantity:  normalizeQuantity(row.Quantity),
			SubOption: sub,
			Year:      year,
		}
		if row.Item {
			r.Level = db.LevelItem
			currentCategory = sql.NullString{String: row.Product, Valid: true}
		} else {
			r.Level = db.LevelSubitem
			r.Category = currentCategory
		}
		records = append(records, r)
	}

	records = append(records, db.CategoryRecord{
		Product:   t.Footers[0],
		Quantity:  normalizeQuantity(t.Footers[1]),
		Level:     db.LevelTotal,
		SubOption: sub,
		Year:      year,
	})
	return records, nil
}

// countryRecords reshapes one harvested country table into its persisted
// form: header-echo row, body triples, totals row. The iteration's
// sub-option becomes the "Categoria" column.
func countryRecords(t table.Table, sub string, year int) ([]db.CountryRecord, error) {
	if len(t.Headers) < 3 || len(t.Footers) < 3 {
		return nil, fmt.Errorf(
			"expected at least 3 header and footer cells, got %d and %d",
			len(t.Headers), len(t.Footers),
		)
	}

	records := []db.CountryRecord{{
		Country:  t.Headers[0],
		Quantity: t.Headers[1],
		Value:    t.Headers[2],
		Category: sub,
		Year:     year,
	}}
	for _, row := range t.Rows.Countries {
		records = append(records, db.CountryRecord{
			Country:  row.Country,
			Quantity: normalizeQuantity(row.Quantity),
			Value:    row.Value,
			Category: sub,
			Year:     year,
		})
	}
	records = append(records, db.CountryRecord{
		Country:  t.Footers[0],
		Quantity: normalizeQuantity(t.Footers[1]),
		Value:    t.Footers[2],
		Category: sub,
		Year:     year,
	})
	return records, nil
}
