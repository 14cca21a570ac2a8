package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"vitiharvest-backend/services/harvest/query"
	"vitiharvest-backend/services/harvest/table"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/harvest/db")

// Row levels the bulk writer stores. Header and total rows bracket each
// (year, sub-option) batch; the fallback query relies on that ordering.
const (
	LevelHeader  = "header"
	LevelItem    = "item"
	LevelSubitem = "subitem"
	LevelTotal   = "total"
)

// QuerySnapshot rebuilds the live extractor's output shape from persisted
// rows matching the descriptor's original year (and sub-option, when the
// option has one). The first stored row of the batch echoes the table
// headers and the last one holds the totals; both are stripped from the
// data rows.
func (s Store) QuerySnapshot(ctx context.Context, d query.Descriptor) (table.Table, error) {
	ctx, span := tracer.Start(ctx, "QuerySnapshot")
	defer span.End()
	span.SetAttributes(
		attribute.String("option", string(d.OriginalOption)),
		attribute.String("year", d.OriginalYear),
	)

	name, err := tableName(d.OriginalOption)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown table")
		return table.Table{}, err
	}
	year, err := strconv.Atoi(d.OriginalYear)
	if err != nil {
		return table.Table{}, fmt.Errorf("descriptor carries a non-integer year %q: %w", d.OriginalYear, err)
	}

	var t table.Table
	if d.OriginalOption.Discipline() == query.DisciplineCountry {
		t, err = s.queryCountrySnapshot(ctx, name, year, d.OriginalSubOption)
	} else {
		t, err = s.queryCategorySnapshot(ctx, name, year, d.OriginalSubOption)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot query failed")
		return table.Table{}, err
	}
	return t, nil
}

type categoryRow struct {
	product  string
	quantity string
	level    string
	category sql.NullString
}

func (s Store) queryCategorySnapshot(ctx context.Context, name string, year int, subOption string) (table.Table, error) {
	stmt := fmt.Sprintf(
		`SELECT "Produto", "Quantidade (L.)", "Nivel", "Categoria" FROM %s WHERE "Ano" = %s`,
		name, s.placeholder(1),
	)
	args := []any{year}
	if subOption != "" {
		stmt += fmt.Sprintf(` AND "Opcoes" = %s`, s.placeholder(2))
		args = append(args, subOption)
	}
	stmt += " ORDER BY id"

	dbRows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return table.Table{}, err
	}
	defer dbRows.Close()

	var stored []categoryRow
	for dbRows.Next() {
		var r categoryRow
		err := dbRows.Scan(&r.product, &r.quantity, &r.level, &r.category)
		if err != nil {
			return table.Table{}, err
		}
		stored = append(stored, r)
	}
	if err := dbRows.Err(); err != nil {
		return table.Table{}, err
	}
	if len(stored) < 2 {
		return table.Table{}, fmt.Errorf(
			"no snapshot stored in %q for year %d", name, year,
		)
	}

	header := stored[0]
	totals := stored[len(stored)-1]
	data := stored[1 : len(stored)-1]

	var groups []table.CategoryGroup
	for _, r := range data {
		switch r.level {
		case LevelItem:
			groups = append(groups, table.CategoryGroup{
				Key:     fmt.Sprintf("%s : %s", r.product, r.quantity),
				Entries: map[string]string{},
			})
		case LevelSubitem:
			if len(groups) == 0 {
				continue
			}
			groups[len(groups)-1].Entries[r.product] = r.quantity
		}
	}

	return table.Table{
		Headers: []string{header.product, header.quantity},
		Footers: []string{totals.product, totals.quantity},
		Rows: table.RowSet{
			Kind:       table.RowKindCategory,
			Categories: groups,
		},
	}, nil
}

type countryRow struct {
	country  string
	quantity string
	value    string
}

func (s Store) queryCountrySnapshot(ctx context.Context, name string, year int, subOption string) (table.Table, error) {
	stmt := fmt.Sprintf(
		`SELECT "Paises", "Quantidade (Kg)", "Valor (US$)" FROM %s WHERE "Ano" = %s AND "Categoria" = %s ORDER BY id`,
		name, s.placeholder(1), s.placeholder(2),
	)

	dbRows, err := s.db.QueryContext(ctx, stmt, year, subOption)
	if err != nil {
		return table.Table{}, err
	}
	defer dbRows.Close()

	var stored []countryRow
	for dbRows.Next() {
		var r countryRow
		err := dbRows.Scan(&r.country, &r.quantity, &r.value)
		if err != nil {
			return table.Table{}, err
		}
		stored = append(stored, r)
	}
	if err := dbRows.Err(); err != nil {
		return table.Table{}, err
	}
	if len(stored) < 2 {
		return table.Table{}, fmt.Errorf(
			"no snapshot stored in %q for year %d and sub-option %q",
			name, year, subOption,
		)
	}

	header := stored[0]
	totals := stored[len(stored)-1]
	data := stored[1 : len(stored)-1]

	rows := make([]table.CountryRow, 0, len(data))
	for _, r := range data {
		rows = append(rows, table.CountryRow{
			Country:  r.country,
			Quantity: r.quantity,
			Value:    r.value,
		})
	}

	return table.Table{
		Headers: []string{header.country, header.quantity, header.value},
		Footers: []string{totals.country, totals.quantity, totals.value},
		Rows: table.RowSet{
			Kind:      table.RowKindCountry,
			Countries: rows,
		},
	}, nil
}
