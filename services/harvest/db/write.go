package db

import (
	"context"
	"database/sql"
	"fmt"

	"vitiharvest-backend/services/harvest/query"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CategoryRecord is one persisted row of a category-discipline table.
type CategoryRecord struct {
	Product  string
	Quantity string
	Level    string
	Category sql.NullString
	// stored in the "Opcoes" column; only processamento has it
	SubOption string
	Year      int
}

// CountryRecord is one persisted row of a country-discipline table.
type CountryRecord struct {
	Country  string
	Quantity string
	Value    string
	Category string
	Year     int
}

// WriteCategoryRows appends records to opt's snapshot table in order,
// inside one transaction. With replace set the table is cleared first.
func (s Store) WriteCategoryRows(ctx context.Context, opt query.Option, records []CategoryRecord, replace bool) error {
	ctx, span := tracer.Start(ctx, "WriteCategoryRows")
	defer span.End()
	span.SetAttributes(
		attribute.String("option", string(opt)),
		attribute.Int("records", len(records)),
		attribute.Bool("replace", replace),
	)

	if opt.Discipline() != query.DisciplineCategory {
		return fmt.Errorf("option %q does not use category rows", opt)
	}
	name, err := tableName(opt)
	if err != nil {
		return err
	}

	hasSubOption := len(opt.SubOptions()) > 0
	var stmt string
	if hasSubOption {
		stmt = fmt.Sprintf(
			`INSERT INTO %s ("Produto", "Quantidade (L.)", "Nivel", "Categoria", "Opcoes", "Ano") VALUES (%s, %s, %s, %s, %s, %s)`,
			name,
			s.placeholder(1), s.placeholder(2), s.placeholder(3),
			s.placeholder(4), s.placeholder(5), s.placeholder(6),
		)
	} else {
		stmt = fmt.Sprintf(
			`INSERT INTO %s ("Produto", "Quantidade (L.)", "Nivel", "Categoria", "Ano") VALUES (%s, %s, %s, %s, %s)`,
			name,
			s.placeholder(1), s.placeholder(2), s.placeholder(3),
			s.placeholder(4), s.placeholder(5),
		)
	}

	err = s.write(ctx, name, replace, func(tx *sql.Tx) error {
		for _, r := range records {
			var args []any
			if hasSubOption {
				args = []any{r.Product, r.Quantity, r.Level, r.Category, r.SubOption, r.Year}
			} else {
				args = []any{r.Product, r.Quantity, r.Level, r.Category, r.Year}
			}
			_, err := tx.ExecContext(ctx, stmt, args...)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
	}
	return err
}

// WriteCountryRows appends records to opt's snapshot table in order,
// inside one transaction. With replace set the table is cleared first.
func (s Store) WriteCountryRows(ctx context.Context, opt query.Option, records []CountryRecord, replace bool) error {
	ctx, span := tracer.Start(ctx, "WriteCountryRows")
	defer span.End()
	span.SetAttributes(
		attribute.String("option", string(opt)),
		attribute.Int("records", len(records)),
		attribute.Bool("replace", replace),
	)

	if opt.Discipline() != query.DisciplineCountry {
		return fmt.Errorf("option %q does not use country rows", opt)
	}
	name, err := tableName(opt)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(
		`INSERT INTO %s ("Paises", "Quantidade (Kg)", "Valor (US$)", "Categoria", "Ano") VALUES (%s, %s, %s, %s, %s)`,
		name,
		s.placeholder(1), s.placeholder(2), s.placeholder(3),
		s.placeholder(4), s.placeholder(5),
	)

	err = s.write(ctx, name, replace, func(tx *sql.Tx) error {
		for _, r := range records {
			_, err := tx.ExecContext(ctx, stmt, r.Country, r.Quantity, r.Value, r.Category, r.Year)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
	}
	return err
}

func (s Store) write(ctx context.Context, name string, replace bool, insert func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if replace {
		_, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", name))
		if err != nil {
			return err
		}
	}
	err = insert(tx)
	if err != nil {
		return err
	}
	return tx.Commit()
}
