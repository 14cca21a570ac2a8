// Package db is the snapshot store: bulk harvests write one record per
// table row into a per-option table, and the fallback path reads them back
// into the same shape the live extractor produces.
package db

import (
	"database/sql"
	"fmt"
	"strings"

	"vitiharvest-backend/services/harvest/query"

	_ "embed"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Config selects the snapshot store backend. Driver is one of "sqlite",
// "libsql" or "pgx"; anything else is rejected before a connection is
// attempted.
type Config struct {
	Driver string `json:"driver"`
	Dsn    string `json:"dsn"`
}

var supportedDrivers = map[string]bool{
	"sqlite": true,
	"libsql": true,
	"pgx":    true,
}

// Open connects per config and, for the sqlite-family drivers, applies the
// embedded schema. Postgres deployments manage their own schema.
func Open(config Config) (Store, error) {
	if !supportedDrivers[config.Driver] {
		return Store{}, fmt.Errorf(
			"unsupported snapshot store driver %q: must be sqlite, libsql or pgx",
			config.Driver,
		)
	}
	database, err := sql.Open(config.Driver, config.Dsn)
	if err != nil {
		return Store{}, err
	}
	if config.Driver != "pgx" {
		_, err = database.Exec(Schema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			database.Close()
			return Store{}, err
		}
	}
	return NewStore(database, config.Driver), nil
}

type Store struct {
	db     *sql.DB
	driver string
}

// NewStore wraps an already opened connection. The driver name decides the
// placeholder style used in generated statements.
func NewStore(database *sql.DB, driver string) Store {
	return Store{db: database, driver: driver}
}

func (s Store) Close() error { return s.db.Close() }

// placeholder renders the n-th (1-based) statement parameter for the
// store's driver.
func (s Store) placeholder(n int) string {
	if s.driver == "pgx" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// tableName maps an option to its snapshot table. The closed map is the
// only way a table name reaches SQL text; user input never does.
var tableNames = map[query.Option]string{
	query.Producao:        "producao",
	query.Processamento:   "processamento",
	query.Comercializacao: "comercializacao",
	query.Importacao:      "importacao",
	query.Exportacao:      "exportacao",
}

func tableName(opt query.Option) (string, error) {
	name, ok := tableNames[opt]
	if !ok {
		return "", fmt.Errorf("no snapshot table for option %q", opt)
	}
	return name, nil
}
