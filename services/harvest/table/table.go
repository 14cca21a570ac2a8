// Package table holds the shapes a harvest produces, whether the data came
// from the live site or from the snapshot store.
package table

import "vitiharvest-backend/services/harvest/query"

// Table is one harvested data table: header cells, totals-row cells and the
// body rows under one of the two row disciplines.
type Table struct {
	Headers []string `json:"headers"`
	Footers []string `json:"footers"`
	Rows    RowSet   `json:"rows"`
}

type RowKind int

const (
	RowKindCategory RowKind = iota
	RowKindCountry
)

// KindFor maps an option to the row variant its tables use.
func KindFor(o query.Option) RowKind {
	if o.Discipline() == query.DisciplineCountry {
		return RowKindCountry
	}
	return RowKindCategory
}

// RowSet is a tagged variant over the two body layouts. Exactly one of
// Categories/Countries is populated, according to Kind.
type RowSet struct {
	Kind       RowKind         `json:"-"`
	Categories []CategoryGroup `json:"categories,omitempty"`
	Countries  []CountryRow    `json:"countries,omitempty"`
}

// CategoryGroup is one opened category ("<label> : <value>") with the
// sub-item label/value pairs recorded under it.
type CategoryGroup struct {
	Key     string            `json:"key"`
	Entries map[string]string `json:"entries"`
}

type CountryRow struct {
	Country  string `json:"country"`
	Quantity string `json:"quantity"`
	Value    string `json:"value"`
}
