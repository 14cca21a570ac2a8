package scraper

import (
	"fmt"

	"vitiharvest-backend/lib/htmlutil"
	"vitiharvest-backend/services/harvest/query"
	"vitiharvest-backend/services/harvest/table"

	"github.com/PuerkitoBio/goquery"
)

// MarkupError means the page structure the extractor relies on was not
// found at all. Individually malformed rows never cause it, those are
// skipped; a missing table, header or footer section does.
type MarkupError struct {
	Missing string
}

func (e *MarkupError) Error() string {
	return fmt.Sprintf("unexpected page structure: %s not found", e.Missing)
}

// the one data table every dataset page carries
const dataTableSelector = "table.tb_base.tb_dados"

func findDataTable(doc *goquery.Document) (*goquery.Selection, error) {
	t := doc.Find(dataTableSelector).First()
	if t.Length() == 0 {
		return nil, &MarkupError{Missing: dataTableSelector}
	}
	return t, nil
}

// ExtractTable pulls headers, footers and body rows out of a dataset page.
func ExtractTable(doc *goquery.Document, opt query.Option) (table.Table, error) {
	t, err := findDataTable(doc)
	if err != nil {
		return table.Table{}, err
	}

	headers, err := extractHeaders(t)
	if err != nil {
		return table.Table{}, err
	}
	footers, err := extractFooters(t)
	if err != nil {
		return table.Table{}, err
	}
	rows, err := extractBody(t, opt)
	if err != nil {
		return table.Table{}, err
	}

	return table.Table{
		Headers: headers,
		Footers: footers,
		Rows:    rows,
	}, nil
}

func extractHeaders(t *goquery.Selection) ([]string, error) {
	row := t.Find("thead tr").First()
	if row.Length() == 0 {
		return nil, &MarkupError{Missing: "thead tr"}
	}
	var headers []string
	row.Find("th").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, htmlutil.CellText(cell))
	})
	if len(headers) == 0 {
		return nil, &MarkupError{Missing: "thead th"}
	}
	return headers, nil
}

func extractFooters(t *goquery.Selection) ([]string, error) {
	row := t.Find("tfoot.tb_total tr").First()
	if row.Length() == 0 {
		return nil, &MarkupError{Missing: "tfoot.tb_total tr"}
	}
	var footers []string
	row.Find("td").Each(func(_ int, cell *goquery.Selection) {
		footers = append(footers, htmlutil.CellText(cell))
	})
	return footers, nil
}

func extractBody(t *goquery.Selection, opt query.Option) (table.RowSet, error) {
	body := t.Find("tbody").First()
	if body.Length() == 0 {
		return table.RowSet{}, &MarkupError{Missing: "tbody"}
	}

	if table.KindFor(opt) == table.RowKindCountry {
		return extractCountryRows(body), nil
	}
	return extractCategoryRows(body), nil
}

func cellTexts(sel *goquery.Selection) []string {
	var texts []string
	sel.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, htmlutil.CellText(cell))
	})
	return texts
}

// extractCategoryRows walks the body under the item/sub-item discipline:
// a tb_item row with at least 2 cells opens a category keyed
// "<label> : <value>", following tb_subitem rows record label/value pairs
// under the open category. Rows with fewer cells are skipped.
func extractCategoryRows(body *goquery.Selection) table.RowSet {
	var groups []table.CategoryGroup
	byKey := map[string]int{}
	currentCategory := -1

	body.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row.Find("td.tb_item"))
		if len(cells) >= 2 {
			key := fmt.Sprintf("%s : %s", cells[0], cells[1])
			if at, seen := byKey[key]; seen {
				// duplicate keys overwrite: the group keeps its original
				// position but starts over empty
				groups[at].Entries = map[string]string{}
				currentCategory = at
			} else {
				groups = append(groups, table.CategoryGroup{
					Key:     key,
					Entries: map[string]string{},
				})
				currentCategory = len(groups) - 1
				byKey[key] = currentCategory
			}
		}

		cells = cellTexts(row.Find("td.tb_subitem"))
		if len(cells) >= 2 && currentCategory >= 0 {
			groups[currentCategory].Entries[cells[0]] = cells[1]
		}
	})

	return table.RowSet{
		Kind:       table.RowKindCategory,
		Categories: groups,
	}
}

// extractCountryRows yields a flat (country, quantity, value) triple per
// body row with at least 3 cells.
func extractCountryRows(body *goquery.Selection) table.RowSet {
	var rows []table.CountryRow
	body.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row.Find("td"))
		if len(cells) < 3 {
			return
		}
		rows = append(rows, table.CountryRow{
			Country:  cells[0],
			Quantity: cells[1],
			Value:    cells[2],
		})
	})
	return table.RowSet{
		Kind:      table.RowKindCountry,
		Countries: rows,
	}
}

// LabeledRow is one body row in the flat form the snapshot writer persists:
// the cells of the row plus whether it opened a category (item) or sat
// under one (subitem).
type LabeledRow struct {
	Product  string
	Quantity string
	Item     bool
}

// ExtractLabeledRows reads category-discipline body rows without nesting
// them, keeping the item/sub-item tag per row. The bulk persister needs
// this shape to store one record per row.
func ExtractLabeledRows(doc *goquery.Document) ([]LabeledRow, error) {
	t, err := findDataTable(doc)
	if err != nil {
		return nil, err
	}
	body := t.Find("tbody").First()
	if body.Length() == 0 {
		return nil, &MarkupError{Missing: "tbody"}
	}

	var rows []LabeledRow
	body.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		texts := cellTexts(cells)
		if len(texts) < 2 {
			return
		}
		rows = append(rows, LabeledRow{
			Product:  texts[0],
			Quantity: texts[1],
			Item:     cells.First().HasClass("tb_item"),
		})
	})
	return rows, nil
}
