package scraper

import (
	"strings"
	"testing"

	"vitiharvest-backend/services/harvest/query"
	"vitiharvest-backend/services/harvest/table"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const categoryPage = `
<html><body>
<table class="tb_base tb_dados">
  <thead>
    <tr>
      <th>Produto</th>
      <th>Quantidade (L.)</th>
    </tr>
  </thead>
  <tbody>
    <tr>
      <td class="tb_item">VINHO DE MESA</td>
      <td class="tb_item">217.208.604</td>
    </tr>
    <tr>
      <td class="tb_subitem">Tinto</td>
      <td class="tb_subitem">174.224.052</td>
    </tr>
    <tr>
      <td class="tb_subitem">Branco</td>
      <td class="tb_subitem">42.984.552</td>
    </tr>
    <tr>
      <td class="tb_item">SUCO DE UVA</td>
      <td class="tb_item">-</td>
    </tr>
    <tr>
      <td class="tb_subitem">Integral</td>
      <td class="tb_subitem">-</td>
    </tr>
  </tbody>
  <tfoot class="tb_total">
    <tr>
      <td>Total</td>
      <td>322.678.323</td>
    </tr>
  </tfoot>
</table>
</body></html>`

const countryPage = `
<html><body>
<table class="tb_base tb_dados">
  <thead>
    <tr>
      <th>Países</th>
      <th>Quantidade (Kg)</th>
      <th>Valor (US$)</th>
    </tr>
  </thead>
  <tbody>
    <tr>
      <td>Argentina</td>
      <td>7.965.052</td>
      <td>11.512.027</td>
    </tr>
    <tr>
      <td>Chile</td>
      <td>32.317.598</td>
      <td>70.835.792</td>
    </tr>
  </tbody>
  <tfoot class="tb_total">
    <tr>
      <td>Total</td>
      <td>40.282.650</td>
      <td>82.347.819</td>
    </tr>
  </tfoot>
</table>
</body></html>`

func parsePage(t *testing.T, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestExtractCategoryTable(t *testing.T) {
	doc := parsePage(t, categoryPage)

	out, err := ExtractTable(doc, query.Producao)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{"Produto", "Quantidade (L.)"}, out.Headers)
	require.Equal(t, []string{"Total", "322.678.323"}, out.Footers)

	require.Equal(t, table.RowKindCategory, out.Rows.Kind)
	require.Len(t, out.Rows.Categories, 2)

	wine := out.Rows.Categories[0]
	require.Equal(t, "VINHO DE MESA : 217.208.604", wine.Key)
	require.Equal(t, map[string]string{
		"Tinto":  "174.224.052",
		"Branco": "42.984.552",
	}, wine.Entries)

	juice := out.Rows.Categories[1]
	require.Equal(t, "SUCO DE UVA : -", juice.Key)
	require.Equal(t, map[string]string{"Integral": "-"}, juice.Entries)
}

func TestExtractCountryTable(t *testing.T) {
	doc := parsePage(t, countryPage)

	out, err := ExtractTable(doc, query.Importacao)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{"Países", "Quantidade (Kg)", "Valor (US$)"}, out.Headers)
	require.Equal(t, []string{"Total", "40.282.650", "82.347.819"}, out.Footers)

	require.Equal(t, table.RowKindCountry, out.Rows.Kind)
	require.Equal(t, []table.CountryRow{
		{Country: "Argentina", Quantity: "7.965.052", Value: "11.512.027"},
		{Country: "Chile", Quantity: "32.317.598", Value: "70.835.792"},
	}, out.Rows.Countries)
}

func TestExtractSkipsMalformedRows(t *testing.T) {
	page := `
<table class="tb_base tb_dados">
  <thead><tr><th>Produto</th><th>Quantidade (L.)</th></tr></thead>
  <tbody>
    <tr><td class="tb_item">VINHO</td><td class="tb_item">100</td></tr>
    <tr><td class="tb_subitem">Tinto</td><td class="tb_subitem">60</td></tr>
    <tr><td class="tb_subitem">sem valor</td></tr>
  </tbody>
  <tfoot class="tb_total"><tr><td>Total</td><td>100</td></tr></tfoot>
</table>`
	doc := parsePage(t, page)

	out, err := ExtractTable(doc, query.Producao)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, out.Rows.Categories, 1)
	require.Len(t, out.Rows.Categories[0].Entries, 1)
	require.Equal(t, "60", out.Rows.Categories[0].Entries["Tinto"])
}

func TestExtractCountrySkipsShortRows(t *testing.T) {
	page := `
<table class="tb_base tb_dados">
  <thead><tr><th>Países</th><th>Quantidade (Kg)</th><th>Valor (US$)</th></tr></thead>
  <tbody>
    <tr><td>Argentina</td><td>10</td><td>20</td></tr>
    <tr><td>Uruguai</td><td>5</td></tr>
  </tbody>
  <tfoot class="tb_total"><tr><td>Total</td><td>10</td><td>20</td></tr></tfoot>
</table>`
	doc := parsePage(t, page)

	out, err := ExtractTable(doc, query.Exportacao)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, out.Rows.Countries, 1)
	require.Equal(t, "Argentina", out.Rows.Countries[0].Country)
}

func TestExtractDuplicateCategoryOverwrites(t *testing.T) {
	page := `
<table class="tb_base tb_dados">
  <thead><tr><th>Produto</th><th>Quantidade (L.)</th></tr></thead>
  <tbody>
    <tr><td class="tb_item">VINHO</td><td class="tb_item">100</td></tr>
    <tr><td class="tb_subitem">Tinto</td><td class="tb_subitem">60</td></tr>
    <tr><td class="tb_item">VINHO</td><td class="tb_item">100</td></tr>
    <tr><td class="tb_subitem">Branco</td><td class="tb_subitem">40</td></tr>
  </tbody>
  <tfoot class="tb_total"><tr><td>Total</td><td>100</td></tr></tfoot>
</table>`
	doc := parsePage(t, page)

	out, err := ExtractTable(doc, query.Producao)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, out.Rows.Categories, 1)
	require.Equal(t, map[string]string{"Branco": "40"}, out.Rows.Categories[0].Entries)
}

func TestExtractMissingStructure(t *testing.T) {
	var markupErr *MarkupError

	doc := parsePage(t, `<html><body><p>em manutenção</p></body></html>`)
	_, err := ExtractTable(doc, query.Producao)
	require.ErrorAs(t, err, &markupErr)

	// table present, header section missing
	doc = parsePage(t, `
<table class="tb_base tb_dados">
  <tbody><tr><td class="tb_item">VINHO</td><td class="tb_item">100</td></tr></tbody>
  <tfoot class="tb_total"><tr><td>Total</td><td>100</td></tr></tfoot>
</table>`)
	_, err = ExtractTable(doc, query.Producao)
	require.ErrorAs(t, err, &markupErr)

	// footer section missing
	doc = parsePage(t, `
<table class="tb_base tb_dados">
  <thead><tr><th>Produto</th><th>Quantidade (L.)</th></tr></thead>
  <tbody><tr><td class="tb_item">VINHO</td><td class="tb_item">100</td></tr></tbody>
</table>`)
	_, err = ExtractTable(doc, query.Producao)
	require.ErrorAs(t, err, &markupErr)
}

func TestExtractLabeledRows(t *testing.T) {
	doc := parsePage(t, categoryPage)

	rows, err := ExtractLabeledRows(doc)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []LabeledRow{
		{Product: "VINHO DE MESA", Quantity: "217.208.604", Item: true},
		{Product: "Tinto", Quantity: "174.224.052", Item: false},
		{Product: "Branco", Quantity: "42.984.552", Item: false},
		{Product: "SUCO DE UVA", Quantity: "-", Item: true},
		{Product: "Integral", Quantity: "-", Item: false},
	}, rows)
}
