package db_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"vitiharvest-backend/lib/testutil"
	"vitiharvest-backend/services/harvest/db"
	"vitiharvest-backend/services/harvest/query"
	"vitiharvest-backend/services/harvest/table"

	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) db.Store {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "harvest/db",
		DbSchema: db.Schema,
		DbPath:   filepath.Join(t.TempDir(), "snapshots.db"),
	})
	t.Cleanup(cleanup)
	return db.NewStore(res.DB, "sqlite")
}

func mustValidate(t *testing.T, params map[string]string) query.Descriptor {
	d, err := query.Validate(params)
	require.NoError(t, err)
	return d
}

func producaoBatch(year int) []db.CategoryRecord {
	return []db.CategoryRecord{
		{Product: "Produto", Quantity: "Quantidade (L.)", Level: db.LevelHeader, Year: year},
		{Product: "VINHO DE MESA", Quantity: "217208604", Level: db.LevelItem, Year: year},
		{
			Product: "Tinto", Quantity: "174224052", Level: db.LevelSubitem,
			Category: sql.NullString{String: "VINHO DE MESA : 217208604", Valid: true},
			Year:     year,
		},
		{
			Product: "Branco", Quantity: "42984552", Level: db.LevelSubitem,
			Category: sql.NullString{String: "VINHO DE MESA : 217208604", Valid: true},
			Year:     year,
		},
		{Product: "Total", Quantity: "322678323", Level: db.LevelTotal, Year: year},
	}
}

func TestCategorySnapshotRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.WriteCategoryRows(ctx, query.Producao, producaoBatch(2000), true)
	require.NoError(t, err)

	d := mustValidate(t, map[string]string{"option": "producao", "year": "2000"})
	out, err := store.QuerySnapshot(ctx, d)
	require.NoError(t, err)

	require.Equal(t, []string{"Produto", "Quantidade (L.)"}, out.Headers)
	require.Equal(t, []string{"Total", "322678323"}, out.Footers)
	require.Equal(t, table.RowKindCategory, out.Rows.Kind)
	require.Len(t, out.Rows.Categories, 1)
	require.Equal(t, "VINHO DE MESA : 217208604", out.Rows.Categories[0].Key)
	require.Equal(t, map[string]string{
		"Tinto":  "174224052",
		"Branco": "42984552",
	}, out.Rows.Categories[0].Entries)
}

func TestCategorySnapshotFiltersSubOption(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	batch := func(product, sub string) []db.CategoryRecord {
		return []db.CategoryRecord{
			{Product: "Cultivar", Quantity: "Quantidade (Kg)", Level: db.LevelHeader, SubOption: sub, Year: 2001},
			{Product: product, Quantity: "10", Level: db.LevelItem, SubOption: sub, Year: 2001},
			{Product: "Total", Quantity: "10", Level: db.LevelTotal, SubOption: sub, Year: 2001},
		}
	}
	err := store.WriteCategoryRows(ctx, query.Processamento, batch("TINTAS", "viniferas"), true)
	require.NoError(t, err)
	err = store.WriteCategoryRows(ctx, query.Processamento, batch("BRANCAS", "americanas_e_hibridas"), false)
	require.NoError(t, err)

	d := mustValidate(t, map[string]string{
		"option":     "processamento",
		"year":       "2001",
		"sub_option": "americanas_e_hibridas",
	})
	out, err := store.QuerySnapshot(ctx, d)
	require.NoError(t, err)
	require.Len(t, out.Rows.Categories, 1)
	require.Equal(t, "BRANCAS : 10", out.Rows.Categories[0].Key)
}

func TestCountrySnapshotRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	records := []db.CountryRecord{
		{Country: "Países", Quantity: "Quantidade (Kg)", Value: "Valor (US$)", Category: "vinhos_de_mesa", Year: 2010},
		{Country: "Argentina", Quantity: "7965052", Value: "11512027", Category: "vinhos_de_mesa", Year: 2010},
		{Country: "Chile", Quantity: "32317598", Value: "70835792", Category: "vinhos_de_mesa", Year: 2010},
		{Country: "Total", Quantity: "40282650", Value: "82347819", Category: "vinhos_de_mesa", Year: 2010},
	}
	err := store.WriteCountryRows(ctx, query.Importacao, records, true)
	require.NoError(t, err)

	d := mustValidate(t, map[string]string{"option": "importacao", "year": "2010"})
	require.Equal(t, "vinhos_de_mesa", d.OriginalSubOption)

	out, err := store.QuerySnapshot(ctx, d)
	require.NoError(t, err)
	require.Equal(t, []string{"Países", "Quantidade (Kg)", "Valor (US$)"}, out.Headers)
	require.Equal(t, []string{"Total", "40282650", "82347819"}, out.Footers)
	require.Equal(t, []table.CountryRow{
		{Country: "Argentina", Quantity: "7965052", Value: "11512027"},
		{Country: "Chile", Quantity: "32317598", Value: "70835792"},
	}, out.Rows.Countries)
}

func TestSnapshotMissingYear(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.WriteCategoryRows(ctx, query.Producao, producaoBatch(2000), true)
	require.NoError(t, err)

	d := mustValidate(t, map[string]string{"option": "producao", "year": "1999"})
	_, err = store.QuerySnapshot(ctx, d)
	require.Error(t, err)
}

func TestReplaceThenAppend(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.WriteCategoryRows(ctx, query.Producao, producaoBatch(2000), true)
	require.NoError(t, err)
	err = store.WriteCategoryRows(ctx, query.Producao, producaoBatch(2001), false)
	require.NoError(t, err)

	// both years answer after the append
	for _, year := range []string{"2000", "2001"} {
		d := mustValidate(t, map[string]string{"option": "producao", "year": year})
		_, err := store.QuerySnapshot(ctx, d)
		require.NoError(t, err)
	}

	// a fresh replace clears everything previously stored
	err = store.WriteCategoryRows(ctx, query.Producao, producaoBatch(2002), true)
	require.NoError(t, err)

	d := mustValidate(t, map[string]string{"option": "producao", "year": "2000"})
	_, err = store.QuerySnapshot(ctx, d)
	require.Error(t, err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := db.Open(db.Config{Driver: "mysql", Dsn: "whatever"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "mysql")
}

func TestWriteRejectsWrongDiscipline(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.WriteCategoryRows(ctx, query.Importacao, nil, false)
	require.Error(t, err)
	err = store.WriteCountryRows(ctx, query.Producao, nil, false)
	require.Error(t, err)
}
