package scraper

import (
	"testing"

	"vitiharvest-backend/services/harvest/query"

	"github.com/stretchr/testify/require"
)

func TestBuildUrl(t *testing.T) {
	d := query.Descriptor{
		Option: "opcao=opt_02",
		Year:   "ano=2000",
	}
	require.Equal(
		t,
		"http://vitibrasil.cnpuv.embrapa.br/index.php?opcao=opt_02&ano=2000",
		BuildUrl(DefaultBaseUrl, d),
	)
}

func TestBuildUrlWithSubOption(t *testing.T) {
	d := query.Descriptor{
		Option:    "opcao=opt_05",
		Year:      "ano=2024",
		SubOption: "subopcao=subopt_03",
	}
	require.Equal(
		t,
		"http://vitibrasil.cnpuv.embrapa.br/index.php?opcao=opt_05&ano=2024&subopcao=subopt_03",
		BuildUrl(DefaultBaseUrl, d),
	)
}

func TestBuildUrlFromValidatedDescriptor(t *testing.T) {
	d, err := query.Validate(map[string]string{
		"option": "processamento",
		"year":   "1995",
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(
		t,
		"http://vitibrasil.cnpuv.embrapa.br/index.php?opcao=opt_03&ano=1995&subopcao=subopt_01",
		BuildUrl(DefaultBaseUrl, d),
	)
}
