package harvest

import (
	"testing"

	"vitiharvest-backend/services/harvest/query"

	"github.com/stretchr/testify/require"
)

func TestReference(t *testing.T) {
	refs := Reference()
	require.Len(t, refs, 5)

	require.Equal(t, query.Producao, refs[0].Option)
	require.Equal(t, 1970, refs[0].FirstYear)
	require.Equal(t, 2023, refs[0].LastYear)
	require.Empty(t, refs[0].SubOptions)

	require.Equal(t, query.Processamento, refs[1].Option)
	require.Equal(t, []string{
		"viniferas", "americanas_e_hibridas", "uvas_de_mesa", "sem_classificacao",
	}, refs[1].SubOptions)

	require.Equal(t, query.Importacao, refs[3].Option)
	require.Equal(t, 2024, refs[3].LastYear)
	require.Len(t, refs[3].SubOptions, 5)

	require.Equal(t, query.Exportacao, refs[4].Option)
	require.Len(t, refs[4].SubOptions, 4)
}
