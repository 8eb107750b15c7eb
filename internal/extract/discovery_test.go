package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdiary/internal/errors"
	"opsdiary/internal/table"
)

func TestDiscover(t *testing.T) {
	tbl := bookingTable([]table.Row{
		bookingRow("15/10/2024", "Maersk", 1, "BK1", "SSZ", "ROT", "Ativo"),
		bookingRow("03/11/2024", "Hamburg Sud", 1, "BK2", "SSZ", "ROT", "Ativo"),
		bookingRow("20/10/2024", "Cancelados SA", 1, "BK3", "SSZ", "ROT", "Cancelado"),
		bookingRow("sem data", " Maersk ", 1, "BK4", "SSZ", "ROT", "Ativo"),
	})

	got, err := Discover(nil, tbl)
	require.NoError(t, err)

	// Periods come from every parseable row, cancelled or not.
	assert.Equal(t, []string{"2024-10", "2024-11"}, got.Periods)
	// Shippers come from active rows only, trimmed and de-duplicated.
	assert.Equal(t, []string{"Hamburg Sud", "Maersk"}, got.Shippers)
}

func TestDiscoverMissingMandatoryColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
	}{
		{name: "no date column", headers: []string{"NOME_FANTASIA", "DESC_STATUS"}},
		{name: "no client column", headers: []string{"DATA_BOOKING", "DESC_STATUS"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Discover(nil, &table.RawTable{Headers: tt.headers})
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
		})
	}
}

func TestDiscoverWithoutStatusColumn(t *testing.T) {
	tbl := &table.RawTable{
		Headers: []string{"DATA_BOOKING", "NOME_FANTASIA"},
		Rows: []table.Row{{
			"DATA_BOOKING":  table.TextCell("15/10/2024"),
			"NOME_FANTASIA": table.TextCell("Maersk"),
		}},
	}

	got, err := Discover(nil, tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maersk"}, got.Shippers, "without a status column every row counts as active")
}
