package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdiary/internal/normalize"
	"opsdiary/internal/table"
	"opsdiary/pkg/contracts/domain"
)

func transportTable(rows []table.Row) *table.RawTable {
	return &table.RawTable{
		Headers: []string{
			"Embarcador", "Situação programação", "Situação prazo programação",
			"Tipo de programação", "Previsão início atendimento (BRA)",
			"Justificativa", "Porto de origem",
		},
		Rows: rows,
	}
}

func transportRow(shipper, progStatus, deadline, progType, date, justification, origin string) table.Row {
	return table.Row{
		"Embarcador":                        table.TextCell(shipper),
		"Situação programação":              table.TextCell(progStatus),
		"Situação prazo programação":        table.TextCell(deadline),
		"Tipo de programação":               table.TextCell(progType),
		"Previsão início atendimento (BRA)": table.TextCell(date),
		"Justificativa":                     table.TextCell(justification),
		"Porto de origem":                   table.TextCell(origin),
	}
}

func TestTransportExtract(t *testing.T) {
	tbl := transportTable([]table.Row{
		transportRow("Maersk", "Confirmada", "Atrasado", "Coleta", "15/10/2024", "Sem motorista", "SSZ"),
		transportRow("Maersk", "Cancelada", "Atrasado", "Coleta", "15/10/2024", "Sem motorista", "SSZ"),
		transportRow("Maersk", "Confirmada", "No prazo", "Coleta", "15/10/2024", "Sem motorista", "SSZ"),
		transportRow("Maersk", "Confirmada", "ATRASADO", "Entrega", "20/10/2024", "-", "ITJ"),
	})

	got := NewTransportExtractor(nil).Extract(tbl, Filters{
		Periods: []string{"2024-10"},
		Clients: []string{"Maersk"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, domain.DelayRecord{
		TypeNorm:   "coleta",
		Reason:     "Sem motorista",
		Period:     "2024-10",
		OriginPort: "SSZ",
	}, got[0])
	assert.Equal(t, domain.DelayRecord{
		TypeNorm:   "entrega",
		Reason:     normalize.SentinelJustification,
		Period:     "2024-10",
		OriginPort: "ITJ",
	}, got[1], "placeholder justification collapses to the sentinel")
}

func TestTransportExtractDeduplicatesRows(t *testing.T) {
	row := transportRow("Maersk", "Confirmada", "Atrasado", "Coleta", "15/10/2024", "Sem motorista", "SSZ")
	tbl := transportTable([]table.Row{row, row, row})

	got := NewTransportExtractor(nil).Extract(tbl, Filters{})
	assert.Len(t, got, 1)
}

func TestTransportExtractMissingTypeColumn(t *testing.T) {
	tbl := &table.RawTable{
		Headers: []string{"Embarcador", "Situação prazo programação"},
		Rows: []table.Row{{
			"Embarcador":                 table.TextCell("Maersk"),
			"Situação prazo programação": table.TextCell("Atrasado"),
		}},
	}
	assert.Empty(t, NewTransportExtractor(nil).Extract(tbl, Filters{}))
}

func TestTransportExtractCancelSubstring(t *testing.T) {
	tbl := transportTable([]table.Row{
		transportRow("Maersk", "CANCELADA PELO CLIENTE", "Atrasado", "Coleta", "15/10/2024", "x y", "SSZ"),
		transportRow("Maersk", "Reagendada", "Atrasado", "Coleta", "15/10/2024", "x y", "SSZ"),
	})

	got := NewTransportExtractor(nil).Extract(tbl, Filters{})
	require.Len(t, got, 1)
	assert.Equal(t, "x y", got[0].Reason)
}
