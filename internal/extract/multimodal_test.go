package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdiary/internal/normalize"
	"opsdiary/internal/table"
)

func multimodalTable(rows []table.Row) *table.RawTable {
	return &table.RawTable{
		Headers: []string{
			"Cliente", "Causador Reagenda", "Área Responsável",
			"Justificativa Reagendamento", "Agendamento",
			"Porto da Operação", "Tipo de Operação",
		},
		Rows: rows,
	}
}

func multimodalRow(client, cause, area, justification, date, port, opType string) table.Row {
	return table.Row{
		"Cliente":                     table.TextCell(client),
		"Causador Reagenda":           table.TextCell(cause),
		"Área Responsável":            table.TextCell(area),
		"Justificativa Reagendamento": table.TextCell(justification),
		"Agendamento":                 table.TextCell(date),
		"Porto da Operação":           table.TextCell(port),
		"Tipo de Operação":            table.TextCell(opType),
	}
}

func TestMultimodalExtract(t *testing.T) {
	tbl := multimodalTable([]table.Row{
		multimodalRow("Maersk", "Mercosul", "OPS", "Falta de janela", "15/10/2024", "SSZ", "Entrega"),
		multimodalRow("Maersk", "Cliente", "OPS", "Falta de janela", "15/10/2024", "SSZ", "Entrega"),
		multimodalRow("Maersk", "Mercosul", "CUS", "Falta de janela", "15/10/2024", "SSZ", "Entrega"),
		multimodalRow("Maersk", "Mercosul", "tra", "Falta de janela", "15/10/2024", "SSZ", "Entrega"),
		multimodalRow("Maersk", "Mercosul", "OPS", "-", "15/10/2024", "SSZ", "Entrega"),
		multimodalRow("Hamburg Sud", "Mercosul", "OPS", "Falta de janela", "15/10/2024", "SSZ", "Entrega"),
	})

	got := NewMultimodalExtractor(nil).Extract(tbl, Filters{
		Periods: []string{"2024-10"},
		Clients: []string{"Maersk"},
	})

	require.Len(t, got, 1, "only the mercosul-caused, non-excluded-area, justified Maersk row survives")
	rec := got[0]
	assert.Equal(t, "2024-10", rec.Period)
	assert.Equal(t, "Falta de janela", rec.Reason)
	assert.Equal(t, "SSZ", rec.OperationPort)
	assert.Equal(t, "Entrega", rec.OperationType)
	assert.Equal(t, 1, rec.Flag)
}

func TestMultimodalExtractPeriodFilterDropsUndated(t *testing.T) {
	rows := []table.Row{
		multimodalRow("Maersk", "Mercosul", "OPS", "Falta de janela", "", "SSZ", "Entrega"),
	}

	// With a period filter the undated row cannot qualify.
	got := NewMultimodalExtractor(nil).Extract(multimodalTable(rows), Filters{Periods: []string{"2024-10"}})
	assert.Empty(t, got)

	// Without one it passes through with an empty period.
	got = NewMultimodalExtractor(nil).Extract(multimodalTable(rows), Filters{})
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Period)
}

func TestMultimodalExtractWithoutOptionalColumns(t *testing.T) {
	tbl := &table.RawTable{
		Headers: []string{"Cliente", "Causador Reagenda"},
		Rows: []table.Row{{
			"Cliente":           table.TextCell("Maersk"),
			"Causador Reagenda": table.TextCell("Mercosul"),
		}},
	}

	got := NewMultimodalExtractor(nil).Extract(tbl, Filters{})
	require.Len(t, got, 1)
	assert.Equal(t, normalize.SentinelJustification, got[0].Reason)
	assert.Empty(t, got[0].OperationPort)
}
