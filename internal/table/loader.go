package table

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"opsdiary/internal/errors"
)

// LoadWorkbook parses an xlsx workbook and concatenates every non-empty sheet
// into a single working table. Sheets are read in workbook order; each
// sheet's first row is its header row.
//
// Dates in xlsx are stored as serial day counts, so date-styled cells arrive
// here as number cells; the period extractor interprets serials in the
// plausible calendar window. Inline date strings stay text cells.
func LoadWorkbook(data []byte) (*RawTable, error) {
	sheets, err := LoadSheets(data)
	if err != nil {
		return nil, err
	}
	all := &RawTable{}
	for _, s := range sheets {
		all.Append(s)
	}
	return all, nil
}

// LoadSheets parses an xlsx workbook into one table per non-empty sheet.
func LoadSheets(data []byte) ([]*RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	var tables []*RawTable
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, errors.NewParsingError("failed to read sheet "+name, err)
		}
		if t := buildTable(rows); t.Len() > 0 {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

// buildTable turns a sheet's raw string matrix into a RawTable. The first row
// is the header row; headers are trimmed and de-duplicated on first sight.
func buildTable(rows [][]string) *RawTable {
	t := &RawTable{}
	if len(rows) == 0 {
		return t
	}

	type column struct {
		index  int
		header string
	}
	var cols []column
	seen := make(map[string]bool)
	for i, h := range rows[0] {
		header := strings.TrimSpace(h)
		if header == "" || seen[header] {
			continue
		}
		seen[header] = true
		cols = append(cols, column{index: i, header: header})
		t.Headers = append(t.Headers, header)
	}
	if len(cols) == 0 {
		return t
	}

	for _, raw := range rows[1:] {
		if rowIsBlank(raw) {
			continue
		}
		row := make(Row, len(cols))
		for _, c := range cols {
			if c.index < len(raw) {
				row[c.header] = classify(raw[c.index])
			} else {
				row[c.header] = Empty()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// classify maps a raw cell string onto the typed cell variants. ParseFloat
// also accepts "nan" and "inf" spellings; those are placeholder text in
// exported sheets, not numbers, so non-finite parses stay text cells.
func classify(raw string) Cell {
	if strings.TrimSpace(raw) == "" {
		return Empty()
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return TextCell(raw)
		}
		return NumberCell(n)
	}
	return TextCell(raw)
}

func rowIsBlank(raw []string) bool {
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
