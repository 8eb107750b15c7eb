package table

import (
	"strconv"
	"strings"
	"time"
)

// CellKind identifies which variant a Cell carries. Spreadsheet cells are
// loosely typed at the source; everything downstream pattern-matches over
// this closed set instead of reflecting on dynamic values.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is a single spreadsheet cell value.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

// Empty returns the empty cell.
func Empty() Cell { return Cell{Kind: CellEmpty} }

func TextCell(s string) Cell    { return Cell{Kind: CellText, Text: s} }
func NumberCell(n float64) Cell { return Cell{Kind: CellNumber, Number: n} }
func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Date: t} }

// IsEmpty reports whether the cell carries no usable value. A text cell that
// trims to nothing counts as empty.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	default:
		return false
	}
}

// String renders the cell the way the extractors compare and emit values:
// text is returned as-is, numbers drop a trailing ".0", dates use ISO form.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Date.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Int coerces the cell to a non-negative integer; anything unparsable is 0.
func (c Cell) Int() int {
	switch c.Kind {
	case CellNumber:
		n := int(c.Number)
		if n < 0 {
			return 0
		}
		return n
	case CellText:
		s := strings.TrimSpace(c.Text)
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil && f >= 0 {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}

// RawTable is an ordered set of named columns over an ordered set of rows.
// Column names are the trimmed header texts, de-duplicated on first sight;
// rows are dense maps from header to cell.
type RawTable struct {
	Headers []string
	Rows    []Row
}

// Row maps a header to its cell. Missing headers read as the empty cell.
type Row map[string]Cell

// Cell returns the cell under header, or the empty cell when absent.
func (r Row) Cell(header string) Cell {
	if c, ok := r[header]; ok {
		return c
	}
	return Empty()
}

// Len returns the number of rows.
func (t *RawTable) Len() int { return len(t.Rows) }

// Append concatenates another table onto t. Headers unseen so far are added
// in their encounter order; existing rows simply read empty for them.
func (t *RawTable) Append(other *RawTable) {
	seen := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		seen[h] = true
	}
	for _, h := range other.Headers {
		if !seen[h] {
			t.Headers = append(t.Headers, h)
			seen[h] = true
		}
	}
	t.Rows = append(t.Rows, other.Rows...)
}
