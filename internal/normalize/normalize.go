// Package normalize canonicalizes the free-text values found in operational
// spreadsheet exports: header and status strings, mixed date encodings,
// client names and justification text. Everything here is a pure function;
// determinism is what lets callers memoize extraction results by content
// hash.
package normalize

import (
	"math"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"opsdiary/internal/table"
	"opsdiary/pkg/contracts/domain"
)

// SentinelJustification replaces missing, blank or placeholder justification
// values so that downstream groupings never key on an empty reason.
const SentinelJustification = "no justification provided"

// excelEpoch is the day-zero of Excel's 1900 date system. Serial 1 is
// 1900-01-01; the off-by-two epoch absorbs Excel's fictitious 1900-02-29.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// stripMarks removes combining marks after NFKD decomposition, folding
// accented characters to their ASCII base.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

const punctuation = `,.;:/\|_()[]{}'"-`

// Text canonicalizes a free-text string: diacritics stripped, lower-cased,
// a fixed punctuation set replaced by spaces, whitespace collapsed, trimmed.
// Idempotent: Text(Text(s)) == Text(s).
func Text(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// textDateFormats are tried in order against string cells. Day-first forms
// come first because that is how the source systems export.
var textDateFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ExtractPeriod derives the YYYY-MM period a cell belongs to, dispatching on
// the cell variant:
//
//   - empty cells have no period;
//   - date cells convert directly;
//   - number cells are Excel serial day counts when they fall inside the
//     plausible calendar window [10000, 60000); anything else is rejected;
//   - text cells try the explicit formats in order, then a lenient day-first
//     parse.
//
// The second return is false when no period could be derived; callers drop
// such rows from period-bucketed output rather than defaulting.
func ExtractPeriod(c table.Cell) (string, bool) {
	switch c.Kind {
	case table.CellEmpty:
		return "", false
	case table.CellDate:
		if c.Date.IsZero() {
			return "", false
		}
		return domain.PeriodOf(c.Date), true
	case table.CellNumber:
		if math.IsNaN(c.Number) || c.Number < 10000 || c.Number >= 60000 {
			return "", false
		}
		return domain.PeriodOf(excelEpoch.AddDate(0, 0, int(c.Number))), true
	case table.CellText:
		return periodFromString(c.Text)
	default:
		return "", false
	}
}

func periodFromString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range textDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.PeriodOf(t), true
		}
	}
	return lenientDayFirst(s)
}

// lenientDayFirst is the last-resort date parse: it splits the leading token
// on common separators and reads it day-first, or year-first when the first
// component has four digits.
func lenientDayFirst(s string) (string, bool) {
	// Keep only the date part of a "date time" string.
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return "", false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, ok := atoi(p)
		if !ok {
			return "", false
		}
		nums[i] = n
	}

	var year, month, day int
	if len(parts[0]) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		day, month, year = nums[0], nums[1], nums[2]
		if year < 100 {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 || year > 2200 {
		return "", false
	}
	return domain.PeriodOf(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)), true
}

func atoi(s string) (int, bool) {
	if s == "" || len(s) > 4 {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// placeholderJustifications are literal placeholder spellings that mean "no
// justification was given". Matched case-sensitively, as exported.
var placeholderJustifications = map[string]bool{
	"":     true,
	"-":    true,
	"nan":  true,
	"None": true,
	"null": true,
}

// Justification normalizes a justification cell: empty cells, placeholder
// literals and strings that trim to a single character all collapse to the
// sentinel; anything else is returned trimmed.
func Justification(c table.Cell) string {
	if c.Kind == table.CellEmpty {
		return SentinelJustification
	}
	s := strings.TrimSpace(c.String())
	if placeholderJustifications[s] || len([]rune(s)) <= 1 {
		return SentinelJustification
	}
	return s
}
