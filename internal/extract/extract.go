// Package extract turns raw spreadsheet tables into the canonical record
// sets. Each extractor resolves its logical fields through the schema
// vocabulary, applies its domain filters and emits typed records; a miss on
// a mandatory field yields an empty record set, never an error. Extraction
// is pure: identical table content and filters always produce identical
// output, which is what makes content-hash memoization by callers valid.
package extract

import "opsdiary/internal/normalize"

// Filters restricts extraction to requested periods and clients. Empty
// slices mean "no filter".
type Filters struct {
	Periods []string
	Clients []string
}

// wantsPeriod reports whether the period passes the period filter.
func (f Filters) wantsPeriod(period string) bool {
	if len(f.Periods) == 0 {
		return true
	}
	for _, p := range f.Periods {
		if p == period {
			return true
		}
	}
	return false
}

// wantsClient reports whether the raw client value matches at least one
// requested client.
func (f Filters) wantsClient(value string) bool {
	if len(f.Clients) == 0 {
		return true
	}
	for _, c := range f.Clients {
		if normalize.ClientMatches(c, value) {
			return true
		}
	}
	return false
}
