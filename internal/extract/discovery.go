package extract

import (
	"log/slog"
	"sort"
	"strings"

	"opsdiary/internal/errors"
	"opsdiary/internal/normalize"
	"opsdiary/internal/schema"
	"opsdiary/internal/table"
	"opsdiary/pkg/contracts/domain"
)

// Discover derives the "available data" view of a booking workbook: every
// distinct period any row parses to, and the distinct shipper labels of the
// active-status rows, both sorted ascending. The upload and discovery
// endpoints use this to offer filter choices without re-reading blobs.
//
// Date and client columns are mandatory here; unlike extraction, the caller
// asked specifically about this workbook, so a miss is reported instead of
// degraded around.
func Discover(logger *slog.Logger, t *table.RawTable) (domain.AvailableData, error) {
	colDate, hasDate := schema.ResolveField(logger, t.Headers, schema.BookingDate)
	colClient, hasClient := schema.ResolveField(logger, t.Headers, schema.BookingClient)
	colStatus, hasStatus := schema.ResolveField(logger, t.Headers, schema.BookingStatus)

	if !hasDate {
		return domain.AvailableData{}, errors.NewValidationError("no date column found in booking workbook", nil)
	}
	if !hasClient {
		return domain.AvailableData{}, errors.NewValidationError("no client column found in booking workbook", nil)
	}

	periodSet := make(map[string]bool)
	shipperSet := make(map[string]bool)
	for _, row := range t.Rows {
		if period, ok := normalize.ExtractPeriod(row.Cell(colDate)); ok {
			periodSet[period] = true
		}
		if hasStatus && normalize.Text(row.Cell(colStatus).String()) != "ativo" {
			continue
		}
		if shipper := strings.TrimSpace(row.Cell(colClient).String()); shipper != "" {
			shipperSet[shipper] = true
		}
	}

	out := domain.AvailableData{
		Periods:  make([]string, 0, len(periodSet)),
		Shippers: make([]string, 0, len(shipperSet)),
	}
	for p := range periodSet {
		out.Periods = append(out.Periods, p)
	}
	for s := range shipperSet {
		out.Shippers = append(out.Shippers, s)
	}
	sort.Strings(out.Periods)
	sort.Strings(out.Shippers)
	return out, nil
}
