package extract

import (
	"log/slog"
	"strings"

	"opsdiary/internal/normalize"
	"opsdiary/internal/schema"
	"opsdiary/internal/table"
	"opsdiary/pkg/contracts/domain"
)

// TransportExtractor emits one DelayRecord per late transport programming
// row, de-duplicated by full record equality.
type TransportExtractor struct {
	logger *slog.Logger
}

// NewTransportExtractor creates a transport extractor.
func NewTransportExtractor(logger *slog.Logger) *TransportExtractor {
	if logger != nil {
		logger = logger.With(slog.String("component", "transport_extractor"))
	}
	return &TransportExtractor{logger: logger}
}

// Extract runs the transport pipeline. Cancelled programmings are dropped,
// only rows whose deadline status reads "atrasado" survive, and the
// programming-type column is mandatory because the KPI layer keys off it.
func (e *TransportExtractor) Extract(t *table.RawTable, filters Filters) []domain.DelayRecord {
	colShipper, hasShipper := schema.ResolveField(e.logger, t.Headers, schema.TransportShipper)
	colProgStatus, hasProgStatus := schema.ResolveField(e.logger, t.Headers, schema.TransportProgramStatus)
	colDeadline, hasDeadline := schema.ResolveField(e.logger, t.Headers, schema.TransportDeadlineStatus)
	colType, hasType := schema.ResolveField(e.logger, t.Headers, schema.TransportProgramType)
	colDate, hasDate := schema.ResolveField(e.logger, t.Headers, schema.TransportReferenceDate)
	colJust, hasJust := schema.ResolveField(e.logger, t.Headers, schema.TransportJustification)
	colOrigin, hasOrigin := schema.ResolveField(e.logger, t.Headers, schema.TransportOriginPort)

	if !hasType {
		return nil
	}

	seen := make(map[domain.DelayRecord]bool)
	var records []domain.DelayRecord
	for _, row := range t.Rows {
		var period string
		if hasDate {
			period, _ = normalize.ExtractPeriod(row.Cell(colDate))
		}
		if len(filters.Periods) > 0 && !filters.wantsPeriod(period) {
			continue
		}
		if hasShipper && !filters.wantsClient(row.Cell(colShipper).String()) {
			continue
		}
		if hasProgStatus && strings.Contains(strings.ToLower(row.Cell(colProgStatus).String()), "cancel") {
			continue
		}
		if hasDeadline && normalize.Text(row.Cell(colDeadline).String()) != "atrasado" {
			continue
		}

		rec := domain.DelayRecord{
			TypeNorm: strings.ToLower(strings.TrimSpace(row.Cell(colType).String())),
			Reason:   normalize.SentinelJustification,
			Period:   period,
		}
		if hasJust {
			rec.Reason = normalize.Justification(row.Cell(colJust))
		}
		if hasOrigin {
			rec.OriginPort = strings.TrimSpace(row.Cell(colOrigin).String())
		}
		if seen[rec] {
			continue
		}
		seen[rec] = true
		records = append(records, rec)
	}
	return records
}
