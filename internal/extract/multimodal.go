package extract

import (
	"log/slog"
	"strings"

	"opsdiary/internal/normalize"
	"opsdiary/internal/schema"
	"opsdiary/internal/table"
	"opsdiary/pkg/contracts/domain"
)

// MultimodalExtractor emits one RescheduleRecord per qualifying row of a
// multimodal rescheduling export. There is no aggregation: the reschedule
// count is a row count, carried as Flag = 1 on every record.
type MultimodalExtractor struct {
	logger *slog.Logger
}

// NewMultimodalExtractor creates a multimodal extractor.
func NewMultimodalExtractor(logger *slog.Logger) *MultimodalExtractor {
	if logger != nil {
		logger = logger.With(slog.String("component", "multimodal_extractor"))
	}
	return &MultimodalExtractor{logger: logger}
}

// excludedAreas are responsible areas whose reschedules are not attributable
// to the carrier and are filtered out. Compared upper-cased.
var excludedAreas = map[string]bool{"CUS": true, "TRA": true}

// Extract runs the multimodal pipeline. A row survives only when the cause
// column (if resolved) reads "mercosul", the responsible area (if resolved)
// is not an excluded one, and the justification (if resolved) has more than
// one character after trimming.
func (e *MultimodalExtractor) Extract(t *table.RawTable, filters Filters) []domain.RescheduleRecord {
	colClient, hasClient := schema.ResolveField(e.logger, t.Headers, schema.MultimodalClient)
	colCause, hasCause := schema.ResolveField(e.logger, t.Headers, schema.MultimodalCause)
	colArea, hasArea := schema.ResolveField(e.logger, t.Headers, schema.MultimodalArea)
	colJust, hasJust := schema.ResolveField(e.logger, t.Headers, schema.MultimodalJustification)
	colDate, hasDate := schema.ResolveField(e.logger, t.Headers, schema.MultimodalDate)
	colPort, hasPort := schema.ResolveField(e.logger, t.Headers, schema.MultimodalPort)
	colType, hasType := schema.ResolveField(e.logger, t.Headers, schema.MultimodalOperationType)

	var records []domain.RescheduleRecord
	for _, row := range t.Rows {
		var period string
		if hasDate {
			period, _ = normalize.ExtractPeriod(row.Cell(colDate))
		}
		if len(filters.Periods) > 0 && !filters.wantsPeriod(period) {
			continue
		}
		if hasClient && !filters.wantsClient(row.Cell(colClient).String()) {
			continue
		}
		if hasCause && normalize.Text(row.Cell(colCause).String()) != "mercosul" {
			continue
		}
		if hasArea && excludedAreas[strings.ToUpper(strings.TrimSpace(row.Cell(colArea).String()))] {
			continue
		}
		if hasJust && len([]rune(strings.TrimSpace(row.Cell(colJust).String()))) <= 1 {
			continue
		}

		rec := domain.RescheduleRecord{
			Period: period,
			Reason: normalize.SentinelJustification,
			Flag:   1,
		}
		if hasJust {
			rec.Reason = normalize.Justification(row.Cell(colJust))
		}
		if hasPort {
			rec.OperationPort = strings.TrimSpace(row.Cell(colPort).String())
		}
		if hasType {
			rec.OperationType = strings.TrimSpace(row.Cell(colType).String())
		}
		records = append(records, rec)
	}
	return records
}
