package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"opsdiary/internal/normalize"
	"opsdiary/internal/schema"
	"opsdiary/internal/table"
	"opsdiary/pkg/contracts/domain"
)

// BookingExtractor emits one BookingRecord per (period, booking id) group of
// a booking export, with quantities summed across the group.
type BookingExtractor struct {
	logger *slog.Logger
}

// NewBookingExtractor creates a booking extractor. A nil logger silences the
// resolution warnings.
func NewBookingExtractor(logger *slog.Logger) *BookingExtractor {
	if logger != nil {
		logger = logger.With(slog.String("component", "booking_extractor"))
	}
	return &BookingExtractor{logger: logger}
}

// bookingGroup accumulates one (period, booking id) aggregation group.
type bookingGroup struct {
	quantity    int
	bestQty     int
	origin      string
	destination string
}

// Extract runs the booking pipeline over a concatenated workbook table.
// Date, client and quantity columns are mandatory; if any is missing the
// record set is empty.
func (e *BookingExtractor) Extract(t *table.RawTable, filters Filters) []domain.BookingRecord {
	colStatus, hasStatus := schema.ResolveField(e.logger, t.Headers, schema.BookingStatus)
	colDate, hasDate := schema.ResolveField(e.logger, t.Headers, schema.BookingDate)
	colClient, hasClient := schema.ResolveField(e.logger, t.Headers, schema.BookingClient)
	colQty, hasQty := schema.ResolveField(e.logger, t.Headers, schema.BookingQuantity)
	colID, hasID := schema.ResolveField(e.logger, t.Headers, schema.BookingID)
	colOrigin, hasOrigin := schema.ResolveField(e.logger, t.Headers, schema.BookingOriginPort)
	colDest, hasDest := schema.ResolveField(e.logger, t.Headers, schema.BookingDestinationPort)

	if !hasDate || !hasClient || !hasQty {
		return nil
	}

	shipperLabel := strings.Join(filters.Clients, ",")

	type groupKey struct {
		period string
		id     string
	}
	groups := make(map[groupKey]*bookingGroup)
	var order []groupKey

	for i, row := range t.Rows {
		if hasStatus && normalize.Text(row.Cell(colStatus).String()) != "ativo" {
			continue
		}
		if !filters.wantsClient(row.Cell(colClient).String()) {
			continue
		}
		period, ok := normalize.ExtractPeriod(row.Cell(colDate))
		if !ok {
			continue
		}
		if !filters.wantsPeriod(period) {
			continue
		}

		qty := row.Cell(colQty).Int()

		var id string
		if hasID {
			id = row.Cell(colID).String()
		} else {
			// Synthesized ids keep each raw row its own group.
			id = fmt.Sprintf("%s|%d|row%d", period, qty, i)
		}

		key := groupKey{period: period, id: id}
		g, exists := groups[key]
		if !exists {
			g = &bookingGroup{bestQty: -1}
			groups[key] = g
			order = append(order, key)
		}
		g.quantity += qty
		if qty > g.bestQty {
			g.bestQty = qty
			if hasOrigin {
				g.origin = strings.TrimSpace(row.Cell(colOrigin).String())
			}
			if hasDest {
				g.destination = strings.TrimSpace(row.Cell(colDest).String())
			}
		}
	}

	records := make([]domain.BookingRecord, 0, len(order))
	for _, key := range order {
		g := groups[key]
		records = append(records, domain.BookingRecord{
			Period:          key.period,
			BookingID:       key.id,
			OriginPort:      g.origin,
			DestinationPort: g.destination,
			Quantity:        g.quantity,
			ShipperLabel:    shipperLabel,
		})
	}
	return records
}
