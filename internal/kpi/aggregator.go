// Package kpi folds the three canonical record sets into the summary the
// API and report builders consume.
package kpi

import (
	"opsdiary/pkg/contracts/domain"
)

// Aggregate computes the KPI summary over booking, reschedule and delay
// records. Port ranking ties resolve to whichever port entered the
// aggregation first, so output depends only on record order, keeping the
// summary deterministic for memoization.
func Aggregate(bookings []domain.BookingRecord, reschedules []domain.RescheduleRecord, delays []domain.DelayRecord) domain.KPISummary {
	var summary domain.KPISummary

	portTotals := make(map[string]int)
	var portOrder []string
	for _, b := range bookings {
		summary.TotalOps += b.Quantity
		if _, seen := portTotals[b.OriginPort]; !seen {
			portOrder = append(portOrder, b.OriginPort)
		}
		portTotals[b.OriginPort] += b.Quantity
	}

	if len(portOrder) > 0 {
		busiest, quietest := portOrder[0], portOrder[0]
		for _, port := range portOrder[1:] {
			if portTotals[port] > portTotals[busiest] {
				busiest = port
			}
			if portTotals[port] < portTotals[quietest] {
				quietest = port
			}
		}
		summary.BusiestPort = &busiest
		summary.QuietestPort = &quietest
	}

	for _, d := range delays {
		switch d.TypeNorm {
		case domain.DelayTypeCollection:
			summary.CollectionDelays++
		case domain.DelayTypeDelivery:
			summary.DeliveryDelays++
		}
	}

	for _, r := range reschedules {
		summary.Reschedules += r.Flag
	}

	return summary
}
