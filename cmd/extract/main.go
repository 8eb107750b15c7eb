// Command extract runs the three workbook extractors over local .xlsx files
// and prints the canonical records and the KPI summary as JSON. Useful for
// checking a workbook before uploading it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"opsdiary/internal/extract"
	"opsdiary/internal/kpi"
	"opsdiary/internal/table"
	"opsdiary/pkg/contracts/domain"
)

type output struct {
	Available   *domain.AvailableData     `json:"available,omitempty"`
	Bookings    []domain.BookingRecord    `json:"bookings,omitempty"`
	Reschedules []domain.RescheduleRecord `json:"reschedules,omitempty"`
	Delays      []domain.DelayRecord      `json:"delays,omitempty"`
	KPIs        domain.KPISummary         `json:"kpis"`
}

func main() {
	bookingPath := flag.String("booking", "", "booking workbook (.xlsx)")
	multimodalPath := flag.String("multimodal", "", "multimodal workbook (.xlsx)")
	transportPath := flag.String("transportes", "", "transport workbook (.xlsx)")
	periods := flag.String("ym", "", "comma-separated YYYY-MM periods to keep (default: all)")
	shippers := flag.String("embarcador", "", "comma-separated shipper names to keep (default: all)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	filters := extract.Filters{
		Periods: splitList(*periods),
		Clients: splitList(*shippers),
	}

	var out output
	if *bookingPath != "" {
		t := loadTable(logger, *bookingPath)
		available, err := extract.Discover(logger, t)
		if err == nil {
			out.Available = &available
		}
		out.Bookings = extract.NewBookingExtractor(logger).Extract(t, filters)
	}
	if *multimodalPath != "" {
		t := loadTable(logger, *multimodalPath)
		out.Reschedules = extract.NewMultimodalExtractor(logger).Extract(t, filters)
	}
	if *transportPath != "" {
		t := loadTable(logger, *transportPath)
		out.Delays = extract.NewTransportExtractor(logger).Extract(t, filters)
	}
	if *bookingPath == "" && *multimodalPath == "" && *transportPath == "" {
		fmt.Fprintln(os.Stderr, "usage: extract -booking file.xlsx [-multimodal file.xlsx] [-transportes file.xlsx] [-ym 2024-10] [-embarcador \"Cliente A\"]")
		os.Exit(2)
	}

	out.KPIs = kpi.Aggregate(out.Bookings, out.Reschedules, out.Delays)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("failed to encode output", "error", err)
		os.Exit(1)
	}
}

func loadTable(logger *slog.Logger, path string) *table.RawTable {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read workbook", "path", path, "error", err)
		os.Exit(1)
	}
	t, err := table.LoadWorkbook(data)
	if err != nil {
		logger.Error("failed to parse workbook", "path", path, "error", err)
		os.Exit(1)
	}
	return t
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
