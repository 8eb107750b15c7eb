package services

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"opsdiary/internal/cache"
	"opsdiary/internal/errors"
	"opsdiary/internal/extract"
	"opsdiary/internal/kpi"
	"opsdiary/internal/metrics"
	"opsdiary/internal/report"
	"opsdiary/internal/store"
	"opsdiary/internal/table"
	"opsdiary/pkg/contracts/domain"
)

// ReportService computes everything derived from stored workbooks: KPI
// summaries, diary emails and .eml downloads. Extraction results are cached
// per blob hash and aggregated summaries per request combination.
type ReportService struct {
	store       *store.UploadStore
	resultCache *cache.Cache
	kpiCache    *cache.Cache
	analyzer    *report.Analyzer
	metrics     *metrics.Metrics
	logger      *slog.Logger

	booking    *extract.BookingExtractor
	multimodal *extract.MultimodalExtractor
	transport  *extract.TransportExtractor
}

func NewReportService(st *store.UploadStore, resultCache, kpiCache *cache.Cache, analyzer *report.Analyzer, m *metrics.Metrics, logger *slog.Logger) *ReportService {
	logger = logger.With(slog.String("service", "report"))
	return &ReportService{
		store:       st,
		resultCache: resultCache,
		kpiCache:    kpiCache,
		analyzer:    analyzer,
		metrics:     m,
		logger:      logger,
		booking:     extract.NewBookingExtractor(logger),
		multimodal:  extract.NewMultimodalExtractor(logger),
		transport:   extract.NewTransportExtractor(logger),
	}
}

// Summary is the API payload for a KPI request.
type Summary struct {
	KPIs  domain.KPISummary `json:"kpis"`
	Debug SummaryDebug      `json:"debug"`
}

// SummaryDebug carries the record counts behind a summary, for spot checks
// against the source workbooks.
type SummaryDebug struct {
	BookingRecords  int `json:"booking_len"`
	BookingQuantity int `json:"booking_sum_qtde"`
	DelayRecords    int `json:"transp_len"`
	RescheduleCount int `json:"multi_len"`
}

// records is one client's concatenated canonical data over the requested
// periods.
type records struct {
	Bookings    []domain.BookingRecord
	Reschedules []domain.RescheduleRecord
	Delays      []domain.DelayRecord
}

// Summarize computes (or serves from cache) the KPI summary for a client
// over the given periods and shipper filters.
func (s *ReportService) Summarize(ctx context.Context, client string, periods, shippers []string) (Summary, error) {
	if err := validateSelection(periods, shippers); err != nil {
		return Summary{}, err
	}

	key := summaryKey(client, periods, shippers)
	if cached, ok := s.kpiCache.Get(key); ok {
		s.metrics.CacheHits.Inc()
		return cached.(Summary), nil
	}
	s.metrics.CacheMisses.Inc()

	recs, err := s.collect(ctx, client, periods, shippers)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{
		KPIs: kpi.Aggregate(recs.Bookings, recs.Reschedules, recs.Delays),
		Debug: SummaryDebug{
			BookingRecords:  len(recs.Bookings),
			BookingQuantity: totalQuantity(recs.Bookings),
			DelayRecords:    len(recs.Delays),
			RescheduleCount: len(recs.Reschedules),
		},
	}
	s.kpiCache.Set(key, summary)
	return summary, nil
}

// Email renders the diary email for a client over the given periods.
func (s *ReportService) Email(ctx context.Context, client string, periods, shippers []string) (report.Email, error) {
	if err := validateSelection(periods, shippers); err != nil {
		return report.Email{}, err
	}
	recs, err := s.collect(ctx, client, periods, shippers)
	if err != nil {
		return report.Email{}, err
	}
	kpis := kpi.Aggregate(recs.Bookings, recs.Reschedules, recs.Delays)
	analysis := s.analyzer.Analyze(ctx, kpis, periods, recs.Delays, recs.Reschedules)
	email := report.BuildEmail(report.Input{
		Client:      strings.Join(shippers, ", "),
		Periods:     periods,
		KPIs:        kpis,
		Bookings:    recs.Bookings,
		Delays:      recs.Delays,
		Reschedules: recs.Reschedules,
		Analysis:    analysis,
	})
	s.metrics.ReportsBuilt.WithLabelValues("email").Inc()
	return email, nil
}

// EMLDownload is the API payload for an .eml export.
type EMLDownload struct {
	Filename string `json:"filename"`
	FileB64  string `json:"file_b64"`
}

// EML renders the diary email and packages it as a base64 .eml draft.
func (s *ReportService) EML(ctx context.Context, client string, periods, shippers []string) (EMLDownload, error) {
	email, err := s.Email(ctx, client, periods, shippers)
	if err != nil {
		return EMLDownload{}, err
	}
	raw, err := report.BuildEML(email, "operacoes@opsdiary.local", "", time.Now().UTC())
	if err != nil {
		return EMLDownload{}, err
	}
	s.metrics.ReportsBuilt.WithLabelValues("eml").Inc()
	return EMLDownload{
		Filename: "diario_operacional.eml",
		FileB64:  base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// collect loads the three stored workbooks for every requested period in
// parallel, runs the extractors (cached per blob hash) and concatenates the
// results in sorted period order.
func (s *ReportService) collect(ctx context.Context, client string, periods, shippers []string) (records, error) {
	sorted := append([]string(nil), periods...)
	sort.Strings(sorted)

	perPeriod := make([]records, len(sorted))
	g, gctx := errgroup.WithContext(ctx)
	for i, period := range sorted {
		g.Go(func() error {
			recs, err := s.collectPeriod(gctx, client, period, shippers)
			if err != nil {
				return err
			}
			perPeriod[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return records{}, err
	}

	var out records
	for _, recs := range perPeriod {
		out.Bookings = append(out.Bookings, recs.Bookings...)
		out.Reschedules = append(out.Reschedules, recs.Reschedules...)
		out.Delays = append(out.Delays, recs.Delays...)
	}
	return out, nil
}

func (s *ReportService) collectPeriod(ctx context.Context, client, period string, shippers []string) (records, error) {
	filters := extract.Filters{Periods: []string{period}, Clients: shippers}
	var out records

	for _, kind := range store.Kinds {
		blob, err := s.store.LatestBlob(ctx, client, period, kind)
		if err != nil {
			if errors.IsNotFound(err) {
				return records{}, errors.NewValidationError("workbooks missing for period", err).
					WithContext("period", period).
					WithContext("kind", string(kind))
			}
			return records{}, err
		}

		key := cache.Key(cache.HashBytes(blob), filters.Periods, shippers)
		if cached, ok := s.resultCache.Get(key); ok {
			s.metrics.CacheHits.Inc()
			mergeRecords(&out, kind, cached)
			continue
		}
		s.metrics.CacheMisses.Inc()

		workbook, err := table.LoadWorkbook(blob)
		if err != nil {
			return records{}, err
		}
		started := time.Now()
		var extracted any
		switch kind {
		case store.KindBooking:
			recs := s.booking.Extract(workbook, filters)
			out.Bookings = append(out.Bookings, recs...)
			extracted = recs
			s.metrics.RowsExtracted.WithLabelValues(string(kind)).Add(float64(len(recs)))
		case store.KindMultimodal:
			recs := s.multimodal.Extract(workbook, filters)
			out.Reschedules = append(out.Reschedules, recs...)
			extracted = recs
			s.metrics.RowsExtracted.WithLabelValues(string(kind)).Add(float64(len(recs)))
		case store.KindTransport:
			recs := s.transport.Extract(workbook, filters)
			out.Delays = append(out.Delays, recs...)
			extracted = recs
			s.metrics.RowsExtracted.WithLabelValues(string(kind)).Add(float64(len(recs)))
		}
		s.metrics.ExtractDuration.WithLabelValues(string(kind)).Observe(time.Since(started).Seconds())
		s.resultCache.Set(key, extracted)
	}
	return out, nil
}

func mergeRecords(out *records, kind store.UploadKind, cached any) {
	switch kind {
	case store.KindBooking:
		out.Bookings = append(out.Bookings, cached.([]domain.BookingRecord)...)
	case store.KindMultimodal:
		out.Reschedules = append(out.Reschedules, cached.([]domain.RescheduleRecord)...)
	case store.KindTransport:
		out.Delays = append(out.Delays, cached.([]domain.DelayRecord)...)
	}
}

func validateSelection(periods, shippers []string) error {
	if len(periods) == 0 {
		return errors.NewValidationError("no period selected", nil)
	}
	if len(shippers) == 0 {
		return errors.NewValidationError("no shipper selected", nil)
	}
	return nil
}

func summaryKey(client string, periods, shippers []string) string {
	p := append([]string(nil), periods...)
	c := append([]string(nil), shippers...)
	sort.Strings(p)
	sort.Strings(c)
	return client + "|" + strings.Join(p, ",") + "|" + strings.Join(c, ",")
}

func totalQuantity(bookings []domain.BookingRecord) int {
	total := 0
	for _, b := range bookings {
		total += b.Quantity
	}
	return total
}
