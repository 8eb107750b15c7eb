package services

import (
	"context"
	"log/slog"
	"time"

	"opsdiary/internal/cache"
	"opsdiary/internal/errors"
	"opsdiary/internal/extract"
	"opsdiary/internal/metrics"
	"opsdiary/internal/store"
	"opsdiary/internal/table"
	"opsdiary/internal/validation"
)

// UploadFile is one workbook received from a multipart form.
type UploadFile struct {
	Filename string
	Data     []byte
}

// UploadResult is the outcome of one upload request: what the booking
// workbook declared, and what was persisted or skipped per (period, kind).
type UploadResult struct {
	Periods  []string           `json:"periods"`
	Shippers []string           `json:"embarcadores"`
	Inserted []store.SaveResult `json:"inserted"`
	Skipped  []store.SaveResult `json:"skipped"`
}

// DataService owns the upload lifecycle and the stored-data views.
type DataService struct {
	store     *store.UploadStore
	validator *validation.UploadValidator
	kpiCache  *cache.Cache
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewDataService(st *store.UploadStore, validator *validation.UploadValidator, kpiCache *cache.Cache, m *metrics.Metrics, logger *slog.Logger) *DataService {
	return &DataService{
		store:     st,
		validator: validator,
		kpiCache:  kpiCache,
		metrics:   m,
		logger:    logger.With(slog.String("service", "data")),
	}
}

// Upload validates the three workbooks, discovers periods and shippers from
// the booking workbook, and persists each blob once per discovered period
// and kind. Re-sent identical blobs are reported as skipped.
func (s *DataService) Upload(ctx context.Context, client string, files map[store.UploadKind]UploadFile) (UploadResult, error) {
	for _, kind := range store.Kinds {
		f, ok := files[kind]
		if !ok {
			return UploadResult{}, errors.NewValidationError("missing workbook", nil).
				WithContext("field", string(kind))
		}
		if err := s.validator.ValidateWorkbook(string(kind), f.Filename, f.Data); err != nil {
			s.metrics.UploadsAccepted.WithLabelValues(string(kind), "rejected").Inc()
			return UploadResult{}, err
		}
	}

	booking := files[store.KindBooking]
	workbook, err := table.LoadWorkbook(booking.Data)
	if err != nil {
		s.metrics.UploadsAccepted.WithLabelValues(string(store.KindBooking), "rejected").Inc()
		return UploadResult{}, err
	}
	available, err := extract.Discover(s.logger, workbook)
	if err != nil {
		s.metrics.UploadsAccepted.WithLabelValues(string(store.KindBooking), "rejected").Inc()
		return UploadResult{}, err
	}
	if len(available.Periods) == 0 {
		return UploadResult{}, errors.NewValidationError("no period could be derived from the booking workbook", nil)
	}

	hashes := make(map[store.UploadKind]string, len(files))
	for kind, f := range files {
		hashes[kind] = cache.HashBytes(f.Data)
	}

	result := UploadResult{
		Periods:  available.Periods,
		Shippers: available.Shippers,
		Inserted: []store.SaveResult{},
		Skipped:  []store.SaveResult{},
	}
	for _, period := range available.Periods {
		for _, kind := range store.Kinds {
			saved, err := s.store.Save(ctx, client, period, kind, files[kind].Data, hashes[kind])
			if err != nil {
				return UploadResult{}, err
			}
			if saved.Inserted {
				result.Inserted = append(result.Inserted, saved)
				s.metrics.UploadsAccepted.WithLabelValues(string(kind), "inserted").Inc()
			} else {
				result.Skipped = append(result.Skipped, saved)
				s.metrics.UploadsAccepted.WithLabelValues(string(kind), "skipped").Inc()
			}
		}
	}

	s.kpiCache.InvalidatePrefix(client + "|")
	s.logger.InfoContext(ctx, "upload stored",
		slog.String("client", client),
		slog.Int("periods", len(result.Periods)),
		slog.Int("inserted", len(result.Inserted)),
		slog.Int("skipped", len(result.Skipped)))
	return result, nil
}

// AvailableResult describes what the store already holds for a client.
type AvailableResult struct {
	HasData  bool     `json:"has_data"`
	Periods  []string `json:"periods"`
	Shippers []string `json:"embarcadores"`
}

// Available reports the periods with a complete workbook set and the
// shippers found in the newest stored booking workbook. A booking blob
// that no longer parses degrades to an empty shipper list.
func (s *DataService) Available(ctx context.Context, client string) (AvailableResult, error) {
	periods, err := s.store.CompletePeriods(ctx, client)
	if err != nil {
		return AvailableResult{}, err
	}
	if len(periods) == 0 {
		return AvailableResult{Periods: []string{}, Shippers: []string{}}, nil
	}

	result := AvailableResult{HasData: true, Periods: periods, Shippers: []string{}}
	blob, err := s.store.LatestBlob(ctx, client, periods[0], store.KindBooking)
	if err != nil {
		s.logger.WarnContext(ctx, "latest booking blob unavailable",
			slog.String("client", client),
			slog.String("period", periods[0]),
			slog.String("error", err.Error()))
		return result, nil
	}
	workbook, err := table.LoadWorkbook(blob)
	if err != nil {
		s.logger.WarnContext(ctx, "stored booking workbook no longer parses",
			slog.String("client", client),
			slog.String("period", periods[0]),
			slog.String("error", err.Error()))
		return result, nil
	}
	available, err := extract.Discover(s.logger, workbook)
	if err != nil {
		return result, nil
	}
	result.Shippers = available.Shippers
	return result, nil
}

// Flush removes stored workbooks for a client, optionally scoped to one
// period, and drops any cached summaries for that client.
func (s *DataService) Flush(ctx context.Context, client, period string) (int64, error) {
	deleted, err := s.store.Flush(ctx, client, period)
	if err != nil {
		return 0, err
	}
	s.kpiCache.InvalidatePrefix(client + "|")
	s.logger.InfoContext(ctx, "uploads flushed",
		slog.String("client", client),
		slog.String("period", period),
		slog.Int64("deleted", deleted))
	return deleted, nil
}

// Health describes the liveness of the service's dependencies.
type Health struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	CacheSize int       `json:"cache_entries"`
	CheckedAt time.Time `json:"checked_at"`
}

func (s *DataService) Health(ctx context.Context) Health {
	h := Health{Status: "ok", Database: "ok", CacheSize: s.kpiCache.Len(), CheckedAt: time.Now().UTC()}
	if err := s.store.Ping(ctx); err != nil {
		h.Status = "degraded"
		h.Database = err.Error()
	}
	return h
}
