package http

import (
	"context"

	"opsdiary/internal/report"
	"opsdiary/internal/services"
	"opsdiary/internal/store"
)

// DataServiceInterface is what the upload and stored-data handlers need.
type DataServiceInterface interface {
	Upload(ctx context.Context, client string, files map[store.UploadKind]services.UploadFile) (services.UploadResult, error)
	Available(ctx context.Context, client string) (services.AvailableResult, error)
	Flush(ctx context.Context, client, period string) (int64, error)
	Health(ctx context.Context) services.Health
}

// ReportServiceInterface is what the summary and report handlers need.
type ReportServiceInterface interface {
	Summarize(ctx context.Context, client string, periods, shippers []string) (services.Summary, error)
	Email(ctx context.Context, client string, periods, shippers []string) (report.Email, error)
	EML(ctx context.Context, client string, periods, shippers []string) (services.EMLDownload, error)
}
