package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "opsdiary/internal/errors"
	"opsdiary/internal/report"
	"opsdiary/internal/services"
	"opsdiary/internal/store"
	"opsdiary/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger())
}

type fakeDataService struct {
	uploadClient string
	uploadFiles  map[store.UploadKind]services.UploadFile
	uploadResult services.UploadResult
	uploadErr    error

	availableResult services.AvailableResult
	availableErr    error

	flushClient string
	flushPeriod string
	flushCount  int64
	flushErr    error

	health services.Health
}

func (f *fakeDataService) Upload(_ context.Context, client string, files map[store.UploadKind]services.UploadFile) (services.UploadResult, error) {
	f.uploadClient = client
	f.uploadFiles = files
	return f.uploadResult, f.uploadErr
}

func (f *fakeDataService) Available(_ context.Context, client string) (services.AvailableResult, error) {
	return f.availableResult, f.availableErr
}

func (f *fakeDataService) Flush(_ context.Context, client, period string) (int64, error) {
	f.flushClient = client
	f.flushPeriod = period
	return f.flushCount, f.flushErr
}

func (f *fakeDataService) Health(context.Context) services.Health {
	return f.health
}

type fakeReportService struct {
	client   string
	periods  []string
	shippers []string

	summary    services.Summary
	summaryErr error
	email      report.Email
	emailErr   error
	eml        services.EMLDownload
	emlErr     error
}

func (f *fakeReportService) Summarize(_ context.Context, client string, periods, shippers []string) (services.Summary, error) {
	f.client, f.periods, f.shippers = client, periods, shippers
	return f.summary, f.summaryErr
}

func (f *fakeReportService) Email(_ context.Context, client string, periods, shippers []string) (report.Email, error) {
	f.client, f.periods, f.shippers = client, periods, shippers
	return f.email, f.emailErr
}

func (f *fakeReportService) EML(_ context.Context, client string, periods, shippers []string) (services.EMLDownload, error) {
	f.client, f.periods, f.shippers = client, periods, shippers
	return f.eml, f.emlErr
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func multipartUpload(t *testing.T, client string, fields map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if client != "" {
		require.NoError(t, w.WriteField("client", client))
	}
	for field, data := range fields {
		fw, err := w.CreateFormFile(field, field+".xlsx")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadHandler(t *testing.T) {
	svc := &fakeDataService{
		uploadResult: services.UploadResult{
			Periods:  []string{"2024-10"},
			Shippers: []string{"Maersk"},
			Inserted: []store.SaveResult{{Period: "2024-10", Kind: "booking", Inserted: true}},
		},
	}
	h := NewUploadHandler(svc, testLogger(), testErrorHandler(), 1<<20)

	body, contentType := multipartUpload(t, "maersk", map[string][]byte{
		"booking":     []byte("b"),
		"multimodal":  []byte("m"),
		"transportes": []byte("t"),
	})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody(t, rec)
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, []interface{}{"2024-10"}, got["periods"])
	assert.Equal(t, []interface{}{"Maersk"}, got["embarcadores"])

	assert.Equal(t, "maersk", svc.uploadClient)
	require.Len(t, svc.uploadFiles, 3)
	assert.Equal(t, "booking.xlsx", svc.uploadFiles[store.KindBooking].Filename)
	assert.Equal(t, []byte("t"), svc.uploadFiles[store.KindTransport].Data)
}

func TestUploadHandlerMissingClient(t *testing.T) {
	h := NewUploadHandler(&fakeDataService{}, testLogger(), testErrorHandler(), 1<<20)

	body, contentType := multipartUpload(t, "", map[string][]byte{
		"booking":     []byte("b"),
		"multimodal":  []byte("m"),
		"transportes": []byte("t"),
	})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "client field is required")
}

func TestUploadHandlerMissingWorkbook(t *testing.T) {
	h := NewUploadHandler(&fakeDataService{}, testLogger(), testErrorHandler(), 1<<20)

	body, contentType := multipartUpload(t, "maersk", map[string][]byte{
		"booking": []byte("b"),
	})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "workbook file is required")
}

func TestUploadHandlerServiceError(t *testing.T) {
	svc := &fakeDataService{
		uploadErr: apierrors.NewValidationError("no booking period found", nil),
	}
	h := NewUploadHandler(svc, testLogger(), testErrorHandler(), 1<<20)

	body, contentType := multipartUpload(t, "maersk", map[string][]byte{
		"booking":     []byte("b"),
		"multimodal":  []byte("m"),
		"transportes": []byte("t"),
	})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no booking period found")
}

func TestSummaryHandler(t *testing.T) {
	svc := &fakeReportService{
		summary: services.Summary{
			KPIs:  domain.KPISummary{TotalOps: 12},
			Debug: services.SummaryDebug{BookingRecords: 4},
		},
	}
	h := NewReportHandler(svc, testLogger(), testErrorHandler())

	req := httptest.NewRequest(http.MethodGet,
		"/summary?client=maersk&ym=2024-10,2024-11&embarcador=Maersk,Maersk%20Brasil", nil)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "maersk", svc.client)
	assert.Equal(t, []string{"2024-10", "2024-11"}, svc.periods)
	assert.Equal(t, []string{"Maersk", "Maersk Brasil"}, svc.shippers)

	got := decodeBody(t, rec)
	kpis, ok := got["kpis"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(12), kpis["total_ops"])
}

func TestSummaryHandlerMissingParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"no client", "/summary?ym=2024-10&embarcador=Maersk"},
		{"no ym", "/summary?client=maersk&embarcador=Maersk"},
		{"no embarcador", "/summary?client=maersk&ym=2024-10"},
		{"blank ym entries", "/summary?client=maersk&ym=,,&embarcador=Maersk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(&fakeReportService{}, testLogger(), testErrorHandler())
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "MISSING_PARAMETER")
		})
	}
}

func TestEmailHandler(t *testing.T) {
	svc := &fakeReportService{
		email: report.Email{Subject: "Diário de Bordo", Text: "texto", HTML: "<html></html>"},
	}
	h := NewReportHandler(svc, testLogger(), testErrorHandler())

	payload := `{"client":"maersk","yms":["2024-10"],"embarcadores":["Maersk"]}`
	req := httptest.NewRequest(http.MethodPost, "/reports/email", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody(t, rec)
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "Diário de Bordo", got["subject"])
	assert.Equal(t, "texto", got["email"])
	assert.Equal(t, "<html></html>", got["email_html"])
}

func TestEmailHandlerRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{"},
		{"missing client", `{"yms":["2024-10"],"embarcadores":["Maersk"]}`},
		{"empty periods", `{"client":"maersk","yms":[],"embarcadores":["Maersk"]}`},
		{"blank shipper entry", `{"client":"maersk","yms":["2024-10"],"embarcadores":[""]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(&fakeReportService{}, testLogger(), testErrorHandler())
			req := httptest.NewRequest(http.MethodPost, "/reports/email", strings.NewReader(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestEMLHandler(t *testing.T) {
	svc := &fakeReportService{
		eml: services.EMLDownload{Filename: "diario_operacional.eml", FileB64: "ZGFkb3M="},
	}
	h := NewReportHandler(svc, testLogger(), testErrorHandler())

	payload := `{"client":"maersk","yms":["2024-10"],"embarcadores":["Maersk"]}`
	req := httptest.NewRequest(http.MethodPost, "/reports/eml", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody(t, rec)
	assert.Equal(t, "diario_operacional.eml", got["filename"])
	assert.Equal(t, "ZGFkb3M=", got["file_b64"])
}

func TestEMLHandlerReportsMissingData(t *testing.T) {
	svc := &fakeReportService{
		emlErr: apierrors.NewNotFoundError("workbooks missing for period", nil),
	}
	h := NewReportHandler(svc, testLogger(), testErrorHandler())

	payload := `{"client":"maersk","yms":["2024-10"],"embarcadores":["Maersk"]}`
	req := httptest.NewRequest(http.MethodPost, "/reports/eml", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailableDataHandler(t *testing.T) {
	svc := &fakeDataService{
		availableResult: services.AvailableResult{
			HasData:  true,
			Periods:  []string{"2024-10", "2024-11"},
			Shippers: []string{"Maersk"},
		},
	}
	h := NewDataHandler(svc, testLogger(), testErrorHandler())

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/available-data?client=maersk", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody(t, rec)
	assert.Equal(t, true, got["has_data"])
	assert.Equal(t, []interface{}{"2024-10", "2024-11"}, got["periods"])
	assert.Equal(t, []interface{}{"Maersk"}, got["embarcadores"])
}

func TestAvailableDataHandlerMissingClient(t *testing.T) {
	h := NewDataHandler(&fakeDataService{}, testLogger(), testErrorHandler())
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/available-data", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFlushHandler(t *testing.T) {
	svc := &fakeDataService{flushCount: 3}
	h := NewDataHandler(svc, testLogger(), testErrorHandler())

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/uploads?client=maersk&ym=2024-10", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody(t, rec)
	assert.Equal(t, float64(3), got["deleted"])
	assert.Equal(t, "maersk", svc.flushClient)
	assert.Equal(t, "2024-10", svc.flushPeriod)
}

func TestFlushHandlerWholeClient(t *testing.T) {
	svc := &fakeDataService{flushCount: 9}
	h := NewDataHandler(svc, testLogger(), testErrorHandler())

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/uploads?client=maersk", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.flushPeriod)
}

func TestFlushHandlerRejectsBadPeriod(t *testing.T) {
	h := NewDataHandler(&fakeDataService{}, testLogger(), testErrorHandler())
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/uploads?client=maersk&ym=10-2024", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "period must be YYYY-MM")
}

func TestHealthHandler(t *testing.T) {
	svc := &fakeDataService{
		health: services.Health{Status: "degraded", Database: "dial error", CacheSize: 2},
	}
	h := NewHealthHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code, "degraded still answers 200")
	got := decodeBody(t, rec)
	assert.Equal(t, "degraded", got["status"])
	assert.Equal(t, "dial error", got["database"])
	assert.Equal(t, float64(2), got["cache_entries"])
}
