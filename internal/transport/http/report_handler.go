package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "opsdiary/internal/errors"
)

// ReportHandler serves KPI summaries and diary reports.
type ReportHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/summary", h.Summary)
	r.Post("/reports/email", h.Email)
	r.Post("/reports/eml", h.EML)
	return r
}

// Summary handles GET /api/summary?client=...&ym=...&embarcador=...
// ym and embarcador accept comma-separated lists.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	client := r.URL.Query().Get("client")
	if client == "" {
		h.errorHandler.HandleError(w, r, apierrors.MissingParameter("client"))
		return
	}
	periods := splitList(r.URL.Query().Get("ym"))
	shippers := splitList(r.URL.Query().Get("embarcador"))
	if len(periods) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.MissingParameter("ym"))
		return
	}
	if len(shippers) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.MissingParameter("embarcador"))
		return
	}

	summary, err := h.service.Summarize(r.Context(), client, periods, shippers)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// reportRequest is the payload of the email and eml endpoints.
type reportRequest struct {
	Client   string   `json:"client" validate:"required"`
	Periods  []string `json:"yms" validate:"required,min=1,dive,required"`
	Shippers []string `json:"embarcadores" validate:"required,min=1,dive,required"`
}

func (h *ReportHandler) decodeReportRequest(w http.ResponseWriter, r *http.Request) (reportRequest, bool) {
	var req reportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidationFailed)
		return req, false
	}
	return req, true
}

// Email handles POST /api/reports/email.
func (h *ReportHandler) Email(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReportRequest(w, r)
	if !ok {
		return
	}
	email, err := h.service.Email(r.Context(), req.Client, req.Periods, req.Shippers)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":     "ok",
		"subject":    email.Subject,
		"email":      email.Text,
		"email_html": email.HTML,
	})
}

// EML handles POST /api/reports/eml.
func (h *ReportHandler) EML(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReportRequest(w, r)
	if !ok {
		return
	}
	download, err := h.service.EML(r.Context(), req.Client, req.Periods, req.Shippers)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":   "ok",
		"filename": download.Filename,
		"file_b64": download.FileB64,
	})
}

// splitList parses a comma-separated query value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
