package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "opsdiary/internal/errors"
	"opsdiary/pkg/contracts/domain"
)

// DataHandler serves the stored-data views and the flush operation.
type DataHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/available-data", h.AvailableData)
	r.Delete("/uploads", h.Flush)
	return r
}

// AvailableData handles GET /api/available-data?client=...
func (h *DataHandler) AvailableData(w http.ResponseWriter, r *http.Request) {
	client := r.URL.Query().Get("client")
	if client == "" {
		h.errorHandler.HandleError(w, r, apierrors.MissingParameter("client"))
		return
	}

	available, err := h.service.Available(r.Context(), client)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":       "ok",
		"has_data":     available.HasData,
		"periods":      available.Periods,
		"embarcadores": available.Shippers,
	})
}

// Flush handles DELETE /api/uploads?client=...[&ym=...]. Without ym the
// whole client bucket is removed.
func (h *DataHandler) Flush(w http.ResponseWriter, r *http.Request) {
	client := r.URL.Query().Get("client")
	if client == "" {
		h.errorHandler.HandleError(w, r, apierrors.MissingParameter("client"))
		return
	}
	period := r.URL.Query().Get("ym")
	if period != "" && !domain.ValidPeriod(period) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("ym", "period must be YYYY-MM"))
		return
	}

	deleted, err := h.service.Flush(r.Context(), client, period)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"deleted": deleted,
	})
}
