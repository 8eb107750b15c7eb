package http

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "opsdiary/internal/errors"
	"opsdiary/internal/services"
	"opsdiary/internal/store"
)

// formFields maps each dataset kind to its multipart field name.
var formFields = map[store.UploadKind]string{
	store.KindBooking:    "booking",
	store.KindMultimodal: "multimodal",
	store.KindTransport:  "transportes",
}

// UploadHandler handles workbook uploads.
type UploadHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxFileSize  int64
}

func NewUploadHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "upload_handler")),
		errorHandler: errorHandler,
		maxFileSize:  maxFileSize,
	}
}

func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Upload)
	return r
}

// Upload handles POST /api/upload. The form carries a client field and the
// three workbooks under booking, multimodal and transportes.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	// One bound for the whole form: three workbooks plus field overhead.
	r.Body = http.MaxBytesReader(w, r.Body, 3*h.maxFileSize+1<<20)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
		return
	}
	defer r.MultipartForm.RemoveAll()

	client := r.FormValue("client")
	if client == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("client", "client field is required"))
		return
	}

	files := make(map[store.UploadKind]services.UploadFile, len(formFields))
	for kind, field := range formFields {
		file, header, err := r.FormFile(field)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(field, "workbook file is required"))
			return
		}
		data, err := readAll(file)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
			return
		}
		files[kind] = services.UploadFile{Filename: header.Filename, Data: data}
	}

	h.logger.InfoContext(r.Context(), "upload received",
		slog.String("request_id", reqID),
		slog.String("client", client))

	result, err := h.service.Upload(r.Context(), client, files)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":       "ok",
		"periods":      result.Periods,
		"embarcadores": result.Shippers,
		"inserted":     result.Inserted,
		"skipped":      result.Skipped,
	})
}

func readAll(file multipart.File) ([]byte, error) {
	defer file.Close()
	return io.ReadAll(file)
}
