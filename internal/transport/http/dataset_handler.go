package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"seafreight/internal/config"
	apierrors "seafreight/internal/errors"
	"seafreight/internal/ingest"
	custommw "seafreight/internal/middleware"
	apiv1 "seafreight/pkg/contracts/api/v1"
)

// multipartFormOverhead covers boundaries and part headers on top of the
// per-file payload caps when limiting the request body.
const multipartFormOverhead = 64 << 10

// DatasetHandler serves the snapshot lifecycle: inspecting the active
// snapshot, uploading replacement dataset files and re-reading the bundled
// defaults. Uploaded collections are optional; gaps are filled from the
// bundled files so the loader always sees all four.
type DatasetHandler struct {
	service        DatasetServiceInterface
	paths          *config.Paths
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewDatasetHandler creates a dataset handler. maxUploadBytes caps each
// uploaded form file.
func NewDatasetHandler(service DatasetServiceInterface, paths *config.Paths, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *DatasetHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = config.DefaultUploadLimitBytes
	}
	return &DatasetHandler{
		service:        service,
		paths:          paths,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/snapshot", h.GetSnapshot)
	r.With(custommw.ContentTypeValidator("multipart/form-data")).Post("/upload", h.Upload)
	r.Post("/reload", h.Reload)

	return r
}

// GetSnapshot handles GET /api/dataset/snapshot.
func (h *DatasetHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Snapshot()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}

// Upload handles POST /api/dataset/upload: a multipart form with up to four
// named file fields (shipments, invoices, warehouse, clients). At least one
// must be present; the rest fall back to the bundled defaults.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	maxBody := h.maxUploadBytes*config.MaxUploadFiles + multipartFormOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"UPLOAD_TOO_LARGE",
				"Upload exceeds the maximum allowed size",
				map[string]interface{}{"max_bytes": maxBody},
			))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_REQUEST",
			"Request is not a valid multipart form",
			map[string]interface{}{"error": err.Error()},
		))
		return
	}
	defer r.MultipartForm.RemoveAll()

	if field, ok := unknownUploadField(r.MultipartForm); ok {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"VALIDATION_FAILED",
			config.ErrUploadUnknownFile,
			map[string]interface{}{"field": field},
		))
		return
	}

	sources, uploaded, err := h.collectSources(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if uploaded == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
			"files", "Upload must include at least one dataset file"))
		return
	}

	h.logger.InfoContext(r.Context(), "dataset upload received",
		slog.String("request_id", reqID),
		slog.Int("uploaded_files", uploaded),
		slog.Int("bundled_fallbacks", len(sources)-uploaded))

	ctx, cancel := context.WithTimeout(r.Context(), config.ReloadTimeout)
	defer cancel()

	info, err := h.service.ReloadFromUpload(ctx, sources)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": config.MsgDatasetReloaded,
		"data":    info,
	})
}

// Reload handles POST /api/dataset/reload: re-reads the bundled default
// files, discarding any previously uploaded snapshot.
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), config.ReloadTimeout)
	defer cancel()

	info, err := h.service.LoadBundled(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "bundled dataset reloaded",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("snapshot_id", info.ID))

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": config.MsgDatasetReloaded,
		"data":    info,
	})
}

// collectSources assembles the four loader sources from the multipart form,
// reading bundled defaults for absent fields. Returns the sources and how
// many came from the upload.
func (h *DatasetHandler) collectSources(r *http.Request) ([]ingest.Source, int, error) {
	defaults := h.paths.DatasetFiles()

	sources := make([]ingest.Source, 0, len(apiv1.UploadFields))
	uploaded := 0
	for _, field := range apiv1.UploadFields {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			src, err := bundledSource(field, defaults[field])
			if err != nil {
				return nil, 0, err
			}
			sources = append(sources, src)
			continue
		}
		if err != nil {
			return nil, 0, apierrors.ErrValidation(field, fmt.Sprintf("could not read form file: %v", err))
		}

		if header.Size > h.maxUploadBytes {
			file.Close()
			return nil, 0, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"UPLOAD_TOO_LARGE",
				fmt.Sprintf("File %q exceeds the per-file upload limit", header.Filename),
				map[string]interface{}{
					"field":     field,
					"size":      header.Size,
					"max_bytes": h.maxUploadBytes,
				},
			)
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, 0, apierrors.ErrValidation(field, fmt.Sprintf("could not read uploaded file: %v", err))
		}

		sources = append(sources, ingest.Source{
			Collection: field,
			Filename:   header.Filename,
			Data:       data,
		})
		uploaded++
	}

	return sources, uploaded, nil
}

// bundledSource reads one bundled default file as a loader source.
func bundledSource(collection, path string) (ingest.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingest.Source{}, apierrors.NewStorageError(
			fmt.Sprintf("read bundled %s file", collection), err).
			WithContext("path", path)
	}
	return ingest.Source{
		Collection: collection,
		Filename:   filepath.Base(path),
		Data:       data,
	}, nil
}

// unknownUploadField reports the first form file field that is not a known
// collection name.
func unknownUploadField(form *multipart.Form) (string, bool) {
	known := make(map[string]bool, len(apiv1.UploadFields))
	for _, f := range apiv1.UploadFields {
		known[f] = true
	}
	for field := range form.File {
		if !known[field] {
			return field, true
		}
	}
	return "", false
}
