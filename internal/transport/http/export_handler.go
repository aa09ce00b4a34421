package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"seafreight/internal/config"
	apierrors "seafreight/internal/errors"
	"seafreight/internal/exporter"
	"seafreight/internal/infrastructure"
	"seafreight/pkg/contracts/domain"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePNG  = "image/png"
)

// ExportHandler serves file and chart downloads: filtered shipments and
// outstanding invoices as CSV, the full workbook as XLSX and the two
// dashboard charts as PNG. Exports are rendered into a buffer first so a
// mid-render failure still gets an RFC 7807 response instead of a truncated
// download.
type ExportHandler struct {
	service   ExportServiceInterface
	shipments *exporter.ShipmentExporter
	invoices  *exporter.InvoiceExporter
	workbook  *exporter.WorkbookExporter
	charts    *exporter.ChartRenderer

	paths        *config.Paths
	metrics      *infrastructure.Metrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	now          func() time.Time
}

// NewExportHandler creates an export handler. A nil metrics collector
// disables export counters.
func NewExportHandler(service ExportServiceInterface, paths *config.Paths, metrics *infrastructure.Metrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		shipments:    exporter.NewShipmentExporter(paths),
		invoices:     exporter.NewInvoiceExporter(paths),
		workbook:     exporter.NewWorkbookExporter(),
		charts:       exporter.NewChartRenderer(),
		paths:        paths,
		metrics:      metrics,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
		now:          time.Now,
	}
}

// Routes returns the export routes.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/shipments.csv", h.ExportShipmentsCSV)
	r.Get("/invoices.csv", h.ExportInvoicesCSV)
	r.Get("/workbook.xlsx", h.ExportWorkbook)
	r.Get("/charts/status.png", h.ExportStatusChart)
	r.Get("/charts/routes.png", h.ExportRouteChart)

	return r
}

// ExportShipmentsCSV handles GET /api/export/shipments.csv. The filter
// selection applies; the download carries source plus derived columns.
func (h *ExportHandler) ExportShipmentsCSV(w http.ResponseWriter, r *http.Request) {
	state, err := parseFilterState(r)
	if err != nil {
		h.fail(w, r, "csv", err)
		return
	}

	shipments, err := h.service.FilteredShipments(r.Context(), state)
	if err != nil {
		h.fail(w, r, "csv", err)
		return
	}

	var buf bytes.Buffer
	if err := h.shipments.ExportShipments(&buf, shipments); err != nil {
		h.fail(w, r, "csv", err)
		return
	}

	h.send(w, r, &buf, contentTypeCSV, h.stampedName("shipments", "csv"), "csv", len(shipments))
}

// ExportInvoicesCSV handles GET /api/export/invoices.csv: the outstanding
// invoices ordered by due date. Invoices are not keyed to the shipment
// filter, so the endpoint takes no parameters.
func (h *ExportHandler) ExportInvoicesCSV(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.FinanceView(r.Context())
	if err != nil {
		h.fail(w, r, "csv", err)
		return
	}

	var buf bytes.Buffer
	if err := h.invoices.ExportOutstanding(&buf, view.Outstanding); err != nil {
		h.fail(w, r, "csv", err)
		return
	}

	h.send(w, r, &buf, contentTypeCSV, h.stampedName("outstanding_invoices", "csv"), "csv", len(view.Outstanding))
}

// ExportWorkbook handles GET /api/export/workbook.xlsx: one sheet per
// collection plus the KPI sheet, always over the full snapshot.
func (h *ExportHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	dataset, err := h.service.Dataset()
	if err != nil {
		h.fail(w, r, "xlsx", err)
		return
	}
	kpis, err := h.service.KPIs(r.Context(), domain.FilterState{})
	if err != nil {
		h.fail(w, r, "xlsx", err)
		return
	}

	var buf bytes.Buffer
	if err := h.workbook.ExportWorkbook(&buf, &dataset, &kpis); err != nil {
		h.fail(w, r, "xlsx", err)
		return
	}

	h.send(w, r, &buf, contentTypeXLSX, h.stampedName("seafreight360", "xlsx"), "xlsx", dataset.Counts().Shipments)
}

// ExportStatusChart handles GET /api/export/charts/status.png: the status
// breakdown bar chart over the filtered selection.
func (h *ExportHandler) ExportStatusChart(w http.ResponseWriter, r *http.Request) {
	state, err := parseFilterState(r)
	if err != nil {
		h.fail(w, r, "png", err)
		return
	}

	counts, err := h.service.StatusBreakdown(r.Context(), state)
	if err != nil {
		h.fail(w, r, "png", err)
		return
	}
	if len(counts) == 0 {
		h.fail(w, r, "png", apierrors.New(
			http.StatusNotFound, "NO_DATA", "No status data for the current selection"))
		return
	}

	var buf bytes.Buffer
	if err := h.charts.RenderStatusBreakdown(&buf, counts); err != nil {
		h.fail(w, r, "png", err)
		return
	}

	h.send(w, r, &buf, contentTypePNG, h.stampedName("status_breakdown", "png"), "png", len(counts))
}

// ExportRouteChart handles GET /api/export/charts/routes.png: routes ranked
// by mean cost variance over the filtered selection.
func (h *ExportHandler) ExportRouteChart(w http.ResponseWriter, r *http.Request) {
	state, err := parseFilterState(r)
	if err != nil {
		h.fail(w, r, "png", err)
		return
	}

	routes, err := h.service.RouteVarianceRanking(r.Context(), state)
	if err != nil {
		h.fail(w, r, "png", err)
		return
	}
	if len(routes) == 0 {
		h.fail(w, r, "png", apierrors.New(
			http.StatusNotFound, "NO_DATA", "No route variance data for the current selection"))
		return
	}

	var buf bytes.Buffer
	if err := h.charts.RenderRouteVariance(&buf, routes); err != nil {
		h.fail(w, r, "png", err)
		return
	}

	h.send(w, r, &buf, contentTypePNG, h.stampedName("route_variance", "png"), "png", len(routes))
}

// send writes a finished export with download headers and counts it.
func (h *ExportHandler) send(w http.ResponseWriter, r *http.Request, buf *bytes.Buffer, contentType, filename, format string, rows int) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		// Headers are out; all that is left is to log the broken pipe.
		h.logger.WarnContext(r.Context(), "export download aborted",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return
	}

	if h.metrics != nil {
		h.metrics.RecordExport(format, "success")
	}
	h.logger.InfoContext(r.Context(), "export served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filename", filename),
		slog.Int("rows", rows),
		slog.Int("bytes", buf.Len()))
}

// fail counts a failed export and delegates to the error handler.
func (h *ExportHandler) fail(w http.ResponseWriter, r *http.Request, format string, err error) {
	if h.metrics != nil {
		h.metrics.RecordExport(format, "failure")
	}
	h.errorHandler.HandleError(w, r, err)
}

// stampedName is the suggested download file name, timestamped the same way
// as exports written to the exports directory.
func (h *ExportHandler) stampedName(prefix, extension string) string {
	return filepath.Base(h.paths.GetStampedExportPath(prefix, extension, h.now()))
}
