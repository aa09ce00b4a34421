package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "seafreight/internal/errors"
)

// DashboardHandler serves the dashboard query API: the KPI strip, the
// per-tab aggregate bundles and the filter catalog. Filter state arrives as
// query parameters on every request; the server stores none of it.
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler with RFC 7807 error handling.
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/kpis", h.GetKPIs)
	r.Get("/filters", h.GetFilterOptions)
	r.Get("/shipments", h.GetShipmentsTab)
	r.Get("/finance", h.GetFinanceTab)
	r.Get("/warehouse", h.GetWarehouseTab)
	r.Get("/clients", h.GetClientsTab)

	return r
}

// GetKPIs handles GET /api/dashboard/kpis.
func (h *DashboardHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	state, err := parseFilterState(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "computing kpis",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("origins", len(state.Origins)),
		slog.Int("destinations", len(state.Destinations)),
		slog.Int("statuses", len(state.Statuses)))

	kpis, err := h.service.KPIs(r.Context(), state)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   kpis,
	})
}

// GetFilterOptions handles GET /api/dashboard/filters.
func (h *DashboardHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   opts,
	})
}

// GetShipmentsTab handles GET /api/dashboard/shipments.
func (h *DashboardHandler) GetShipmentsTab(w http.ResponseWriter, r *http.Request) {
	state, err := parseFilterState(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	tab, err := h.service.ShipmentsView(r.Context(), state)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tab,
		"count":  len(tab.Shipments),
	})
}

// GetFinanceTab handles GET /api/dashboard/finance. Invoices are not keyed
// to the shipment filter, so this endpoint takes no filter parameters.
func (h *DashboardHandler) GetFinanceTab(w http.ResponseWriter, r *http.Request) {
	tab, err := h.service.FinanceView(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tab,
		"count":  len(tab.Outstanding),
	})
}

// GetWarehouseTab handles GET /api/dashboard/warehouse.
func (h *DashboardHandler) GetWarehouseTab(w http.ResponseWriter, r *http.Request) {
	tab, err := h.service.WarehouseView(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tab,
		"count":  len(tab.ByLocation),
	})
}

// GetClientsTab handles GET /api/dashboard/clients.
func (h *DashboardHandler) GetClientsTab(w http.ResponseWriter, r *http.Request) {
	tab, err := h.service.ClientsView(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tab,
		"count":  len(tab.UpcomingPickups),
	})
}
