package http

import (
	"context"

	"seafreight/internal/ingest"
	"seafreight/internal/services"
	"seafreight/pkg/contracts/domain"
)

// DashboardServiceInterface is what the dashboard handler needs from the
// service layer: the KPI strip, the per-tab bundles and the filter catalog.
type DashboardServiceInterface interface {
	KPIs(ctx context.Context, state domain.FilterState) (domain.KpiSnapshot, error)
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
	ShipmentsView(ctx context.Context, state domain.FilterState) (*services.ShipmentsTab, error)
	FinanceView(ctx context.Context) (*services.FinanceTab, error)
	WarehouseView(ctx context.Context) (*services.WarehouseTab, error)
	ClientsView(ctx context.Context) (*services.ClientsTab, error)
}

// DatasetServiceInterface covers the snapshot lifecycle: inspecting the
// active snapshot and replacing it from an upload or the bundled files.
type DatasetServiceInterface interface {
	Snapshot() (domain.SnapshotInfo, error)
	LoadBundled(ctx context.Context) (domain.SnapshotInfo, error)
	ReloadFromUpload(ctx context.Context, sources []ingest.Source) (domain.SnapshotInfo, error)
}

// ExportServiceInterface supplies the data behind file and chart exports.
type ExportServiceInterface interface {
	FilteredShipments(ctx context.Context, state domain.FilterState) ([]domain.Shipment, error)
	FinanceView(ctx context.Context) (*services.FinanceTab, error)
	Dataset() (domain.Dataset, error)
	KPIs(ctx context.Context, state domain.FilterState) (domain.KpiSnapshot, error)
	StatusBreakdown(ctx context.Context, state domain.FilterState) ([]domain.StatusCount, error)
	RouteVarianceRanking(ctx context.Context, state domain.FilterState) ([]domain.RouteVariance, error)
}
