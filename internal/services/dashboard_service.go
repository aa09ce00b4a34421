package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"seafreight/internal/config"
	"seafreight/internal/infrastructure"
	"seafreight/internal/ingest"
	"seafreight/internal/pipeline"
	"seafreight/pkg/contracts/domain"
)

// enrichmentCacheSize bounds the content-hash memo. Uploads cycling between a
// handful of files stay cached; anything older is evicted oldest-first.
const enrichmentCacheSize = 8

// ReloadNotifier receives the snapshot descriptor after a reload swap.
// The WebSocket hub implements it; a nil notifier disables notifications.
type ReloadNotifier interface {
	BroadcastDatasetReloadedWithTrace(info domain.SnapshotInfo, traceID string)
}

// sessionSnapshot pairs the enriched dataset with its descriptor. Both are
// immutable once built; a reload swaps the whole pair.
type sessionSnapshot struct {
	dataset domain.Dataset
	info    domain.SnapshotInfo
}

// DashboardService owns the active snapshot and answers every dashboard
// query. Loads replace the snapshot atomically; queries rerun the
// filter+aggregation stage over whatever snapshot is current, so concurrent
// readers never block a reload and never see a half-swapped dataset.
//
// Enrichment is memoized by the load's content hash: uploading the same four
// files twice reuses the first run's derived fields instead of recomputing
// them.
type DashboardService struct {
	logger   *slog.Logger
	loader   *ingest.Loader
	enricher *pipeline.Enricher
	engine   *pipeline.Engine
	paths    *config.Paths
	notifier ReloadNotifier
	metrics  *infrastructure.Metrics

	mu   sync.RWMutex
	snap *sessionSnapshot

	cacheMu    sync.Mutex
	cache      map[string]domain.Dataset
	cacheOrder []string
}

// NewDashboardService wires the ingestion and pipeline stages from config.
func NewDashboardService(logger *slog.Logger, cfg *config.Config, paths *config.Paths, notifier ReloadNotifier, metrics *infrastructure.Metrics) *DashboardService {
	return NewDashboardServiceWithClock(logger, cfg, paths, notifier, metrics, time.Now)
}

// NewDashboardServiceWithClock pins the clock that drives overdue cutoffs,
// ETA risk horizons and pickup windows. Tests use it for deterministic
// aggregates; production passes time.Now via NewDashboardService.
func NewDashboardServiceWithClock(logger *slog.Logger, cfg *config.Config, paths *config.Paths, notifier ReloadNotifier, metrics *infrastructure.Metrics, now func() time.Time) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}

	enricher := pipeline.NewEnricher(logger, pipeline.EnricherConfig{
		Seed:              cfg.Pipeline.Seed,
		OnTimeProbability: cfg.Pipeline.OnTimeProbability,
		MaxDelayDays:      cfg.Pipeline.MaxDelayDays,
		Now:               now,
	})
	engine := pipeline.NewEngine(logger, pipeline.EngineConfig{
		ETARiskHorizonDays: cfg.Pipeline.ETARiskHorizonDays,
		ETARiskLimit:       cfg.Pipeline.ETARiskLimit,
		PickupHorizonDays:  cfg.Pipeline.PickupHorizonDays,
		PickupLimit:        cfg.Pipeline.PickupLimit,
		RouteRankingLimit:  cfg.Pipeline.RouteRankingLimit,
		OverrunLimit:       cfg.Pipeline.OverrunLimit,
		OutstandingLimit:   cfg.Pipeline.OutstandingLimit,
		DelayAlertPct:      cfg.Pipeline.DelayAlertPct,
		Now:                now,
	})

	return &DashboardService{
		logger:   logger.With(slog.String("component", "dashboard_service")),
		loader:   ingest.NewLoader(logger),
		enricher: enricher,
		engine:   engine,
		paths:    paths,
		notifier: notifier,
		metrics:  metrics,
		cache:    make(map[string]domain.Dataset),
	}
}

// LoadBundled loads the bundled default dataset files from the data
// directory. Called at startup so the dashboard has data before any upload.
func (s *DashboardService) LoadBundled(ctx context.Context) (domain.SnapshotInfo, error) {
	result, err := s.loader.LoadFromFiles(ctx, s.paths.DatasetFiles())
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordReload("bundled", "failure")
		}
		return domain.SnapshotInfo{}, err
	}
	return s.applySnapshot(ctx, result, "bundled"), nil
}

// ReloadFromUpload replaces the snapshot with an uploaded set of sources.
// Connected dashboard clients are notified once the swap is done.
func (s *DashboardService) ReloadFromUpload(ctx context.Context, sources []ingest.Source) (domain.SnapshotInfo, error) {
	result, err := s.loader.Load(ctx, sources)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordReload("upload", "failure")
		}
		return domain.SnapshotInfo{}, err
	}
	return s.applySnapshot(ctx, result, "upload"), nil
}

// applySnapshot enriches the loaded dataset (or reuses a memoized run),
// swaps it in as the active snapshot and fans out the reload event.
func (s *DashboardService) applySnapshot(ctx context.Context, result *ingest.LoadResult, source string) domain.SnapshotInfo {
	enriched, cached := s.enrichCached(ctx, result)

	info := domain.SnapshotInfo{
		ID:          uuid.New().String(),
		ContentHash: result.ContentHash,
		LoadedAt:    time.Now(),
		Rows:        enriched.Counts(),
	}

	s.mu.Lock()
	s.snap = &sessionSnapshot{dataset: enriched, info: info}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordReload(source, "success")
		s.metrics.SetDatasetRows(config.CollectionShipments, info.Rows.Shipments)
		s.metrics.SetDatasetRows(config.CollectionInvoices, info.Rows.Invoices)
		s.metrics.SetDatasetRows(config.CollectionWarehouse, info.Rows.Warehouse)
		s.metrics.SetDatasetRows(config.CollectionClients, info.Rows.Clients)
	}

	traceID := infrastructure.GetTraceID(ctx)
	if s.notifier != nil {
		s.notifier.BroadcastDatasetReloadedWithTrace(info, traceID)
	}

	s.logger.InfoContext(ctx, "snapshot swapped",
		slog.String("snapshot_id", info.ID),
		slog.String("source", source),
		slog.Bool("enrichment_cached", cached),
		slog.Int("shipments", info.Rows.Shipments),
		slog.Int("invoices", info.Rows.Invoices),
		slog.Int("warehouse", info.Rows.Warehouse),
		slog.Int("clients", info.Rows.Clients))

	return info
}

// enrichCached returns the enriched dataset for a load result, reusing the
// memoized run when the content hash matches a previous load.
func (s *DashboardService) enrichCached(ctx context.Context, result *ingest.LoadResult) (domain.Dataset, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if enriched, ok := s.cache[result.ContentHash]; ok {
		if s.metrics != nil {
			s.metrics.RecordEnrichmentCacheHit()
		}
		return enriched, true
	}

	if s.metrics != nil {
		s.metrics.RecordEnrichmentCacheMiss()
	}
	started := time.Now()
	enriched := s.enricher.Enrich(ctx, result.Dataset)
	if s.metrics != nil {
		s.metrics.ObserveEnrichment(time.Since(started))
	}

	s.cache[result.ContentHash] = enriched
	s.cacheOrder = append(s.cacheOrder, result.ContentHash)
	if len(s.cacheOrder) > enrichmentCacheSize {
		oldest := s.cacheOrder[0]
		s.cacheOrder = s.cacheOrder[1:]
		delete(s.cache, oldest)
	}

	return enriched, false
}

// current returns the active snapshot or ErrSnapshotNotReady before the
// first successful load.
func (s *DashboardService) current() (*sessionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrSnapshotNotReady
	}
	return s.snap, nil
}

// Snapshot returns the active snapshot's descriptor.
func (s *DashboardService) Snapshot() (domain.SnapshotInfo, error) {
	snap, err := s.current()
	if err != nil {
		return domain.SnapshotInfo{}, err
	}
	return snap.info, nil
}

// Dataset returns the active enriched dataset. Callers must treat the
// returned collections as read-only; they are shared with every other
// concurrent reader of the same snapshot.
func (s *DashboardService) Dataset() (domain.Dataset, error) {
	snap, err := s.current()
	if err != nil {
		return domain.Dataset{}, err
	}
	return snap.dataset, nil
}

// KPIs computes the KPI strip for a filter selection. Shipment figures
// describe the filtered view; invoice and warehouse figures always cover the
// full collections.
func (s *DashboardService) KPIs(ctx context.Context, state domain.FilterState) (domain.KpiSnapshot, error) {
	snap, err := s.current()
	if err != nil {
		return domain.KpiSnapshot{}, err
	}
	filtered := s.engine.ApplyFilters(snap.dataset.Shipments, state)
	return s.engine.KPIs(filtered, snap.dataset.Invoices, snap.dataset.Warehouse), nil
}

// FilterOptions returns the filter catalog of the active snapshot.
func (s *DashboardService) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	snap, err := s.current()
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return s.engine.Options(snap.dataset.Shipments), nil
}

// FilteredShipments returns the shipments matching a filter selection, in
// snapshot order. CSV export and the shipment table share this view.
func (s *DashboardService) FilteredShipments(ctx context.Context, state domain.FilterState) ([]domain.Shipment, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.engine.ApplyFilters(snap.dataset.Shipments, state), nil
}

// ShipmentsTab bundles everything the shipments view renders for one filter
// selection.
type ShipmentsTab struct {
	Shipments       []domain.Shipment      `json:"shipments"`
	StatusBreakdown []domain.StatusCount   `json:"status_breakdown"`
	RouteVariance   []domain.RouteVariance `json:"route_variance"`
	TopCostOverruns []domain.Shipment      `json:"top_cost_overruns"`
	ETARisk         []domain.Shipment      `json:"eta_risk"`
	CostByContainer []domain.ContainerCost `json:"cost_by_container"`
	DelayAdvisory   domain.DelayAdvisory   `json:"delay_advisory"`
}

// ShipmentsView computes the shipments tab over the filtered selection.
func (s *DashboardService) ShipmentsView(ctx context.Context, state domain.FilterState) (*ShipmentsTab, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}

	filtered := s.engine.ApplyFilters(snap.dataset.Shipments, state)
	return &ShipmentsTab{
		Shipments:       filtered,
		StatusBreakdown: s.engine.StatusBreakdown(filtered),
		RouteVariance:   s.engine.RouteVarianceRanking(filtered),
		TopCostOverruns: s.engine.TopCostOverruns(filtered),
		ETARisk:         s.engine.ETARiskList(filtered),
		CostByContainer: s.engine.CostByContainer(filtered),
		DelayAdvisory:   s.engine.DelayAdvisory(filtered),
	}, nil
}

// FinanceTab bundles the finance view. Invoices are not keyed to the
// shipment filter, so the whole invoice book is always in scope.
type FinanceTab struct {
	PaymentStatusMix []domain.StatusCount `json:"payment_status_mix"`
	Outstanding      []domain.Invoice     `json:"outstanding"`
	OverdueAmount    decimal.Decimal      `json:"overdue_amount"`
}

// FinanceView computes the finance tab over the full invoice book.
func (s *DashboardService) FinanceView(ctx context.Context) (*FinanceTab, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}

	return &FinanceTab{
		PaymentStatusMix: s.engine.PaymentStatusMix(snap.dataset.Invoices),
		Outstanding:      s.engine.OutstandingByDueDate(snap.dataset.Invoices),
		OverdueAmount:    s.engine.OverdueAmount(snap.dataset.Invoices),
	}, nil
}

// WarehouseTab bundles the warehouse view.
type WarehouseTab struct {
	ByLocation   []domain.LocationQuantity `json:"by_location"`
	InboundTrend []domain.InboundPoint     `json:"inbound_trend"`
}

// WarehouseView computes the warehouse tab over the full register.
func (s *DashboardService) WarehouseView(ctx context.Context) (*WarehouseTab, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}

	return &WarehouseTab{
		ByLocation:   s.engine.WarehouseByLocation(snap.dataset.Warehouse),
		InboundTrend: s.engine.InboundTrend(snap.dataset.Warehouse),
	}, nil
}

// ClientsTab bundles the clients view.
type ClientsTab struct {
	UpcomingPickups []domain.ClientRecord `json:"upcoming_pickups"`
	StatusMix       []domain.StatusCount  `json:"status_mix"`
}

// ClientsView computes the clients tab over the full client list.
func (s *DashboardService) ClientsView(ctx context.Context) (*ClientsTab, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}

	return &ClientsTab{
		UpcomingPickups: s.engine.UpcomingPickups(snap.dataset.Clients),
		StatusMix:       s.engine.ClientStatusMix(snap.dataset.Clients),
	}, nil
}

// StatusBreakdown returns the status distribution of the filtered selection,
// the series behind the status chart.
func (s *DashboardService) StatusBreakdown(ctx context.Context, state domain.FilterState) ([]domain.StatusCount, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.engine.StatusBreakdown(s.engine.ApplyFilters(snap.dataset.Shipments, state)), nil
}

// RouteVarianceRanking returns the route ranking of the filtered selection,
// the series behind the variance chart.
func (s *DashboardService) RouteVarianceRanking(ctx context.Context, state domain.FilterState) ([]domain.RouteVariance, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.engine.RouteVarianceRanking(s.engine.ApplyFilters(snap.dataset.Shipments, state)), nil
}
