package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"seafreight/internal/infrastructure"
	ws "seafreight/internal/websocket"
	"seafreight/pkg/contracts/domain"
)

// HealthService reports process liveness, snapshot statistics and component
// readiness for the operational endpoints.
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	dashboard *DashboardService
	hub       *ws.Hub
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health endpoint's response body.
type HealthStatus struct {
	Status    string                      `json:"status"`
	Timestamp time.Time                   `json:"timestamp"`
	Version   string                      `json:"version"`
	Runtime   infrastructure.RuntimeStats `json:"runtime"`
	Snapshot  *domain.SnapshotInfo        `json:"snapshot,omitempty"`
	Services  map[string]ServiceHealth    `json:"services,omitempty"`
}

// ServiceHealth describes one component's readiness.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. The hub may be nil when the
// WebSocket feature is disabled.
func NewHealthService(logger *slog.Logger, version string, dashboard *DashboardService, hub *ws.Hub) *HealthService {
	return NewHealthServiceWithBuildInfo(logger, version, "", "", dashboard, hub)
}

// NewHealthServiceWithBuildInfo creates a health service carrying build metadata.
func NewHealthServiceWithBuildInfo(logger *slog.Logger, version, buildTime, buildID string, dashboard *DashboardService, hub *ws.Hub) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		dashboard: dashboard,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports liveness plus snapshot statistics. The process is
// healthy even before the first load; the snapshot field is simply absent.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   infrastructure.CollectRuntimeStats(hs.startTime),
		Services:  make(map[string]ServiceHealth),
	}

	if info, err := hs.dashboard.Snapshot(); err == nil {
		status.Snapshot = &info
		status.Services["dataset"] = ServiceHealth{Status: "ready"}
	} else {
		status.Services["dataset"] = ServiceHealth{Status: "not_ready", Message: err.Error()}
	}

	if hs.hub != nil {
		status.Services["websocket"] = ServiceHealth{Status: "ready"}
	} else {
		status.Services["websocket"] = ServiceHealth{Status: "disabled"}
	}

	return status
}

// ReadinessCheck reports not_ready until the first snapshot is loaded, so
// load balancers hold traffic during the bundled startup load.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := hs.HealthCheck(ctx)
	status.Status = "ready"
	if status.Snapshot == nil {
		status.Status = "not_ready"
	}
	return status
}

// Version returns version and build information.
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// Stats merges snapshot, hub and runtime counters for the detailed stats
// endpoint.
func (hs *HealthService) Stats(ctx context.Context) map[string]interface{} {
	stats := map[string]interface{}{
		"runtime": infrastructure.CollectRuntimeStats(hs.startTime),
	}

	if info, err := hs.dashboard.Snapshot(); err == nil {
		stats["snapshot"] = info
	}
	if hs.hub != nil {
		stats["websocket"] = hs.hub.Stats()
	}

	return stats
}
