// Package services implements the business layer between the HTTP handlers
// and the data pipeline.
//
// DashboardService is the center of the package: it owns the active enriched
// snapshot, swaps it atomically on reload, memoizes enrichment runs by
// content hash and answers every dashboard query by rerunning the
// filter+aggregation stage over the current snapshot. HealthService reports
// liveness, readiness and snapshot statistics for the operational endpoints.
//
// Services receive their dependencies through constructors: a *slog.Logger,
// the application config, and optional collaborators (reload notifier,
// metrics). Query methods accept a context for cancellation and tracing and
// a domain.FilterState when the view is filter-sensitive.
//
// Errors cross the package boundary as sentinels (ErrSnapshotNotReady,
// ErrNoData, ...) that handlers map to status codes via errors.Is.
package services
