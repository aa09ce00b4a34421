package config

import "time"

// Application constants - all hardcoded values for the SeaFreight360 system
const (
	// Application Info
	AppName    = "SeaFreight360"
	AppVersion = "1.0.0"

	// Dataset Collections
	CollectionShipments = "shipments"
	CollectionInvoices  = "invoices"
	CollectionWarehouse = "warehouse"
	CollectionClients   = "clients"

	// Dataset Files (relative to the data directory)
	ShipmentsFileName = "shipments.csv"
	InvoicesFileName  = "invoices.csv"
	WarehouseFileName = "warehouse.csv"
	ClientsFileName   = "clients.csv"

	// Upload Limits
	DefaultUploadLimitBytes = 10 << 20 // per form file
	MaxUploadFiles          = 4

	// Batch input files may be much larger than dashboard uploads
	MaxDatasetFileBytes = 64 << 20

	// Stamped export files kept on disk before the oldest are pruned
	DefaultMaxStoredExports = 50

	// Delivery Simulation Defaults
	DefaultSimulationSeed    = 42
	DefaultOnTimeProbability = 0.75
	DefaultMaxDelayDays      = 5

	// Aggregate Horizons and Caps
	DefaultETARiskHorizonDays = 3
	DefaultETARiskLimit       = 5
	DefaultPickupHorizonDays  = 7
	DefaultPickupLimit        = 10
	DefaultRouteRankingLimit  = 10
	DefaultOverrunLimit       = 5
	DefaultOutstandingLimit   = 15
	DefaultDelayAlertPct      = 20.0

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second
	WebSocketWriteWait  = 10 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultExportsDir = "exports"
	DefaultLogsDir    = "logs"
	DefaultWebDir     = "web"

	// Operation Timeouts
	ReloadTimeout = 1 * time.Minute
	ExportTimeout = 2 * time.Minute

	// WebSocket Buffer Sizes
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Dataset Value Formats
	DateFormat = "2006-01-02"

	// Error Messages
	ErrNoDatasetLoaded   = "No dataset loaded. Upload the collection files or bundle defaults under data/."
	ErrDatasetMalformed  = "Dataset file could not be parsed. Check the header row and cell formats."
	ErrUploadUnknownFile = "Unknown upload field. Expected shipments, invoices, warehouse or clients."

	// Success Messages
	MsgDatasetReloaded  = "Dataset reloaded successfully."
	MsgOperationSuccess = "Operation completed successfully."
)

// Feature Flags - compile-time configuration
const (
	// Core Features
	FeatureWebSocketEnabled   = true
	FeatureMetricsEnabled     = true
	FeatureHealthCheckEnabled = true

	// Security Features
	FeatureRateLimitingEnabled = true

	// Development Features
	FeatureDebugLoggingEnabled = false
	FeatureMockDataEnabled     = false
)

// API Endpoints (internal)
const (
	APIBasePath       = "/api"
	DashboardEndpoint = "/api/dashboard"
	DatasetEndpoint   = "/api/dataset"
	ExportEndpoint    = "/api/export"
	HealthEndpoint    = "/api/health"
	VersionEndpoint   = "/api/version"
	MetricsEndpoint   = "/metrics"

	// WebSocket Endpoints
	WebSocketEndpoint = "/ws"
)

// GetFeatureFlag returns the value of a feature flag
func GetFeatureFlag(flag string) bool {
	switch flag {
	case "websocket":
		return FeatureWebSocketEnabled
	case "metrics":
		return FeatureMetricsEnabled
	case "health_check":
		return FeatureHealthCheckEnabled
	case "rate_limiting":
		return FeatureRateLimitingEnabled
	case "debug_logging":
		return FeatureDebugLoggingEnabled
	case "mock_data":
		return FeatureMockDataEnabled
	default:
		return false
	}
}
