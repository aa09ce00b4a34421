// Package config provides centralized configuration management for the
// SeaFreight360 system. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SEAFREIGHT_* for namespacing:
//
//	SEAFREIGHT_SERVER_PORT=8080
//	SEAFREIGHT_LOGGING_LEVEL=info
//	SEAFREIGHT_PIPELINE_SEED=42
//	SEAFREIGHT_PIPELINE_ON_TIME_PROBABILITY=0.75
//	SEAFREIGHT_SECURITY_RATE_LIMIT_RPS=100
//
// # Configuration Structure
//
// The main configuration struct groups related settings:
//
//	type Config struct {
//	    Server    ServerConfig    // port, timeouts, upload cap
//	    Security  SecurityConfig  // CORS origins, rate limiting
//	    Logging   LoggingConfig   // level, format, output targets
//	    Paths     PathsConfig     // data, exports, logs, web
//	    Pipeline  PipelineConfig  // simulation seed, horizons, list caps
//	    WebSocket WebSocketConfig // buffers, ping/pong intervals
//	}
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	shipments := paths.ShipmentsCSV
//	exportPath := paths.GetExportPath("shipments_filtered.csv")
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Values are within acceptable ranges
//	- Simulation knobs fall back to defaults when unset
//	- Required directories exist or can be created
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
