// Package app assembles the SeaFreight360 server: configuration, logging,
// the dashboard and health services, the WebSocket hub, the chi router and
// the HTTP listener.
//
// Construction order matters and NewApplication owns it:
//
//	config.Load -> InitializeLogger -> GetPaths/EnsureDirectories
//	            -> NewMetrics -> initializeServices -> setupRouter -> createServer
//
// The router is split in two layers. RequestID, RealIP and StripSlashes run
// on every request. The /ws upgrade and the /metrics scrape endpoint hang
// directly off that layer; everything under /api additionally passes through
// structured logging, panic recovery, security headers, CORS, compression
// and the rate limiter. Dataset reloads and export downloads run in route
// groups with longer timeouts than the plain dashboard reads.
//
// Start brings up the listener and then loads the bundled dataset so a fresh
// install serves data without an upload. Run wraps Start with SIGINT/SIGTERM
// handling and a graceful Stop that drains requests before stopping the hub.
package app
