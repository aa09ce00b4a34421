// Package http implements the HTTP handlers for the SeaFreight360 API.
// It is a thin layer between transport and the dashboard services: handlers
// parse and validate requests, call a service interface and format the
// response, and nothing else.
//
// # Handlers
//
// The API splits across four handlers, each mounting its own chi sub-router:
//
//	DashboardHandler  /api/dashboard  KPI strip, tab bundles, filter catalog
//	DatasetHandler    /api/dataset    snapshot info, upload, bundled reload
//	ExportHandler     /api/export     CSV/XLSX downloads and PNG charts
//	HealthHandler     /api/health     liveness, readiness, runtime stats
//
// Query endpoints are read-only and safe to hammer: they never mutate the
// snapshot. Filter state arrives as query parameters on every request
// (origins, destinations, statuses, eta_from, eta_to); the server stores no
// selection between requests.
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → DashboardService
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/snapshot/not-ready",
//	    "title": "Snapshot Not Ready",
//	    "status": 503,
//	    "detail": "No dataset snapshot has been loaded yet. Upload or reload the dataset files first.",
//	    "instance": "/api/dashboard/kpis"
//	}
//
// Handlers map service sentinels (services.ErrSnapshotNotReady and friends)
// to problem responses through errors.ErrorHandler; they never write ad-hoc
// error bodies.
//
// # Uploads
//
// POST /api/dataset/upload takes a multipart form with up to four named file
// fields, one per collection. Every field is optional; absent collections
// are filled from the bundled default files so the loader always receives a
// complete set. Per-file and whole-body size caps answer 413.
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces, asserting status codes, response envelopes and problem bodies.
package http
