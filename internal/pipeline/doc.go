// Package pipeline implements the data core of the dashboard: enrichment of
// the four raw collections into derived, filter-ready records, and the
// filter/aggregation engine that turns an enriched snapshot plus a filter
// selection into KPIs, rankings and work lists.
//
// Everything in this package is pure computation over in-memory records.
// File parsing lives in internal/ingest, snapshot ownership in
// internal/services, and rendering in the HTTP layer — the pipeline itself
// performs no I/O and keeps no state between calls beyond its configuration.
package pipeline
