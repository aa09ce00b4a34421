package domain

import "time"

// Dataset bundles the four collections one dashboard session works over.
// After enrichment it is treated as immutable: filters and aggregates only
// ever produce new views, and a reload swaps in a whole new Dataset.
type Dataset struct {
	Shipments []Shipment       `json:"shipments"`
	Invoices  []Invoice        `json:"invoices"`
	Warehouse []WarehouseEntry `json:"warehouse"`
	Clients   []ClientRecord   `json:"clients"`
}

// Counts returns per-collection row counts.
func (d *Dataset) Counts() DatasetCounts {
	return DatasetCounts{
		Shipments: len(d.Shipments),
		Invoices:  len(d.Invoices),
		Warehouse: len(d.Warehouse),
		Clients:   len(d.Clients),
	}
}

// DatasetCounts reports how many rows each collection holds.
type DatasetCounts struct {
	Shipments int `json:"shipments"`
	Invoices  int `json:"invoices"`
	Warehouse int `json:"warehouse"`
	Clients   int `json:"clients"`
}

// SnapshotInfo describes a loaded snapshot without carrying its rows:
// identity, provenance and size. Broadcast to dashboard clients after a
// reload and reported by the health endpoint.
type SnapshotInfo struct {
	// ID is a fresh UUID per load event.
	ID string `json:"id"`

	// ContentHash is the SHA-256 over the raw bytes of all four inputs, the
	// enrichment memoization key. Two uploads of identical files share one
	// enrichment run.
	ContentHash string `json:"content_hash"`

	LoadedAt time.Time     `json:"loaded_at"`
	Rows     DatasetCounts `json:"rows"`
}
