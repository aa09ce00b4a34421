package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Shipment is the Single Source of Truth for one sea-freight container
// movement. Source fields come straight from the shipments file; derived
// fields are written by the enrichment pipeline and overwritten on every
// enrichment run, so re-enriching an already-enriched record is a no-op.
//
// CSV tags carry the canonical column names shared by ingestion and export.
type Shipment struct {
	// === SOURCE FIELDS ===

	ContainerID     string     `json:"container_id" csv:"Container_ID" validate:"required"`
	OriginPort      string     `json:"origin_port,omitempty" csv:"Origin_Port"`
	DestinationPort string     `json:"destination_port,omitempty" csv:"Destination_Port"`
	ETA             *time.Time `json:"eta,omitempty" csv:"ETA"`
	Status          string     `json:"status,omitempty" csv:"Status"`

	// CostPlanned and CostActual are contract currency amounts. Absent cells
	// stay invalid rather than zero so downstream math can tell "free" from
	// "unknown".
	CostPlanned decimal.NullDecimal `json:"cost_planned,omitempty" csv:"Cost_Planned"`
	CostActual  decimal.NullDecimal `json:"cost_actual,omitempty" csv:"Cost_Actual"`

	// === DERIVED FIELDS (owned by the enrichment pipeline) ===

	// DeliveredDate is simulated for delivered shipments only; it stands in
	// for a live tracking feed and is reproducible for a fixed seed.
	DeliveredDate *time.Time `json:"delivered_date,omitempty" csv:"Delivered_Date"`

	// OnTime is defined only when DeliveredDate is: delivered on or before ETA.
	OnTime *bool `json:"on_time,omitempty" csv:"On_Time"`

	// CostVariance = CostActual - CostPlanned, present only when both costs are.
	CostVariance decimal.NullDecimal `json:"cost_variance,omitempty" csv:"Cost_Variance"`

	// VariancePct = CostVariance / CostPlanned * 100 rounded to 1 decimal,
	// invalid when CostPlanned is zero or either cost is absent.
	VariancePct decimal.NullDecimal `json:"variance_pct,omitempty" csv:"Variance_%"`

	// Route is "{origin} → {destination}", the grouping key for variance
	// rankings. Empty when either port is missing.
	Route string `json:"route,omitempty" csv:"Route"`
}

// Well-known shipment statuses. The status domain is an open set — files may
// carry values not listed here — but these are the ones the pipeline assigns
// meaning to.
const (
	StatusDelivered      = "Delivered"
	StatusInTransit      = "In Transit"
	StatusDelayed        = "Delayed"
	StatusPendingCustoms = "Pending Customs"
	StatusCleared        = "Cleared"
)

// IsDelivered reports whether the shipment has a delivered status,
// case-insensitively.
func (s *Shipment) IsDelivered() bool {
	return strings.EqualFold(s.Status, StatusDelivered)
}

// IsDelayLike reports whether the status counts toward the delayed-percentage
// KPI: "delayed" or "pending customs", case-insensitively.
func (s *Shipment) IsDelayLike() bool {
	return strings.EqualFold(s.Status, StatusDelayed) ||
		strings.EqualFold(s.Status, StatusPendingCustoms)
}

// IsClosed reports whether the shipment no longer needs ETA attention
// (delivered or customs-cleared), case-insensitively.
func (s *Shipment) IsClosed() bool {
	return strings.EqualFold(s.Status, StatusDelivered) ||
		strings.EqualFold(s.Status, StatusCleared)
}

// HasCosts reports whether both cost columns carried a value for this row.
func (s *Shipment) HasCosts() bool {
	return s.CostPlanned.Valid && s.CostActual.Valid
}
