package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// KpiSnapshot is the dashboard KPI strip: headline numbers for the current
// filter selection.
//
// Shipment-derived fields (TotalShipments, DelayedPct, cost sums, SLAPct)
// describe the filtered view. PaidRate and OutstandingAmount always cover
// the full invoice book and OnHand the full warehouse register — invoices and
// stock are not 1:1 with the shipment selection, so narrowing the shipment
// view must not make money or inventory appear to vanish.
type KpiSnapshot struct {
	TotalShipments    int             `json:"total_shipments"`
	DelayedPct        float64         `json:"delayed_pct"`
	PlannedCost       decimal.Decimal `json:"planned_cost"`
	ActualCost        decimal.Decimal `json:"actual_cost"`
	CostVariance      decimal.Decimal `json:"cost_variance"`
	VariancePct       float64         `json:"variance_pct"`
	PaidRate          float64         `json:"paid_rate"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	OnHand            int64           `json:"on_hand"`
	SLAPct            float64         `json:"sla_pct"`
}

// StatusCount is one bar of a status breakdown chart. Used for shipment
// statuses, invoice payment statuses and client delivery statuses alike.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// RouteVariance is one row of the route variance ranking: a route with its
// mean cost variance and mean variance percentage across the shipments that
// carried both values.
type RouteVariance struct {
	Route            string          `json:"route"`
	MeanCostVariance decimal.Decimal `json:"mean_cost_variance"`
	MeanVariancePct  decimal.Decimal `json:"mean_variance_pct"`
	Shipments        int             `json:"shipments"`
}

// LocationQuantity is one row of the warehouse quantity-by-location ranking.
type LocationQuantity struct {
	Location string `json:"location"`
	Quantity int64  `json:"quantity"`
}

// InboundPoint is one point of the warehouse inbound-over-time series.
type InboundPoint struct {
	Date     time.Time `json:"date"`
	Quantity int64     `json:"quantity"`
}

// ContainerCost is one point of the planned-vs-actual cost series, keyed and
// ordered by container.
type ContainerCost struct {
	ContainerID string              `json:"container_id"`
	CostPlanned decimal.NullDecimal `json:"cost_planned,omitempty"`
	CostActual  decimal.NullDecimal `json:"cost_actual,omitempty"`
}

// DelayAdvisory is the high-delay-rate hint for the current view: the share
// of shipments in a delay status, with Alert set once it reaches the
// advisory threshold.
type DelayAdvisory struct {
	DelayedPct float64 `json:"delayed_pct"`
	Alert      bool    `json:"alert"`
}
