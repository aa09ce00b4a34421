package pipeline

import (
	"log/slog"
	"time"

	"seafreight/pkg/contracts/domain"
)

// Engine answers every dashboard query: it applies a FilterState to the
// enriched shipments and computes the KPI strip and all grouped aggregates.
// Each method is a pure function over the records it is handed — the engine
// holds limits and a clock, never data, so one engine serves any number of
// concurrent sessions.
type Engine struct {
	logger *slog.Logger

	etaRiskHorizonDays int
	etaRiskLimit       int
	pickupHorizonDays  int
	pickupLimit        int
	routeRankingLimit  int
	overrunLimit       int
	outstandingLimit   int
	delayAlertPct      float64

	now func() time.Time
}

// EngineConfig holds the horizons, result caps and the advisory threshold.
// Zero values fall back to the dashboard defaults.
type EngineConfig struct {
	ETARiskHorizonDays int     // look-ahead for at-risk ETAs
	ETARiskLimit       int     // rows in the ETA risk list
	PickupHorizonDays  int     // look-ahead for upcoming pickups
	PickupLimit        int     // rows in the pickup list
	RouteRankingLimit  int     // routes in the variance ranking
	OverrunLimit       int     // rows in the cost overrun list
	OutstandingLimit   int     // rows in the outstanding-invoice list
	DelayAlertPct      float64 // delayed-share that trips the advisory
	Now                func() time.Time
}

// DefaultEngineConfig returns the limits the dashboard ships with.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ETARiskHorizonDays: 3,
		ETARiskLimit:       5,
		PickupHorizonDays:  7,
		PickupLimit:        10,
		RouteRankingLimit:  10,
		OverrunLimit:       5,
		OutstandingLimit:   15,
		DelayAlertPct:      20,
	}
}

// NewEngine creates an aggregation engine with the given configuration.
func NewEngine(logger *slog.Logger, config EngineConfig) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if config.ETARiskHorizonDays <= 0 {
		config.ETARiskHorizonDays = 3
	}
	if config.ETARiskLimit <= 0 {
		config.ETARiskLimit = 5
	}
	if config.PickupHorizonDays <= 0 {
		config.PickupHorizonDays = 7
	}
	if config.PickupLimit <= 0 {
		config.PickupLimit = 10
	}
	if config.RouteRankingLimit <= 0 {
		config.RouteRankingLimit = 10
	}
	if config.OverrunLimit <= 0 {
		config.OverrunLimit = 5
	}
	if config.OutstandingLimit <= 0 {
		config.OutstandingLimit = 15
	}
	if config.DelayAlertPct <= 0 {
		config.DelayAlertPct = 20
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Engine{
		logger:             logger.With(slog.String("component", "engine")),
		etaRiskHorizonDays: config.ETARiskHorizonDays,
		etaRiskLimit:       config.ETARiskLimit,
		pickupHorizonDays:  config.PickupHorizonDays,
		pickupLimit:        config.PickupLimit,
		routeRankingLimit:  config.RouteRankingLimit,
		overrunLimit:       config.OverrunLimit,
		outstandingLimit:   config.OutstandingLimit,
		delayAlertPct:      config.DelayAlertPct,
		now:                config.Now,
	}
}

// KPIs computes the dashboard KPI strip.
//
// Shipment figures describe the filtered view passed in. PaidRate and
// OutstandingAmount always run over the full invoice book and OnHand over the
// full warehouse register: invoices and stock are not keyed to the shipment
// selection, and narrowing the view must not shrink them. This asymmetry is
// inherited dashboard behavior, kept on purpose.
func (e *Engine) KPIs(shipments []domain.Shipment, invoices []domain.Invoice, warehouse []domain.WarehouseEntry) domain.KpiSnapshot {
	snap := domain.KpiSnapshot{TotalShipments: len(shipments)}

	var delayed, delivered, onTime int
	for i := range shipments {
		s := &shipments[i]
		if s.IsDelayLike() {
			delayed++
		}
		if s.CostPlanned.Valid {
			snap.PlannedCost = snap.PlannedCost.Add(s.CostPlanned.Decimal)
		}
		if s.CostActual.Valid {
			snap.ActualCost = snap.ActualCost.Add(s.CostActual.Decimal)
		}
		if s.IsDelivered() && s.OnTime != nil {
			delivered++
			if *s.OnTime {
				onTime++
			}
		}
	}

	if snap.TotalShipments > 0 {
		snap.DelayedPct = float64(delayed) / float64(snap.TotalShipments) * 100
	}
	snap.CostVariance = snap.ActualCost.Sub(snap.PlannedCost)
	if !snap.PlannedCost.IsZero() {
		snap.VariancePct = snap.CostVariance.InexactFloat64() / snap.PlannedCost.InexactFloat64() * 100
	}
	if delivered > 0 {
		snap.SLAPct = float64(onTime) / float64(delivered) * 100
	}

	var paid int
	for i := range invoices {
		inv := &invoices[i]
		if inv.IsPaid() {
			paid++
		}
		if inv.IsOutstanding && inv.Amount.Valid {
			snap.OutstandingAmount = snap.OutstandingAmount.Add(inv.Amount.Decimal)
		}
	}
	if len(invoices) > 0 {
		snap.PaidRate = float64(paid) / float64(len(invoices)) * 100
	}

	today := dayOf(e.now())
	for i := range warehouse {
		if warehouse[i].OnHandAt(today) {
			snap.OnHand += warehouse[i].Quantity
		}
	}

	return snap
}
