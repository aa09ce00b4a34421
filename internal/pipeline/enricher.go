package pipeline

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"seafreight/pkg/contracts/domain"
)

// Enricher derives the computed columns of all four collections: simulated
// delivery outcomes, cost variances, route labels and invoice payment flags.
//
// Enrichment is a pure function of (raw dataset, seed, clock): the random
// generator is created fresh per call from the configured seed, so enriching
// the same input twice yields byte-identical output, and re-enriching an
// already-enriched dataset recomputes every derived field from scratch.
type Enricher struct {
	logger            *slog.Logger
	seed              int64
	onTimeProbability float64
	maxDelayDays      int
	now               func() time.Time
}

// EnricherConfig holds the tunables of the enrichment run.
type EnricherConfig struct {
	// Seed feeds the delivery simulation. A fixed seed stands in for a real
	// tracking feed: reproducible, not realistic.
	Seed int64

	// OnTimeProbability is the chance a delivered shipment arrived on its ETA.
	OnTimeProbability float64

	// MaxDelayDays caps the simulated delay; late deliveries land uniformly
	// in [1, MaxDelayDays] days after ETA.
	MaxDelayDays int

	// Now supplies "today" for the invoice overdue cutoff. Tests pin it.
	Now func() time.Time
}

// DefaultEnricherConfig returns the production simulation parameters.
func DefaultEnricherConfig() EnricherConfig {
	return EnricherConfig{
		Seed:              42,
		OnTimeProbability: 0.75,
		MaxDelayDays:      5,
	}
}

// NewEnricher creates an enricher with the given configuration. Zero config
// fields fall back to the defaults.
func NewEnricher(logger *slog.Logger, config EnricherConfig) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Seed == 0 {
		config.Seed = 42
	}
	if config.OnTimeProbability <= 0 || config.OnTimeProbability > 1 {
		config.OnTimeProbability = 0.75
	}
	if config.MaxDelayDays <= 0 {
		config.MaxDelayDays = 5
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Enricher{
		logger:            logger.With(slog.String("component", "enricher")),
		seed:              config.Seed,
		onTimeProbability: config.OnTimeProbability,
		maxDelayDays:      config.MaxDelayDays,
		now:               config.Now,
	}
}

// Enrich returns a copy of the dataset with every derived field recomputed.
// The input is never mutated. Rows missing the source values a derivation
// needs get absent derived fields; nothing here fails.
func (e *Enricher) Enrich(ctx context.Context, raw domain.Dataset) domain.Dataset {
	e.logger.InfoContext(ctx, "enriching dataset",
		slog.Int("shipments", len(raw.Shipments)),
		slog.Int("invoices", len(raw.Invoices)),
		slog.Int("warehouse", len(raw.Warehouse)),
		slog.Int("clients", len(raw.Clients)))

	out := domain.Dataset{
		Shipments: append([]domain.Shipment(nil), raw.Shipments...),
		Invoices:  append([]domain.Invoice(nil), raw.Invoices...),
		Warehouse: append([]domain.WarehouseEntry(nil), raw.Warehouse...),
		Clients:   append([]domain.ClientRecord(nil), raw.Clients...),
	}

	rng := rand.New(rand.NewSource(e.seed))
	today := dayOf(e.now())

	for i := range out.Shipments {
		s := &out.Shipments[i]
		e.simulateDelivery(s, rng)
		computeCostVariance(s)
		labelRoute(s)
	}
	for i := range out.Invoices {
		flagInvoice(&out.Invoices[i], today)
	}

	return out
}

// simulateDelivery assigns DeliveredDate and OnTime for delivered shipments.
// Exactly two random values are consumed per delivered row, whether or not
// they end up used, so the stream position depends only on how many delivered
// rows precede this one — the determinism contract of the simulation.
func (e *Enricher) simulateDelivery(s *domain.Shipment, rng *rand.Rand) {
	s.DeliveredDate = nil
	s.OnTime = nil
	if !s.IsDelivered() {
		return
	}

	u := rng.Float64()
	delay := rng.Intn(e.maxDelayDays) + 1
	if s.ETA == nil {
		// Delivered but no ETA to anchor the simulation on.
		return
	}

	delivered := *s.ETA
	if u >= e.onTimeProbability {
		delivered = delivered.AddDate(0, 0, delay)
	}
	s.DeliveredDate = &delivered
	onTime := !delivered.After(*s.ETA)
	s.OnTime = &onTime
}

// computeCostVariance sets CostVariance and VariancePct when both cost
// columns carry values. VariancePct is rounded to one decimal and left absent
// when the planned cost is zero — a ratio against zero is meaningless, not
// infinite.
func computeCostVariance(s *domain.Shipment) {
	s.CostVariance = decimal.NullDecimal{}
	s.VariancePct = decimal.NullDecimal{}
	if !s.HasCosts() {
		return
	}

	variance := s.CostActual.Decimal.Sub(s.CostPlanned.Decimal)
	s.CostVariance = decimal.NullDecimal{Decimal: variance, Valid: true}

	if s.CostPlanned.Decimal.IsZero() {
		return
	}
	pct := variance.Div(s.CostPlanned.Decimal).Mul(decimal.NewFromInt(100)).Round(1)
	s.VariancePct = decimal.NullDecimal{Decimal: pct, Valid: true}
}

// labelRoute sets the "{origin} → {destination}" grouping key when both ports
// are present.
func labelRoute(s *domain.Shipment) {
	s.Route = ""
	if s.OriginPort == "" || s.DestinationPort == "" {
		return
	}
	s.Route = s.OriginPort + " → " + s.DestinationPort
}

// flagInvoice sets IsOutstanding and OverdueFlag against the given day.
func flagInvoice(inv *domain.Invoice, today time.Time) {
	inv.IsOutstanding = inv.PaidStatus == domain.PaidStatusUnpaid ||
		inv.PaidStatus == domain.PaidStatusOverdue
	inv.OverdueFlag = inv.IsOutstanding && inv.DueDate != nil && inv.DueDate.Before(today)
}

// dayOf truncates a time to its calendar day. All day-granularity
// comparisons in the pipeline go through this.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
