package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"seafreight/pkg/contracts/domain"
)

// StatusBreakdown counts filtered shipments per status, most frequent first.
// Ties keep first-appearance order; rows without a status are skipped.
func (e *Engine) StatusBreakdown(shipments []domain.Shipment) []domain.StatusCount {
	return countByLabel(shipments, func(s *domain.Shipment) string { return s.Status })
}

// RouteVarianceRanking groups filtered shipments by route and ranks routes by
// mean cost variance, highest first, capped at the configured limit. Each
// mean only averages the rows that carry the value, so a zero-planned-cost
// row contributes to the variance mean but not to the percentage mean. Routes
// with no variance data at all are left out — they have nothing to rank on.
// Ties keep first-appearance order.
func (e *Engine) RouteVarianceRanking(shipments []domain.Shipment) []domain.RouteVariance {
	type routeAgg struct {
		route  string
		varSum decimal.Decimal
		varN   int
		pctSum decimal.Decimal
		pctN   int
		rows   int
	}

	byRoute := make(map[string]*routeAgg)
	var order []*routeAgg
	for i := range shipments {
		s := &shipments[i]
		if s.Route == "" {
			continue
		}
		agg, ok := byRoute[s.Route]
		if !ok {
			agg = &routeAgg{route: s.Route}
			byRoute[s.Route] = agg
			order = append(order, agg)
		}
		agg.rows++
		if s.CostVariance.Valid {
			agg.varSum = agg.varSum.Add(s.CostVariance.Decimal)
			agg.varN++
		}
		if s.VariancePct.Valid {
			agg.pctSum = agg.pctSum.Add(s.VariancePct.Decimal)
			agg.pctN++
		}
	}

	rows := make([]domain.RouteVariance, 0, len(order))
	for _, agg := range order {
		if agg.varN == 0 {
			continue
		}
		row := domain.RouteVariance{
			Route:            agg.route,
			MeanCostVariance: agg.varSum.Div(decimal.NewFromInt(int64(agg.varN))),
			Shipments:        agg.rows,
		}
		if agg.pctN > 0 {
			row.MeanVariancePct = agg.pctSum.Div(decimal.NewFromInt(int64(agg.pctN)))
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MeanCostVariance.GreaterThan(rows[j].MeanCostVariance)
	})
	if len(rows) > e.routeRankingLimit {
		rows = rows[:e.routeRankingLimit]
	}
	return rows
}

// TopCostOverruns returns the filtered shipments with the largest cost
// variance, highest first, capped at the configured limit. Rows without a
// variance sort after every row that has one; ties keep input order.
func (e *Engine) TopCostOverruns(shipments []domain.Shipment) []domain.Shipment {
	out := append([]domain.Shipment(nil), shipments...)
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := out[i].CostVariance, out[j].CostVariance
		switch {
		case vi.Valid && vj.Valid:
			return vi.Decimal.GreaterThan(vj.Decimal)
		case vi.Valid != vj.Valid:
			return vi.Valid
		default:
			return false
		}
	})
	if len(out) > e.overrunLimit {
		out = out[:e.overrunLimit]
	}
	return out
}

// ETARiskList returns filtered shipments whose ETA falls within the risk
// horizon and that are still open (not delivered or cleared), soonest ETA
// first, capped at the configured limit.
func (e *Engine) ETARiskList(shipments []domain.Shipment) []domain.Shipment {
	cutoff := e.now().AddDate(0, 0, e.etaRiskHorizonDays)

	out := make([]domain.Shipment, 0, e.etaRiskLimit)
	for _, s := range shipments {
		if s.ETA == nil || s.ETA.After(cutoff) || s.IsClosed() {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ETA.Before(*out[j].ETA)
	})
	if len(out) > e.etaRiskLimit {
		out = out[:e.etaRiskLimit]
	}
	return out
}

// OutstandingByDueDate returns outstanding invoices ordered by due date,
// earliest first, capped at the configured limit. Invoices without a due date
// sort last.
func (e *Engine) OutstandingByDueDate(invoices []domain.Invoice) []domain.Invoice {
	out := make([]domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.IsOutstanding {
			out = append(out, inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].DueDate, out[j].DueDate
		switch {
		case di != nil && dj != nil:
			return di.Before(*dj)
		case di != nil:
			return true
		default:
			return false
		}
	})
	if len(out) > e.outstandingLimit {
		out = out[:e.outstandingLimit]
	}
	return out
}

// OverdueAmount sums the amounts of invoices flagged overdue: the value at
// risk right now.
func (e *Engine) OverdueAmount(invoices []domain.Invoice) decimal.Decimal {
	var total decimal.Decimal
	for i := range invoices {
		if invoices[i].OverdueFlag && invoices[i].Amount.Valid {
			total = total.Add(invoices[i].Amount.Decimal)
		}
	}
	return total
}

// PaymentStatusMix counts invoices per payment status, most frequent first.
func (e *Engine) PaymentStatusMix(invoices []domain.Invoice) []domain.StatusCount {
	return countByLabel(invoices, func(inv *domain.Invoice) string { return inv.PaidStatus })
}

// WarehouseByLocation sums quantities per location, largest first. Ties keep
// first-appearance order; rows without a location are skipped.
func (e *Engine) WarehouseByLocation(entries []domain.WarehouseEntry) []domain.LocationQuantity {
	totals := make(map[string]int64)
	var order []string
	for i := range entries {
		loc := entries[i].Location
		if loc == "" {
			continue
		}
		if _, ok := totals[loc]; !ok {
			order = append(order, loc)
		}
		totals[loc] += entries[i].Quantity
	}

	rows := make([]domain.LocationQuantity, 0, len(order))
	for _, loc := range order {
		rows = append(rows, domain.LocationQuantity{Location: loc, Quantity: totals[loc]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Quantity > rows[j].Quantity
	})
	return rows
}

// InboundTrend returns the inbound-over-time series: every warehouse row with
// an inbound date, ordered by that date, earliest first.
func (e *Engine) InboundTrend(entries []domain.WarehouseEntry) []domain.InboundPoint {
	points := make([]domain.InboundPoint, 0, len(entries))
	for i := range entries {
		if entries[i].InboundDate == nil {
			continue
		}
		points = append(points, domain.InboundPoint{
			Date:     *entries[i].InboundDate,
			Quantity: entries[i].Quantity,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// UpcomingPickups returns clients with a pickup scheduled within the horizon,
// today inclusive on both ends, soonest first, capped at the configured
// limit.
func (e *Engine) UpcomingPickups(clients []domain.ClientRecord) []domain.ClientRecord {
	today := dayOf(e.now())
	end := today.AddDate(0, 0, e.pickupHorizonDays)

	out := make([]domain.ClientRecord, 0, e.pickupLimit)
	for _, c := range clients {
		if c.PickupDate == nil || c.PickupDate.Before(today) || c.PickupDate.After(end) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PickupDate.Before(*out[j].PickupDate)
	})
	if len(out) > e.pickupLimit {
		out = out[:e.pickupLimit]
	}
	return out
}

// ClientStatusMix counts clients per delivery status, most frequent first.
func (e *Engine) ClientStatusMix(clients []domain.ClientRecord) []domain.StatusCount {
	return countByLabel(clients, func(c *domain.ClientRecord) string { return c.Status })
}

// CostByContainer returns the planned-vs-actual series for the filtered
// shipments, ordered by container ID.
func (e *Engine) CostByContainer(shipments []domain.Shipment) []domain.ContainerCost {
	rows := make([]domain.ContainerCost, 0, len(shipments))
	for i := range shipments {
		s := &shipments[i]
		rows = append(rows, domain.ContainerCost{
			ContainerID: s.ContainerID,
			CostPlanned: s.CostPlanned,
			CostActual:  s.CostActual,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ContainerID < rows[j].ContainerID
	})
	return rows
}

// DelayAdvisory reports the share of filtered shipments sitting in a delay
// status and whether it crosses the alert threshold. An empty view never
// alerts.
func (e *Engine) DelayAdvisory(shipments []domain.Shipment) domain.DelayAdvisory {
	if len(shipments) == 0 {
		return domain.DelayAdvisory{}
	}
	delayed := 0
	for i := range shipments {
		if shipments[i].IsDelayLike() {
			delayed++
		}
	}
	pct := float64(delayed) / float64(len(shipments)) * 100
	return domain.DelayAdvisory{
		DelayedPct: pct,
		Alert:      pct >= e.delayAlertPct,
	}
}

// countByLabel tallies records by a string label, skipping empties, and
// orders the result by count descending with first-appearance tie order.
func countByLabel[T any](records []T, label func(*T) string) []domain.StatusCount {
	counts := make(map[string]int)
	var order []string
	for i := range records {
		l := label(&records[i])
		if l == "" {
			continue
		}
		if _, ok := counts[l]; !ok {
			order = append(order, l)
		}
		counts[l]++
	}

	rows := make([]domain.StatusCount, 0, len(order))
	for _, l := range order {
		rows = append(rows, domain.StatusCount{Status: l, Count: counts[l]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return rows
}
