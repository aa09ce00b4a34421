package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafreight/pkg/contracts/domain"
)

func TestEngine_StatusBreakdown(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	t.Run("counts descending with first seen tie order", func(t *testing.T) {
		got := engine.StatusBreakdown([]domain.Shipment{
			{Status: "Delayed"},
			{Status: "In Transit"},
			{Status: "In Transit"},
			{Status: "Delivered"},
			{Status: ""},
		})

		assert.Equal(t, []domain.StatusCount{
			{Status: "In Transit", Count: 2},
			{Status: "Delayed", Count: 1},
			{Status: "Delivered", Count: 1},
		}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, engine.StatusBreakdown(nil))
	})
}

func TestEngine_RouteVarianceRanking(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	t.Run("means per route sorted descending", func(t *testing.T) {
		shipments := []domain.Shipment{
			{Route: "Shanghai → Rotterdam", CostVariance: money("100"), VariancePct: money("10")},
			{Route: "Shanghai → Rotterdam", CostVariance: money("300"), VariancePct: money("30")},
			{Route: "Singapore → Hamburg", CostVariance: money("500"), VariancePct: money("25")},
			{Route: "Busan → Antwerp"}, // no variance data, dropped
		}

		got := engine.RouteVarianceRanking(shipments)

		require.Len(t, got, 2)
		assert.Equal(t, "Singapore → Hamburg", got[0].Route)
		assert.Equal(t, "500", got[0].MeanCostVariance.String())
		assert.Equal(t, 1, got[0].Shipments)
		assert.Equal(t, "Shanghai → Rotterdam", got[1].Route)
		assert.Equal(t, "200", got[1].MeanCostVariance.String())
		assert.Equal(t, "20", got[1].MeanVariancePct.String())
		assert.Equal(t, 2, got[1].Shipments)
	})

	t.Run("zero planned rows feed the variance mean only", func(t *testing.T) {
		shipments := []domain.Shipment{
			{Route: "Shanghai → Rotterdam", CostVariance: money("100"), VariancePct: money("10")},
			{Route: "Shanghai → Rotterdam", CostVariance: money("50")}, // planned was zero: no pct
		}

		got := engine.RouteVarianceRanking(shipments)

		require.Len(t, got, 1)
		assert.Equal(t, "75", got[0].MeanCostVariance.String())
		assert.Equal(t, "10", got[0].MeanVariancePct.String(), "pct mean only averages rows that have one")
	})

	t.Run("cap and stable ties", func(t *testing.T) {
		shipments := make([]domain.Shipment, 0, 24)
		for i := 0; i < 12; i++ {
			route := "R" + string(rune('A'+i)) + " → X"
			shipments = append(shipments, domain.Shipment{Route: route, CostVariance: money("10")})
		}

		got := engine.RouteVarianceRanking(shipments)

		require.Len(t, got, 10, "ranking is capped")
		assert.Equal(t, "RA → X", got[0].Route, "ties keep first appearance order")
		assert.Equal(t, "RJ → X", got[9].Route)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, engine.RouteVarianceRanking(nil))
	})
}

func TestEngine_TopCostOverruns(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	shipments := []domain.Shipment{
		{ContainerID: "C1", CostVariance: money("50")},
		{ContainerID: "C2"},
		{ContainerID: "C3", CostVariance: money("900")},
		{ContainerID: "C4", CostVariance: money("-20")},
		{ContainerID: "C5", CostVariance: money("300")},
		{ContainerID: "C6", CostVariance: money("120")},
		{ContainerID: "C7", CostVariance: money("300")},
	}

	got := engine.TopCostOverruns(shipments)

	require.Len(t, got, 5)
	ids := []string{got[0].ContainerID, got[1].ContainerID, got[2].ContainerID, got[3].ContainerID, got[4].ContainerID}
	assert.Equal(t, []string{"C3", "C5", "C7", "C6", "C1"}, ids, "descending variance, ties in input order")
}

func TestEngine_TopCostOverruns_MissingVarianceSortsLast(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	got := engine.TopCostOverruns([]domain.Shipment{
		{ContainerID: "C1"},
		{ContainerID: "C2", CostVariance: money("-5")},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "C2", got[0].ContainerID)
	assert.Equal(t, "C1", got[1].ContainerID)
}

func TestEngine_ETARiskList(t *testing.T) {
	now := day(2024, 6, 15)
	engine := testEngine(now)

	shipments := []domain.Shipment{
		{ContainerID: "C1", Status: "In Transit", ETA: dayPtr(2024, 6, 16)},
		{ContainerID: "C2", Status: "Delivered", ETA: dayPtr(2024, 6, 16)},
		{ContainerID: "C3", Status: "cleared", ETA: dayPtr(2024, 6, 17)},
		{ContainerID: "C4", Status: "Delayed", ETA: dayPtr(2024, 6, 14)},
		{ContainerID: "C5", Status: "In Transit", ETA: dayPtr(2024, 6, 25)},
		{ContainerID: "C6", Status: "Pending Customs", ETA: dayPtr(2024, 6, 18)},
		{ContainerID: "C7", Status: "In Transit"},
	}

	got := engine.ETARiskList(shipments)

	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ContainerID)
	}
	assert.Equal(t, []string{"C4", "C1", "C6"}, ids,
		"within horizon, delivered/cleared and missing ETAs excluded, soonest first")
}

func TestEngine_ETARiskList_Cap(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	shipments := make([]domain.Shipment, 0, 8)
	for i := 0; i < 8; i++ {
		shipments = append(shipments, domain.Shipment{
			ContainerID: string(rune('A' + i)),
			Status:      "In Transit",
			ETA:         dayPtr(2024, 6, 14),
		})
	}

	got := engine.ETARiskList(shipments)
	assert.Len(t, got, 5)
}

func TestEngine_OutstandingByDueDate(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	invoices := []domain.Invoice{
		{InvoiceID: "I1", IsOutstanding: true, DueDate: dayPtr(2024, 7, 1)},
		{InvoiceID: "I2", IsOutstanding: false, DueDate: dayPtr(2024, 6, 1)},
		{InvoiceID: "I3", IsOutstanding: true, DueDate: dayPtr(2024, 6, 10)},
		{InvoiceID: "I4", IsOutstanding: true},
		{InvoiceID: "I5", IsOutstanding: true, DueDate: dayPtr(2024, 6, 20)},
	}

	got := engine.OutstandingByDueDate(invoices)

	ids := make([]string, 0, len(got))
	for _, inv := range got {
		ids = append(ids, inv.InvoiceID)
	}
	assert.Equal(t, []string{"I3", "I5", "I1", "I4"}, ids,
		"outstanding only, earliest due first, undated last")
}

func TestEngine_OutstandingByDueDate_Cap(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	invoices := make([]domain.Invoice, 0, 20)
	for i := 0; i < 20; i++ {
		due := day(2024, 6, 1).AddDate(0, 0, i)
		invoices = append(invoices, domain.Invoice{InvoiceID: "I", IsOutstanding: true, DueDate: &due})
	}

	got := engine.OutstandingByDueDate(invoices)
	assert.Len(t, got, 15)
}

func TestEngine_OverdueAmount(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	invoices := []domain.Invoice{
		{InvoiceID: "I1", OverdueFlag: true, Amount: money("250")},
		{InvoiceID: "I2", OverdueFlag: false, Amount: money("999")},
		{InvoiceID: "I3", OverdueFlag: true, Amount: money("100.50")},
		{InvoiceID: "I4", OverdueFlag: true}, // no amount on file
	}

	assert.Equal(t, "350.5", engine.OverdueAmount(invoices).String())
	assert.True(t, engine.OverdueAmount(nil).IsZero())
}

func TestEngine_PaymentStatusMix(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	got := engine.PaymentStatusMix([]domain.Invoice{
		{PaidStatus: "Paid"},
		{PaidStatus: "Unpaid"},
		{PaidStatus: "Paid"},
		{PaidStatus: "Overdue"},
	})

	assert.Equal(t, []domain.StatusCount{
		{Status: "Paid", Count: 2},
		{Status: "Unpaid", Count: 1},
		{Status: "Overdue", Count: 1},
	}, got)
}

func TestEngine_WarehouseByLocation(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	got := engine.WarehouseByLocation([]domain.WarehouseEntry{
		{Location: "Rotterdam", Quantity: 40},
		{Location: "Hamburg", Quantity: 80},
		{Location: "Rotterdam", Quantity: 50},
		{Location: "", Quantity: 999},
	})

	assert.Equal(t, []domain.LocationQuantity{
		{Location: "Rotterdam", Quantity: 90},
		{Location: "Hamburg", Quantity: 80},
	}, got)
}

func TestEngine_InboundTrend(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	got := engine.InboundTrend([]domain.WarehouseEntry{
		{Location: "Rotterdam", Quantity: 10, InboundDate: dayPtr(2024, 6, 10)},
		{Location: "Hamburg", Quantity: 20, InboundDate: dayPtr(2024, 6, 2)},
		{Location: "Antwerp", Quantity: 30},
	})

	require.Len(t, got, 2)
	assert.Equal(t, domain.InboundPoint{Date: day(2024, 6, 2), Quantity: 20}, got[0])
	assert.Equal(t, domain.InboundPoint{Date: day(2024, 6, 10), Quantity: 10}, got[1])
}

func TestEngine_UpcomingPickups(t *testing.T) {
	now := day(2024, 6, 15)
	engine := testEngine(now)

	clients := []domain.ClientRecord{
		{ClientID: "K1", PickupDate: dayPtr(2024, 6, 22)}, // horizon end, inclusive
		{ClientID: "K2", PickupDate: dayPtr(2024, 6, 15)}, // today, inclusive
		{ClientID: "K3", PickupDate: dayPtr(2024, 6, 14)}, // past
		{ClientID: "K4", PickupDate: dayPtr(2024, 6, 23)}, // beyond horizon
		{ClientID: "K5"},
		{ClientID: "K6", PickupDate: dayPtr(2024, 6, 18)},
	}

	got := engine.UpcomingPickups(clients)

	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ClientID)
	}
	assert.Equal(t, []string{"K2", "K6", "K1"}, ids)
}

func TestEngine_UpcomingPickups_Cap(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	clients := make([]domain.ClientRecord, 0, 14)
	for i := 0; i < 14; i++ {
		clients = append(clients, domain.ClientRecord{ClientID: "K", PickupDate: dayPtr(2024, 6, 16)})
	}

	assert.Len(t, engine.UpcomingPickups(clients), 10)
}

func TestEngine_ClientStatusMix(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	got := engine.ClientStatusMix([]domain.ClientRecord{
		{Status: "Scheduled"},
		{Status: "Completed"},
		{Status: "Completed"},
	})

	assert.Equal(t, []domain.StatusCount{
		{Status: "Completed", Count: 2},
		{Status: "Scheduled", Count: 1},
	}, got)
}

func TestEngine_CostByContainer(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	got := engine.CostByContainer([]domain.Shipment{
		{ContainerID: "C9", CostPlanned: money("10"), CostActual: money("12")},
		{ContainerID: "C1", CostPlanned: money("20")},
		{ContainerID: "C5"},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "C1", got[0].ContainerID)
	assert.Equal(t, "C5", got[1].ContainerID)
	assert.Equal(t, "C9", got[2].ContainerID)
	assert.Equal(t, "12", got[2].CostActual.Decimal.String())
	assert.False(t, got[1].CostPlanned.Valid)
}

func TestEngine_DelayAdvisory(t *testing.T) {
	engine := testEngine(day(2024, 6, 15))

	tests := []struct {
		name      string
		shipments []domain.Shipment
		wantPct   float64
		wantAlert bool
	}{
		{
			name: "below threshold",
			shipments: []domain.Shipment{
				{Status: "Delayed"},
				{Status: "In Transit"}, {Status: "In Transit"},
				{Status: "In Transit"}, {Status: "In Transit"},
				{Status: "In Transit"}, {Status: "In Transit"},
				{Status: "In Transit"}, {Status: "In Transit"},
				{Status: "In Transit"},
			},
			wantPct: 10,
		},
		{
			name: "at threshold alerts",
			shipments: []domain.Shipment{
				{Status: "Delayed"},
				{Status: "pending customs"},
				{Status: "In Transit"}, {Status: "In Transit"},
				{Status: "In Transit"}, {Status: "In Transit"},
				{Status: "In Transit"}, {Status: "In Transit"},
				{Status: "In Transit"}, {Status: "In Transit"},
			},
			wantPct:   20,
			wantAlert: true,
		},
		{
			name:      "empty view never alerts",
			shipments: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.DelayAdvisory(tt.shipments)

			assert.InDelta(t, tt.wantPct, got.DelayedPct, 1e-9)
			assert.Equal(t, tt.wantAlert, got.Alert)
		})
	}
}
