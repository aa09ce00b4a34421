package pipeline

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafreight/pkg/contracts/domain"
)

// Shared fixture helpers for the pipeline tests.

func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, mo time.Month, d int) *time.Time {
	t := day(y, mo, d)
	return &t
}

func money(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewEnricher(t *testing.T) {
	tests := []struct {
		name      string
		config    EnricherConfig
		wantSeed  int64
		wantProb  float64
		wantDelay int
	}{
		{
			name:      "default config",
			config:    DefaultEnricherConfig(),
			wantSeed:  42,
			wantProb:  0.75,
			wantDelay: 5,
		},
		{
			name:      "zero values fall back to defaults",
			config:    EnricherConfig{},
			wantSeed:  42,
			wantProb:  0.75,
			wantDelay: 5,
		},
		{
			name:      "custom config",
			config:    EnricherConfig{Seed: 7, OnTimeProbability: 0.5, MaxDelayDays: 3},
			wantSeed:  7,
			wantProb:  0.5,
			wantDelay: 3,
		},
		{
			name:      "out of range probability falls back",
			config:    EnricherConfig{OnTimeProbability: 1.5},
			wantProb:  0.75,
			wantSeed:  42,
			wantDelay: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enricher := NewEnricher(nil, tt.config)

			assert.NotNil(t, enricher)
			assert.Equal(t, tt.wantSeed, enricher.seed)
			assert.Equal(t, tt.wantProb, enricher.onTimeProbability)
			assert.Equal(t, tt.wantDelay, enricher.maxDelayDays)
			assert.NotNil(t, enricher.logger)
			assert.NotNil(t, enricher.now)
		})
	}
}

func TestEnricher_Enrich_DeliverySimulation(t *testing.T) {
	ctx := context.Background()
	enricher := NewEnricher(slog.Default(), DefaultEnricherConfig())

	raw := domain.Dataset{Shipments: []domain.Shipment{
		{ContainerID: "C1", Status: "Delivered", ETA: dayPtr(2024, 1, 10)},
		{ContainerID: "C2", Status: "In Transit", ETA: dayPtr(2024, 1, 12)},
		{ContainerID: "C3", Status: "delivered", ETA: dayPtr(2024, 1, 15)},
		{ContainerID: "C4", Status: "Delayed", ETA: dayPtr(2024, 1, 20)},
		{ContainerID: "C5", Status: "DELIVERED", ETA: nil},
	}}

	got := enricher.Enrich(ctx, raw)
	require.Len(t, got.Shipments, 5)

	for _, s := range got.Shipments {
		switch s.ContainerID {
		case "C1", "C3":
			require.NotNil(t, s.DeliveredDate, "delivered shipment %s needs a delivered date", s.ContainerID)
			require.NotNil(t, s.OnTime, "delivered shipment %s needs an on-time flag", s.ContainerID)
			assert.False(t, s.DeliveredDate.Before(*s.ETA), "delivery can never precede ETA")
			assert.True(t, s.DeliveredDate.Sub(*s.ETA) <= 5*24*time.Hour, "delay is capped at 5 days")
			assert.Equal(t, !s.DeliveredDate.After(*s.ETA), *s.OnTime)
		case "C5":
			// Delivered status but no ETA to anchor the simulation.
			assert.Nil(t, s.DeliveredDate)
			assert.Nil(t, s.OnTime)
		default:
			assert.Nil(t, s.DeliveredDate, "non-delivered shipment %s must stay unset", s.ContainerID)
			assert.Nil(t, s.OnTime)
		}
	}
}

func TestEnricher_Enrich_Reproducible(t *testing.T) {
	ctx := context.Background()
	enricher := NewEnricher(slog.Default(), DefaultEnricherConfig())

	raw := domain.Dataset{Shipments: make([]domain.Shipment, 0, 50)}
	for i := 0; i < 50; i++ {
		status := "Delivered"
		if i%3 == 0 {
			status = "In Transit"
		}
		eta := day(2024, 3, 1).AddDate(0, 0, i%20)
		raw.Shipments = append(raw.Shipments, domain.Shipment{
			ContainerID: "C" + string(rune('A'+i%26)),
			Status:      status,
			ETA:         &eta,
		})
	}

	first := enricher.Enrich(ctx, raw)
	second := enricher.Enrich(ctx, raw)
	assert.Equal(t, first, second, "same seed and input must reproduce identical output")
}

func TestEnricher_Enrich_SeedChangesOutcome(t *testing.T) {
	ctx := context.Background()
	raw := domain.Dataset{Shipments: make([]domain.Shipment, 0, 40)}
	for i := 0; i < 40; i++ {
		eta := day(2024, 3, 1).AddDate(0, 0, i)
		raw.Shipments = append(raw.Shipments, domain.Shipment{
			ContainerID: "C", Status: "Delivered", ETA: &eta,
		})
	}

	a := NewEnricher(slog.Default(), EnricherConfig{Seed: 42}).Enrich(ctx, raw)
	b := NewEnricher(slog.Default(), EnricherConfig{Seed: 43}).Enrich(ctx, raw)
	assert.NotEqual(t, a, b, "different seeds should produce different delivery outcomes")
}

func TestEnricher_Enrich_DrawsKeyedToDeliveredOrder(t *testing.T) {
	ctx := context.Background()
	enricher := NewEnricher(slog.Default(), DefaultEnricherConfig())

	delivered := []domain.Shipment{
		{ContainerID: "D1", Status: "Delivered", ETA: dayPtr(2024, 2, 1)},
		{ContainerID: "D2", Status: "Delivered", ETA: dayPtr(2024, 2, 8)},
		{ContainerID: "D3", Status: "Delivered", ETA: dayPtr(2024, 2, 15)},
	}
	withoutNoise := domain.Dataset{Shipments: delivered}
	withNoise := domain.Dataset{Shipments: []domain.Shipment{
		delivered[0],
		{ContainerID: "N1", Status: "In Transit", ETA: dayPtr(2024, 2, 3)},
		delivered[1],
		{ContainerID: "N2", Status: "Pending Customs"},
		delivered[2],
	}}

	plain := enricher.Enrich(ctx, withoutNoise)
	noisy := enricher.Enrich(ctx, withNoise)

	datesByID := func(shipments []domain.Shipment) map[string]*time.Time {
		out := make(map[string]*time.Time)
		for _, s := range shipments {
			if s.DeliveredDate != nil {
				out[s.ContainerID] = s.DeliveredDate
			}
		}
		return out
	}

	plainDates := datesByID(plain.Shipments)
	noisyDates := datesByID(noisy.Shipments)
	require.Len(t, plainDates, 3)
	require.Len(t, noisyDates, 3)
	for id, want := range plainDates {
		assert.Equal(t, want, noisyDates[id],
			"inserting non-delivered rows must not shift the simulation for %s", id)
	}
}

func TestEnricher_Enrich_Idempotent(t *testing.T) {
	ctx := context.Background()
	enricher := NewEnricher(slog.Default(), DefaultEnricherConfig())

	raw := domain.Dataset{
		Shipments: []domain.Shipment{
			{ContainerID: "C1", Status: "Delivered", ETA: dayPtr(2024, 1, 10),
				OriginPort: "Shanghai", DestinationPort: "Rotterdam",
				CostPlanned: money("1000"), CostActual: money("1200")},
			{ContainerID: "C2", Status: "Delayed", ETA: dayPtr(2024, 1, 12)},
		},
		Invoices: []domain.Invoice{
			{InvoiceID: "I1", Amount: money("500"), PaidStatus: "Overdue", DueDate: dayPtr(2024, 1, 1)},
		},
	}

	once := enricher.Enrich(ctx, raw)
	twice := enricher.Enrich(ctx, once)
	assert.Equal(t, once, twice, "re-enriching enriched data must recompute identical fields")
}

func TestEnricher_Enrich_DoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	enricher := NewEnricher(slog.Default(), DefaultEnricherConfig())

	raw := domain.Dataset{
		Shipments: []domain.Shipment{
			{ContainerID: "C1", Status: "Delivered", ETA: dayPtr(2024, 1, 10),
				CostPlanned: money("100"), CostActual: money("150")},
		},
		Invoices: []domain.Invoice{
			{InvoiceID: "I1", PaidStatus: "Unpaid"},
		},
	}

	enricher.Enrich(ctx, raw)

	assert.Nil(t, raw.Shipments[0].DeliveredDate)
	assert.False(t, raw.Shipments[0].CostVariance.Valid)
	assert.Empty(t, raw.Shipments[0].Route)
	assert.False(t, raw.Invoices[0].IsOutstanding)
}

func TestEnricher_Enrich_CostVariance(t *testing.T) {
	tests := []struct {
		name         string
		shipment     domain.Shipment
		wantVariance string // empty means absent
		wantPct      string // empty means absent
	}{
		{
			name: "overrun with round percentage",
			shipment: domain.Shipment{ContainerID: "C1", Status: "In Transit",
				CostPlanned: money("1000"), CostActual: money("1200")},
			wantVariance: "200",
			wantPct:      "20",
		},
		{
			name: "percentage rounds to one decimal",
			shipment: domain.Shipment{ContainerID: "C2", Status: "In Transit",
				CostPlanned: money("900"), CostActual: money("1222")},
			wantVariance: "322",
			wantPct:      "35.8",
		},
		{
			name: "underrun goes negative",
			shipment: domain.Shipment{ContainerID: "C3", Status: "In Transit",
				CostPlanned: money("500"), CostActual: money("450")},
			wantVariance: "-50",
			wantPct:      "-10",
		},
		{
			name: "zero planned cost leaves percentage absent",
			shipment: domain.Shipment{ContainerID: "C4", Status: "In Transit",
				CostPlanned: money("0"), CostActual: money("75")},
			wantVariance: "75",
			wantPct:      "",
		},
		{
			name: "missing planned cost leaves both absent",
			shipment: domain.Shipment{ContainerID: "C5", Status: "In Transit",
				CostActual: money("75")},
			wantVariance: "",
			wantPct:      "",
		},
		{
			name: "missing actual cost leaves both absent",
			shipment: domain.Shipment{ContainerID: "C6", Status: "In Transit",
				CostPlanned: money("75")},
			wantVariance: "",
			wantPct:      "",
		},
	}

	ctx := context.Background()
	enricher := NewEnricher(slog.Default(), DefaultEnricherConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := enricher.Enrich(ctx, domain.Dataset{Shipments: []domain.Shipment{tt.shipment}})
			s := got.Shipments[0]

			if tt.wantVariance == "" {
				assert.False(t, s.CostVariance.Valid)
			} else {
				require.True(t, s.CostVariance.Valid)
				assert.Equal(t, tt.wantVariance, s.CostVariance.Decimal.String())
			}
			if tt.wantPct == "" {
				assert.False(t, s.VariancePct.Valid)
			} else {
				require.True(t, s.VariancePct.Valid)
				assert.Equal(t, tt.wantPct, s.VariancePct.Decimal.String())
			}
		})
	}
}

func TestEnricher_Enrich_RouteLabel(t *testing.T) {
	tests := []struct {
		name     string
		shipment domain.Shipment
		want     string
	}{
		{
			name:     "both ports present",
			shipment: domain.Shipment{OriginPort: "Shanghai", DestinationPort: "Rotterdam"},
			want:     "Shanghai → Rotterdam",
		},
		{
			name:     "missing origin",
			shipment: domain.Shipment{DestinationPort: "Rotterdam"},
			want:     "",
		},
		{
			name:     "missing destination",
			shipment: domain.Shipment{OriginPort: "Shanghai"},
			want:     "",
		},
	}

	ctx := context.Background()
	enricher := NewEnricher(slog.Default(), DefaultEnricherConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := enricher.Enrich(ctx, domain.Dataset{Shipments: []domain.Shipment{tt.shipment}})
			assert.Equal(t, tt.want, got.Shipments[0].Route)
		})
	}
}

func TestEnricher_Enrich_InvoiceFlags(t *testing.T) {
	now := day(2024, 6, 15)

	tests := []struct {
		name            string
		invoice         domain.Invoice
		wantOutstanding bool
		wantOverdue     bool
	}{
		{
			name:    "paid invoice",
			invoice: domain.Invoice{InvoiceID: "I1", PaidStatus: "Paid", DueDate: dayPtr(2024, 6, 1)},
		},
		{
			name:            "unpaid due in the future",
			invoice:         domain.Invoice{InvoiceID: "I2", PaidStatus: "Unpaid", DueDate: dayPtr(2024, 6, 20)},
			wantOutstanding: true,
		},
		{
			name:            "unpaid due today is not overdue yet",
			invoice:         domain.Invoice{InvoiceID: "I3", PaidStatus: "Unpaid", DueDate: dayPtr(2024, 6, 15)},
			wantOutstanding: true,
		},
		{
			name:            "overdue past due date",
			invoice:         domain.Invoice{InvoiceID: "I4", PaidStatus: "Overdue", DueDate: dayPtr(2024, 6, 1)},
			wantOutstanding: true,
			wantOverdue:     true,
		},
		{
			name:            "unpaid without due date",
			invoice:         domain.Invoice{InvoiceID: "I5", PaidStatus: "Unpaid"},
			wantOutstanding: true,
		},
		{
			name:    "labels match case-sensitively",
			invoice: domain.Invoice{InvoiceID: "I6", PaidStatus: "unpaid", DueDate: dayPtr(2024, 6, 1)},
		},
	}

	ctx := context.Background()
	enricher := NewEnricher(slog.Default(), EnricherConfig{Now: fixedNow(now)})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := enricher.Enrich(ctx, domain.Dataset{Invoices: []domain.Invoice{tt.invoice}})
			inv := got.Invoices[0]

			assert.Equal(t, tt.wantOutstanding, inv.IsOutstanding)
			assert.Equal(t, tt.wantOverdue, inv.OverdueFlag)
		})
	}
}

func TestEnricher_Enrich_OnTimeShareTracksProbability(t *testing.T) {
	ctx := context.Background()
	enricher := NewEnricher(slog.Default(), DefaultEnricherConfig())

	raw := domain.Dataset{Shipments: make([]domain.Shipment, 0, 2000)}
	for i := 0; i < 2000; i++ {
		eta := day(2024, 1, 1).AddDate(0, 0, i%90)
		raw.Shipments = append(raw.Shipments, domain.Shipment{
			ContainerID: "C", Status: "Delivered", ETA: &eta,
		})
	}

	got := enricher.Enrich(ctx, raw)

	onTime := 0
	for _, s := range got.Shipments {
		require.NotNil(t, s.OnTime)
		if *s.OnTime {
			onTime++
		}
	}
	share := float64(onTime) / float64(len(got.Shipments))
	assert.InDelta(t, 0.75, share, 0.05, "on-time share should track the configured probability")
}
