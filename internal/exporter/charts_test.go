package exporter

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "seafreight/internal/errors"
	"seafreight/pkg/contracts/domain"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func assertPNG(t *testing.T, data []byte) {
	t.Helper()
	require.Greater(t, len(data), len(pngSignature), "rendered image should not be empty")
	assert.Equal(t, pngSignature, data[:len(pngSignature)])
}

func TestChartRenderer_RenderStatusBreakdown(t *testing.T) {
	renderer := NewChartRenderer()

	var buf bytes.Buffer
	err := renderer.RenderStatusBreakdown(&buf, []domain.StatusCount{
		{Status: "Delivered", Count: 3},
		{Status: "In Transit", Count: 2},
		{Status: "Delayed", Count: 1},
		{Status: "Pending Customs", Count: 1},
	})

	require.NoError(t, err)
	assertPNG(t, buf.Bytes())
}

func TestChartRenderer_RenderStatusBreakdown_SingleStatus(t *testing.T) {
	renderer := NewChartRenderer()

	var buf bytes.Buffer
	err := renderer.RenderStatusBreakdown(&buf, []domain.StatusCount{
		{Status: "Delivered", Count: 7},
	})

	require.NoError(t, err, "a single bar must still render")
	assertPNG(t, buf.Bytes())
}

func TestChartRenderer_RenderStatusBreakdown_Empty(t *testing.T) {
	renderer := NewChartRenderer()

	var buf bytes.Buffer
	err := renderer.RenderStatusBreakdown(&buf, nil)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeExport, appErr.Type)
	assert.Contains(t, appErr.Message, "no status data")
	assert.Zero(t, buf.Len())
}

func TestChartRenderer_RenderRouteVariance(t *testing.T) {
	renderer := NewChartRenderer()

	var buf bytes.Buffer
	err := renderer.RenderRouteVariance(&buf, []domain.RouteVariance{
		{Route: "Shanghai → Rotterdam", MeanCostVariance: decimal.RequireFromString("180.00"), Shipments: 3},
		{Route: "Singapore → Hamburg", MeanCostVariance: decimal.RequireFromString("-45.50"), Shipments: 2},
		{Route: "Busan → Felixstowe", MeanCostVariance: decimal.RequireFromString("320.25"), Shipments: 1},
	})

	require.NoError(t, err, "negative variances must render below the baseline")
	assertPNG(t, buf.Bytes())
}

func TestChartRenderer_RenderRouteVariance_UniformValues(t *testing.T) {
	renderer := NewChartRenderer()

	var buf bytes.Buffer
	err := renderer.RenderRouteVariance(&buf, []domain.RouteVariance{
		{Route: "Shanghai → Rotterdam", MeanCostVariance: decimal.Zero, Shipments: 2},
		{Route: "Singapore → Hamburg", MeanCostVariance: decimal.Zero, Shipments: 2},
	})

	require.NoError(t, err, "zero-delta value sets must still render")
	assertPNG(t, buf.Bytes())
}

func TestChartRenderer_RenderRouteVariance_Empty(t *testing.T) {
	renderer := NewChartRenderer()

	var buf bytes.Buffer
	err := renderer.RenderRouteVariance(&buf, []domain.RouteVariance{})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeExport, appErr.Type)
	assert.Contains(t, appErr.Message, "no route data")
}

func TestChartWidth(t *testing.T) {
	tests := []struct {
		name     string
		bars     int
		barWidth int
		spacing  int
		minWidth int
		want     int
	}{
		{
			name:     "few bars floor at minimum width",
			bars:     3,
			barWidth: 64,
			spacing:  24,
			minWidth: 760,
			want:     760,
		},
		{
			name:     "many bars widen the canvas",
			bars:     12,
			barWidth: 64,
			spacing:  24,
			minWidth: 760,
			want:     1176,
		},
		{
			name:     "single bar floors at minimum width",
			bars:     1,
			barWidth: 56,
			spacing:  28,
			minWidth: 900,
			want:     900,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chartWidth(tt.bars, tt.barWidth, tt.spacing, tt.minWidth))
		})
	}
}

func TestBarRange(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		wantMin float64
		wantMax float64
	}{
		{
			name:    "positive values anchor at zero",
			values:  []float64{3, 5, 1},
			wantMin: 0,
			wantMax: 5.5,
		},
		{
			name:    "all zero values get a non-degenerate span",
			values:  []float64{0, 0},
			wantMin: 0,
			wantMax: 1.1,
		},
		{
			name:    "negative values extend the minimum",
			values:  []float64{-40, 25},
			wantMin: -40,
			wantMax: 31.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := barRange(tt.values)
			assert.InDelta(t, tt.wantMin, r.Min, 0.0001)
			assert.InDelta(t, tt.wantMax, r.Max, 0.0001)
		})
	}
}
