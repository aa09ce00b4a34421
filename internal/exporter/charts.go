package exporter

import (
	"io"

	"github.com/wcharczuk/go-chart/v2"

	apperrors "seafreight/internal/errors"
	"seafreight/pkg/contracts/domain"
)

// ChartRenderer draws dashboard charts as PNG images server-side, so the
// presentation layer can embed them without a client-side chart stack.
type ChartRenderer struct{}

// NewChartRenderer creates a new chart renderer
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{}
}

// RenderStatusBreakdown draws the shipment status distribution as a bar
// chart. Status sets are open-ended, so the canvas widens with the bar count.
func (r *ChartRenderer) RenderStatusBreakdown(w io.Writer, counts []domain.StatusCount) error {
	if len(counts) == 0 {
		return apperrors.NewExportError("no status data to chart", nil)
	}

	bars := make([]chart.Value, 0, len(counts))
	values := make([]float64, 0, len(counts))
	for _, c := range counts {
		bars = append(bars, chart.Value{
			Label: c.Status,
			Value: float64(c.Count),
		})
		values = append(values, float64(c.Count))
	}

	graph := chart.BarChart{
		Title:      "Shipments by Status",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:      chartWidth(len(bars), 64, 24, 760),
		Height:     420,
		BarWidth:   64,
		BarSpacing: 24,
		YAxis: chart.YAxis{
			Range: barRange(values),
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return apperrors.NewExportError("render status breakdown chart", err)
	}
	return nil
}

// RenderRouteVariance draws the route ranking by mean cost variance. Bars
// grow from the zero baseline so under-plan routes read as negative.
func (r *ChartRenderer) RenderRouteVariance(w io.Writer, routes []domain.RouteVariance) error {
	if len(routes) == 0 {
		return apperrors.NewExportError("no route data to chart", nil)
	}

	bars := make([]chart.Value, 0, len(routes))
	values := make([]float64, 0, len(routes))
	for _, rv := range routes {
		v := rv.MeanCostVariance.InexactFloat64()
		bars = append(bars, chart.Value{
			Label: rv.Route,
			Value: v,
		})
		values = append(values, v)
	}

	graph := chart.BarChart{
		Title:        "Top Routes by Mean Cost Variance",
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:        chartWidth(len(bars), 56, 28, 900),
		Height:       480,
		BarWidth:     56,
		BarSpacing:   28,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Range: barRange(values),
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return apperrors.NewExportError("render route variance chart", err)
	}
	return nil
}

// chartWidth sizes the canvas to the bar count; the renderer refuses to draw
// when the bars outgrow the canvas.
func chartWidth(bars, barWidth, spacing, minWidth int) int {
	w := bars*(barWidth+spacing) + 120
	if w < minWidth {
		return minWidth
	}
	return w
}

// barRange fixes the y-axis span. The renderer rejects zero-delta ranges,
// which single-bar and uniform charts would otherwise produce.
func barRange(values []float64) *chart.ContinuousRange {
	min, max := 0.0, 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		max = min + 1
	}
	pad := (max - min) * 0.1
	return &chart.ContinuousRange{Min: min, Max: max + pad}
}
