// Package charts renders expense summaries as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"expensetracker/internal/core"
)

// ErrNoData is returned when a summary has nothing to plot.
var ErrNoData = errors.New("no data to chart")

const (
	defaultWidth  = 1024
	defaultHeight = 512
	barWidth      = 60
)

// Generator renders summaries with fixed dimensions.
type Generator struct {
	Width  int
	Height int
}

func NewGenerator() *Generator {
	return &Generator{Width: defaultWidth, Height: defaultHeight}
}

// MonthlyBarChart renders one bar per month of the summary, in month order.
func (g *Generator) MonthlyBarChart(s core.MonthlySummary, year int) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.WriteMonthlyBarChart(&buf, s, year); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteMonthlyBarChart writes the PNG to w.
func (g *Generator) WriteMonthlyBarChart(w io.Writer, s core.MonthlySummary, year int) error {
	bars, maxValue := monthlyBars(s)
	if len(bars) == 0 || maxValue <= 0 {
		return ErrNoData
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Expenses %d", year),
		Width:    g.Width,
		Height:   g.Height,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render monthly chart: %w", err)
	}
	return nil
}

func monthlyBars(s core.MonthlySummary) ([]chart.Value, float64) {
	bars := make([]chart.Value, 0, len(s))
	var maxValue float64
	for _, m := range s {
		v := m.Total.Float64()
		if v > maxValue {
			maxValue = v
		}
		bars = append(bars, chart.Value{
			Label: m.Month.String()[:3],
			Value: v,
		})
	}
	return bars, maxValue
}
