// Package chart renders analysis results into PNG artifacts.
package chart

import (
	"fmt"

	"github.com/datasleuth/analyst-backend/internal/entity"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Kind selects the chart type.
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
)

// Spec describes one chart to render. Labels and Values must have equal
// length; Labels are only used on the X axis of bar charts.
type Spec struct {
	Kind   Kind
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Values []float64
}

const (
	width  = 8 * vg.Inch
	height = 4 * vg.Inch
)

// Render draws the chart and writes it as a PNG file to path.
func Render(spec Spec, path string) error {
	if len(spec.Values) == 0 {
		return fmt.Errorf("chart has no values")
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	switch spec.Kind {
	case KindBar:
		bars, err := plotter.NewBarChart(plotter.Values(spec.Values), vg.Points(24))
		if err != nil {
			return fmt.Errorf("build bar chart: %w", err)
		}
		bars.Color = plotutil.Color(0)
		p.Add(bars)
		p.NominalX(spec.Labels...)

	case KindLine:
		line, err := plotter.NewLine(toXYs(spec.Values))
		if err != nil {
			return fmt.Errorf("build line chart: %w", err)
		}
		line.Color = plotutil.Color(0)
		p.Add(line)
		p.Add(plotter.NewGrid())

	case KindScatter:
		scatter, err := plotter.NewScatter(toXYs(spec.Values))
		if err != nil {
			return fmt.Errorf("build scatter chart: %w", err)
		}
		scatter.Color = plotutil.Color(0)
		p.Add(scatter)
		p.Add(plotter.NewGrid())

	default:
		return fmt.Errorf("%w: %q", entity.ErrUnknownChart, spec.Kind)
	}

	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

func toXYs(values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(i)
		xys[i].Y = v
	}
	return xys
}
