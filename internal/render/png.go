package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNotPlottable reports a chart without enough data to draw.
var ErrNotPlottable = errors.New("chart has no plottable data")

// PNG draws the chart at widthIn x heightIn inches and writes the PNG to w.
func PNG(w io.Writer, c *Chart, widthIn, heightIn float64) error {
	p, err := buildPlot(c)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", c.ID, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", c.ID, err)
	}
	return nil
}

func buildPlot(c *Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	switch c.Kind {
	case BarChart:
		if len(c.Values) == 0 {
			return nil, fmt.Errorf("%s: %w", c.ID, ErrNotPlottable)
		}
		bars, err := plotter.NewBarChart(plotter.Values(c.Values), vg.Points(20))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.ID, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
		p.NominalX(c.Labels...)
	case LineChart:
		if len(c.Values) == 0 || len(c.X) != len(c.Values) {
			return nil, fmt.Errorf("%s: %w", c.ID, ErrNotPlottable)
		}
		pts := make(plotter.XYs, len(c.Values))
		for i := range c.Values {
			pts[i].X, pts[i].Y = c.X[i], c.Values[i]
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.ID, err)
		}
		line.Width = vg.Points(2)
		p.Add(plotter.NewGrid(), line, points)
	case BoxChart:
		if c.Box == nil || c.Box.Stats.Count == 0 {
			return nil, fmt.Errorf("%s: %w", c.ID, ErrNotPlottable)
		}
		var vals plotter.Values
		for _, v := range c.Box.Values {
			if !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		box, err := plotter.NewBoxPlot(vg.Points(40), 0, vals)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.ID, err)
		}
		p.Add(box)
		p.NominalX(c.Box.Name)
	case HeatmapChart:
		g := c.Grid
		if g == nil || len(g.Rows) < 2 || len(g.Cols) < 2 {
			return nil, fmt.Errorf("%s: %w", c.ID, ErrNotPlottable)
		}
		grid := newHeatGrid(g)
		if math.IsInf(grid.min, 1) {
			return nil, fmt.Errorf("%s: %w", c.ID, ErrNotPlottable)
		}
		p.Add(plotter.NewHeatMap(grid, palette.Heat(12, 1)))
		p.X.Tick.Marker = labelTicks(g.Cols)
		rows := make([]string, len(g.Rows))
		for i, r := range g.Rows {
			rows[len(rows)-1-i] = r
		}
		p.Y.Tick.Marker = labelTicks(rows)
	default:
		return nil, fmt.Errorf("%s: unknown chart kind %q", c.ID, c.Kind)
	}
	return p, nil
}

func labelTicks(labels []string) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: l}
	}
	return ticks
}

// heatGrid adapts Grid to plotter.GridXYZ with row 0 at the top.
type heatGrid struct {
	g        *Grid
	min, max float64
}

func newHeatGrid(g *Grid) heatGrid {
	h := heatGrid{g: g, min: math.Inf(1), max: math.Inf(-1)}
	for _, row := range g.Cells {
		for _, v := range row {
			if v == nil {
				continue
			}
			h.min = math.Min(h.min, *v)
			h.max = math.Max(h.max, *v)
		}
	}
	return h
}

func (h heatGrid) Dims() (c, r int) { return len(h.g.Cols), len(h.g.Rows) }

func (h heatGrid) Z(c, r int) float64 {
	if v := h.g.Cells[len(h.g.Rows)-1-r][c]; v != nil {
		return *v
	}
	return math.NaN()
}

func (h heatGrid) X(c int) float64 { return float64(c) }
func (h heatGrid) Y(r int) float64 { return float64(r) }
func (h heatGrid) Min() float64    { return h.min }
func (h heatGrid) Max() float64    { return h.max }
