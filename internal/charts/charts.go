// Package charts renders unemployment series as PNG line charts.
package charts

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

var ErrNoData = errors.New("no data to plot")

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

type Chart struct {
	Title  string
	YLabel string
	Width  vg.Length
	Height vg.Length
}

// Line draws one line per series and writes the PNG to w. Points with dates
// are placed on a time axis; otherwise the x axis is the row index.
func Line(w io.Writer, c Chart, series ...models.Series) error {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	timeAxis := false
	plotted := 0
	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			if pt.Date.IsZero() {
				xys[j].X = float64(pt.Index)
			} else {
				xys[j].X = float64(pt.Date.Unix())
				timeAxis = true
			}
			xys[j].Y = pt.Value
		}

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		points.Color = plotutil.Color(i)
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(2)
		p.Add(line, points)
		if len(series) > 1 {
			p.Legend.Add(s.Name, line)
		}
		plotted++
	}
	if plotted == 0 {
		return ErrNoData
	}

	if timeAxis {
		p.X.Label.Text = "Date"
		p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2006"}
	} else {
		p.X.Label.Text = "Data Point"
	}

	wt, err := p.WriterTo(c.Width, c.Height, "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
