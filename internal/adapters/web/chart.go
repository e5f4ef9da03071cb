package web

import (
	"math"

	"cma_viewer/internal/domain"
)

const (
	chartWidth   = 720.0
	chartHeight  = 320.0
	chartPadLeft = 64.0
	chartPadBot  = 48.0
	chartPadTop  = 16.0
	chartTicks   = 5
)

type Bar struct {
	X, Y, W, H float64
	Category   string
	Tooltip    string
}

type AxisTick struct {
	Y     float64
	Label string
}

// BarChart is the laid out SVG bar chart of the sale prices.
type BarChart struct {
	Width, Height float64
	PlotLeft      float64
	PlotBottom    float64
	Title         string
	Series        string
	XTitle        string
	YTitle        string
	Bars          []Bar
	Ticks         []AxisTick
}

// NewBarChart lays points out left to right with the y axis starting at zero.
// It returns nil when there is nothing to draw.
func NewBarChart(points []domain.ChartPoint) *BarChart {
	if len(points) == 0 {
		return nil
	}
	c := &BarChart{
		Width:      chartWidth,
		Height:     chartHeight,
		PlotLeft:   chartPadLeft,
		PlotBottom: chartHeight - chartPadBot,
		Title:      "Similar Properties Sale Prices Over Time",
		Series:     "Sale Price",
		XTitle:     "Sale Date",
		YTitle:     "Sale Price (AUD)",
	}

	maxY := 0.0
	for _, p := range points {
		maxY = math.Max(maxY, p.Y)
	}
	top := niceCeil(maxY)
	plotH := c.PlotBottom - chartPadTop
	plotW := chartWidth - chartPadLeft - 8
	slot := plotW / float64(len(points))

	for i := 0; i <= chartTicks; i++ {
		v := top * float64(i) / chartTicks
		c.Ticks = append(c.Ticks, AxisTick{Y: c.PlotBottom - plotH*v/top, Label: Tick(v)})
	}
	for i, p := range points {
		h := 0.0
		if p.Y > 0 {
			h = plotH * p.Y / top
		}
		label := p.Label
		if label == "" {
			label = "Property"
		}
		c.Bars = append(c.Bars, Bar{
			X:        chartPadLeft + slot*float64(i) + slot*0.15,
			Y:        c.PlotBottom - h,
			W:        slot * 0.7,
			H:        h,
			Category: p.X,
			Tooltip:  label + ": $" + Number(p.Y),
		})
	}
	return c
}

// niceCeil rounds v up to 1, 2, 2.5 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if v <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}
