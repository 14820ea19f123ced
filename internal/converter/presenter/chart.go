package presenter

import (
	"fmt"
	"strings"

	"github.com/langowen/fxconverter/internal/entities"
)

const (
	chartWidth     = 800.0
	chartHeight    = 300.0
	chartPadLeft   = 70.0
	chartPadRight  = 30.0
	chartPadTop    = 40.0
	chartPadBottom = 50.0
	gridLines      = 4
)

type ChartPoint struct {
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
	X     float64 `json:"-"`
	Y     float64 `json:"-"`
}

type ChartData struct {
	Title  string       `json:"title"`
	Points []ChartPoint `json:"points"`
}

type GridLine struct {
	Y     float64
	Label string
}

// Chart is the trend plot geometry in SVG user units.
type Chart struct {
	Data     ChartData
	Width    float64
	Height   float64
	Polyline string
	Grid     []GridLine
	Left     float64
	Right    float64
	Bottom   float64
}

// NewChart returns nil for fewer than two records, which is the empty state,
// not an error. The x axis is categorical: points are spaced evenly in
// timestamp order and labelled with their timestamps, not placed on a
// linear time scale.
func NewChart(records []entities.HistoryRecord) *Chart {
	if len(records) < 2 {
		return nil
	}

	newest := records[len(records)-1]
	c := &Chart{
		Data: ChartData{
			Title:  fmt.Sprintf("%s → %s Trend", newest.From, newest.To),
			Points: make([]ChartPoint, len(records)),
		},
		Width:  chartWidth,
		Height: chartHeight,
		Left:   chartPadLeft,
		Right:  chartWidth - chartPadRight,
		Bottom: chartHeight - chartPadBottom,
	}

	lo, hi := records[0].Rate, records[0].Rate
	for _, r := range records[1:] {
		if r.Rate < lo {
			lo = r.Rate
		}
		if r.Rate > hi {
			hi = r.Rate
		}
	}
	if hi == lo {
		pad := hi * 0.01
		if pad == 0 {
			pad = 1
		}
		lo, hi = lo-pad, hi+pad
	}

	plotW := c.Right - c.Left
	plotH := c.Bottom - chartPadTop
	step := plotW / float64(len(records)-1)

	coords := make([]string, len(records))
	for i, r := range records {
		x := c.Left + step*float64(i)
		y := c.Bottom - (r.Rate-lo)/(hi-lo)*plotH
		c.Data.Points[i] = ChartPoint{
			Label: r.Timestamp.Format(TimeLayout),
			Rate:  r.Rate,
			X:     x,
			Y:     y,
		}
		coords[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	c.Polyline = strings.Join(coords, " ")

	for i := 0; i <= gridLines; i++ {
		v := lo + (hi-lo)*float64(i)/gridLines
		c.Grid = append(c.Grid, GridLine{
			Y:     c.Bottom - float64(i)/gridLines*plotH,
			Label: Rate(v),
		})
	}

	return c
}
