// Package chartmodel turns normalized dataset rows into the renderer-agnostic
// ChartModel consumed by every renderer.
package chartmodel

import "github.com/aristath/chartpresets/internal/modules/charts/dataset"

// SeriesType is how a series is drawn.
type SeriesType string

const (
	SeriesLine        SeriesType = "line"
	SeriesArea        SeriesType = "area"
	SeriesBar         SeriesType = "bar"
	SeriesCandlestick SeriesType = "candlestick"
	SeriesPie         SeriesType = "pie"
)

// AxisID names one of the two y-axes.
type AxisID string

const (
	AxisPrimary   AxisID = "primary"
	AxisSecondary AxisID = "secondary"
)

// ChartModel is the pipeline's single output. It is built fresh on every
// transformation and replaced wholesale, never patched.
type ChartModel struct {
	Metadata Metadata `json:"metadata"`
	Axes     Axes     `json:"axes"`
	Series   []Series `json:"series"`
}

// Metadata describes the chart as a whole.
type Metadata struct {
	Title    string `json:"title"`
	DataType string `json:"dataType"`
}

// Axes holds the x-axis and at most two y-axes.
type Axes struct {
	X Axis  `json:"x"`
	Y YAxes `json:"y"`
}

// YAxes holds the primary and optional secondary y-axis.
type YAxes struct {
	Primary   Axis  `json:"primary"`
	Secondary *Axis `json:"secondary,omitempty"`
}

// Axis describes one axis. Min and Max are the value domain of the series on the axis.
type Axis struct {
	Field string   `json:"field,omitempty"`
	Label string   `json:"label,omitempty"`
	Unit  string   `json:"unit,omitempty"`
	Scale float64  `json:"scale,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// Series is one drawable series. YAxisID is always exactly one of the two axes.
type Series struct {
	Name    string     `json:"name"`
	Type    SeriesType `json:"type"`
	YAxisID AxisID     `json:"yAxisId"`
	Unit    string     `json:"unit,omitempty"`
	Scale   float64    `json:"scale,omitempty"`
	Data    []Point    `json:"data"`
}

// Point is one data point. Y is a float64 for scalar series and a
// map[string]float64 keyed by field for composite series such as OHLC.
type Point struct {
	X   string      `json:"x"`
	Y   any         `json:"y"`
	Raw dataset.Row `json:"raw,omitempty"`
}

// Scalar returns the point's scalar value.
func (p Point) Scalar() (float64, bool) {
	f, ok := p.Y.(float64)
	return f, ok
}

// Composite returns the point's composite value.
func (p Point) Composite() (map[string]float64, bool) {
	m, ok := p.Y.(map[string]float64)
	return m, ok
}

// IsEmpty reports whether the model has nothing to draw.
func (m *ChartModel) IsEmpty() bool {
	return m == nil || len(m.Series) == 0
}

// SeriesOn returns the series drawn against an axis.
func (m *ChartModel) SeriesOn(axis AxisID) []Series {
	var out []Series
	for _, s := range m.Series {
		if s.YAxisID == axis {
			out = append(out, s)
		}
	}
	return out
}
