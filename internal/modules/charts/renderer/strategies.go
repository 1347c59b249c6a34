package renderer

import (
	"errors"
	"strconv"

	"github.com/aristath/chartpresets/internal/modules/charts/chartmodel"
)

var errNoModel = errors.New("no chart model")

// TimeValue is one point of a scalar time series.
type TimeValue struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// Candle is one OHLC point.
type Candle struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// CandlestickSeries is a series of the time-series library. Exactly one of
// Points and Candles is set.
type CandlestickSeries struct {
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	PriceScale string      `json:"priceScaleId"`
	Points     []TimeValue `json:"points,omitempty"`
	Candles    []Candle    `json:"candles,omitempty"`
}

// CandlestickSpec feeds the time-series (candlestick) library.
type CandlestickSpec struct {
	Title  string              `json:"title"`
	Series []CandlestickSeries `json:"series"`
}

// renderCandlestick maps primary-axis series to the right price scale and
// secondary-axis series to the left one. kind overrides the drawing of the
// first scalar primary series ("line" or "area").
func renderCandlestick(kind string, in Input) (any, error) {
	if in.Model == nil {
		return nil, errNoModel
	}
	spec := CandlestickSpec{Title: in.Model.Metadata.Title, Series: make([]CandlestickSeries, 0, len(in.Model.Series))}
	overridden := false
	for _, s := range in.Model.Series {
		cs := CandlestickSeries{Name: s.Name, Type: string(s.Type), PriceScale: "right"}
		if s.YAxisID == chartmodel.AxisSecondary {
			cs.PriceScale = "left"
		}
		for _, p := range s.Data {
			if m, ok := p.Composite(); ok {
				cs.Candles = append(cs.Candles, Candle{Time: p.X, Open: m["open"], High: m["high"], Low: m["low"], Close: m["close"]})
				continue
			}
			v, _ := p.Scalar()
			cs.Points = append(cs.Points, TimeValue{Time: p.X, Value: v})
		}
		if cs.Candles == nil && !overridden && s.YAxisID == chartmodel.AxisPrimary && (kind == "line" || kind == "area") {
			cs.Type = kind
			overridden = true
		}
		spec.Series = append(spec.Series, cs)
	}
	return spec, nil
}

// GenericSeries describes one series of the generic chart library.
type GenericSeries struct {
	DataKey string `json:"dataKey"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	YAxisID string `json:"yAxisId"`
	Unit    string `json:"unit,omitempty"`
	StackID string `json:"stackId,omitempty"`
}

// GenericSpec feeds the generic chart library: one row per x value with a column
// per series.
type GenericSpec struct {
	Kind   string           `json:"kind"`
	Title  string           `json:"title"`
	XKey   string           `json:"xKey"`
	Axes   chartmodel.Axes  `json:"axes"`
	Series []GenericSeries  `json:"series"`
	Rows   []map[string]any `json:"rows"`
}

func renderGeneric(kind string, in Input) (any, error) {
	if in.Model == nil {
		return nil, errNoModel
	}
	spec := GenericSpec{
		Kind:   kind,
		Title:  in.Model.Metadata.Title,
		XKey:   "x",
		Axes:   in.Model.Axes,
		Series: make([]GenericSeries, 0, len(in.Model.Series)),
		Rows:   []map[string]any{},
	}

	index := make(map[string]int)
	for i, s := range in.Model.Series {
		key := "s" + strconv.Itoa(i)
		gs := GenericSeries{DataKey: key, Name: s.Name, Type: string(s.Type), YAxisID: string(s.YAxisID), Unit: s.Unit}
		if kind == "stacked_bar" {
			gs.StackID = string(s.YAxisID)
		}
		spec.Series = append(spec.Series, gs)

		for _, p := range s.Data {
			row, ok := index[p.X]
			if !ok {
				row = len(spec.Rows)
				index[p.X] = row
				spec.Rows = append(spec.Rows, map[string]any{"x": p.X})
			}
			spec.Rows[row][key] = p.Y
		}
	}
	return spec, nil
}

// TableSpec is a plain table of formatted values.
type TableSpec struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func renderTable(_ string, in Input) (any, error) {
	if in.Model == nil {
		return nil, errNoModel
	}
	gs, err := renderGeneric("table", in)
	if err != nil {
		return nil, err
	}
	g := gs.(GenericSpec)

	label := in.Model.Axes.X.Label
	if label == "" {
		label = in.Model.Axes.X.Field
	}
	spec := TableSpec{Columns: []string{label}, Rows: make([][]string, 0, len(g.Rows))}
	for _, s := range g.Series {
		spec.Columns = append(spec.Columns, s.Name)
	}
	for _, row := range g.Rows {
		cells := []string{row["x"].(string)}
		for _, s := range g.Series {
			cells = append(cells, formatCell(row[s.DataKey]))
		}
		spec.Rows = append(spec.Rows, cells)
	}
	return spec, nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]float64:
		return formatOHLC(x)
	default:
		return ""
	}
}

func formatOHLC(m map[string]float64) string {
	out := ""
	for _, k := range []string{"open", "high", "low", "close"} {
		v, ok := m[k]
		if !ok {
			continue
		}
		if out != "" {
			out += " / "
		}
		out += strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}

// ImageSpec is a pre-supplied image.
type ImageSpec struct {
	URL string `json:"url"`
}

func renderImage(_ string, in Input) (any, error) {
	if in.ImageURL == "" {
		return nil, errors.New("no image url")
	}
	return ImageSpec{URL: in.ImageURL}, nil
}

// PlaceholderSpec is the visible stand-in for a chart that cannot be drawn.
type PlaceholderSpec struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

var placeholderMessages = map[string]string{
	KindUnsupported: "This chart is not supported.",
	KindNoData:      "No data available for the selected period.",
	KindError:       "The chart data could not be loaded.",
}

func renderPlaceholder(kind string, in Input) (any, error) {
	return placeholderSpec(kind, in.Message), nil
}

// placeholderSpec builds the spec for a placeholder kind. Unknown kinds render as
// unsupported; a non-empty message overrides the default text.
func placeholderSpec(kind, message string) PlaceholderSpec {
	msg, ok := placeholderMessages[kind]
	if !ok {
		kind = KindUnsupported
		msg = placeholderMessages[KindUnsupported]
	}
	if message != "" {
		msg = message
	}
	return PlaceholderSpec{Reason: kind, Message: msg}
}
