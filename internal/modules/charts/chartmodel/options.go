package chartmodel

import (
	"strings"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
)

// XField selects the x value. Several fields are joined by Format; without a
// formatter they are joined with "-".
type XField struct {
	Fields []string
	Label  string
	Format func(values []string) string
}

// Key is the axis field identifier ("fiscal_year+fiscal_period" for composites).
func (x XField) Key() string {
	return strings.Join(x.Fields, "+")
}

func (x XField) value(row dataset.Row) string {
	values := make([]string, len(x.Fields))
	for i, f := range x.Fields {
		values[i] = dataset.String(row[f])
	}
	if x.Format != nil {
		return x.Format(values)
	}
	if len(values) == 1 {
		return values[0]
	}
	return strings.Join(values, "-")
}

// YField describes one series. A YField with several Fields is composite: every
// point's Y holds all referenced sub-fields.
type YField struct {
	Fields []string
	Name   string
	Type   SeriesType
	Axis   AxisID
	Unit   string
	Scale  float64
}

// IsComposite reports whether the series carries several values per point.
func (y YField) IsComposite() bool {
	return len(y.Fields) > 1
}

func (y YField) axis() AxisID {
	if y.Axis == AxisSecondary {
		return AxisSecondary
	}
	return AxisPrimary
}

func (y YField) seriesType() SeriesType {
	if y.Type == "" {
		return SeriesLine
	}
	return y.Type
}

func (y YField) name() string {
	if y.Name != "" {
		return y.Name
	}
	return strings.Join(y.Fields, "/")
}

// DataOptions is the preset-specific descriptor the transformer works from.
type DataOptions struct {
	Title    string
	DataType string
	X        XField
	Y        []YField
	// GroupBy, when set, produces one series per distinct value of this field.
	GroupBy string
	// KeepRaw copies the source row onto every point.
	KeepRaw bool
}

// DateLabel formats a YYYYMMDD value as YYYY-MM-DD and leaves anything else alone.
func DateLabel(values []string) string {
	v := strings.Join(values, "")
	if len(v) == 8 && isDigits(v) {
		return v[:4] + "-" + v[4:6] + "-" + v[6:]
	}
	return v
}

// FiscalLabel formats (fiscal_year, fiscal_period) as "2024-FY" or "2024-Q1".
func FiscalLabel(values []string) string {
	if len(values) == 0 {
		return ""
	}
	year := values[0]
	if len(values) < 2 || values[1] == "" {
		return year
	}
	period := strings.ToUpper(values[1])
	if isDigits(period) {
		period = "Q" + period
	}
	return year + "-" + period
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
