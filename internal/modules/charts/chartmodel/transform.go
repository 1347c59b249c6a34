package chartmodel

import (
	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"gonum.org/v1/gonum/floats"
)

// Transform builds a ChartModel from a normalized table.
//
// Y specs whose fields are absent from the table produce no series. With GroupBy
// set, every active Y spec yields one series per distinct group value, in
// first-seen row order, and unusable values fall back to 0. Without GroupBy, a
// row index is dropped when every series value on it is absent; remaining absent
// values fall back to 0. The two paths intentionally keep their different
// handling of missing values.
func Transform(table *dataset.Table, opts DataOptions) *ChartModel {
	model := &ChartModel{
		Metadata: Metadata{Title: opts.Title, DataType: opts.DataType},
		Axes: Axes{
			X: Axis{Field: opts.X.Key(), Label: opts.X.Label},
		},
		Series: []Series{},
	}

	if table.IsEmpty() {
		return model
	}

	active := activeFields(table, opts.Y)
	if len(active) == 0 {
		return model
	}

	assignAxes(model, table, active)

	if opts.GroupBy != "" {
		model.Series = groupedSeries(table, opts, active)
	} else {
		model.Series = ungroupedSeries(table, opts, active)
	}

	setDomains(model)
	return model
}

func activeFields(table *dataset.Table, specs []YField) []YField {
	var out []YField
	for _, spec := range specs {
		for _, f := range spec.Fields {
			if table.HasField(f) {
				out = append(out, spec)
				break
			}
		}
	}
	return out
}

// assignAxes copies unit and scale onto the axes from the first spec that sets
// them for each axis. Later specs never overwrite a value already set.
func assignAxes(model *ChartModel, table *dataset.Table, specs []YField) {
	for _, spec := range specs {
		unit, scale := unitAndScale(table, spec)

		axis := &model.Axes.Y.Primary
		if spec.axis() == AxisSecondary {
			if model.Axes.Y.Secondary == nil {
				model.Axes.Y.Secondary = &Axis{}
			}
			axis = model.Axes.Y.Secondary
		}

		if axis.Field == "" {
			axis.Field = spec.Fields[0]
			axis.Label = spec.name()
		}
		if axis.Unit == "" {
			axis.Unit = unit
		}
		if axis.Scale == 0 {
			axis.Scale = scale
		}
	}
}

func unitAndScale(table *dataset.Table, spec YField) (string, float64) {
	unit, scale := spec.Unit, spec.Scale
	if col, ok := table.Column(spec.Fields[0]); ok {
		if unit == "" {
			unit = col.Unit
		}
		if scale == 0 {
			scale = col.Scale
		}
	}
	return unit, scale
}

func newSeries(table *dataset.Table, spec YField, name string, capacity int) Series {
	unit, scale := unitAndScale(table, spec)
	return Series{
		Name:    name,
		Type:    spec.seriesType(),
		YAxisID: spec.axis(),
		Unit:    unit,
		Scale:   scale,
		Data:    make([]Point, 0, capacity),
	}
}

func groupedSeries(table *dataset.Table, opts DataOptions, specs []YField) []Series {
	var order []string
	rowsByGroup := make(map[string][]dataset.Row)
	for _, row := range table.Rows {
		key := dataset.String(row[opts.GroupBy])
		if _, seen := rowsByGroup[key]; !seen {
			order = append(order, key)
		}
		rowsByGroup[key] = append(rowsByGroup[key], row)
	}

	series := make([]Series, 0, len(specs)*len(order))
	for _, spec := range specs {
		for _, group := range order {
			name := group
			if len(specs) > 1 {
				name = group + " " + spec.name()
			}
			rows := rowsByGroup[group]
			s := newSeries(table, spec, name, len(rows))
			for _, row := range rows {
				y, _ := pointValue(row, spec)
				s.Data = append(s.Data, newPoint(opts, row, y))
			}
			series = append(series, s)
		}
	}
	return series
}

func ungroupedSeries(table *dataset.Table, opts DataOptions, specs []YField) []Series {
	series := make([]Series, len(specs))
	for i, spec := range specs {
		series[i] = newSeries(table, spec, spec.name(), len(table.Rows))
	}

	values := make([]any, len(specs))
	for _, row := range table.Rows {
		anyPresent := false
		for i, spec := range specs {
			y, ok := pointValue(row, spec)
			values[i] = y
			anyPresent = anyPresent || ok
		}
		if !anyPresent {
			continue
		}
		for i := range specs {
			series[i].Data = append(series[i].Data, newPoint(opts, row, values[i]))
		}
	}
	return series
}

func newPoint(opts DataOptions, row dataset.Row, y any) Point {
	p := Point{X: opts.X.value(row), Y: y}
	if opts.KeepRaw {
		p.Raw = row
	}
	return p
}

// pointValue returns the y value for a row, falling back to 0 for unusable values.
// ok is false when nothing usable was found.
func pointValue(row dataset.Row, spec YField) (any, bool) {
	if !spec.IsComposite() {
		f, ok := dataset.Float(row[spec.Fields[0]])
		if !ok {
			return float64(0), false
		}
		return f, true
	}

	composite := make(map[string]float64, len(spec.Fields))
	found := false
	for _, field := range spec.Fields {
		f, ok := dataset.Float(row[field])
		if ok {
			found = true
		}
		composite[field] = f
	}
	return composite, found
}

func setDomains(model *ChartModel) {
	primary := axisValues(model, AxisPrimary)
	if len(primary) > 0 {
		lo, hi := floats.Min(primary), floats.Max(primary)
		model.Axes.Y.Primary.Min, model.Axes.Y.Primary.Max = &lo, &hi
	}
	if model.Axes.Y.Secondary != nil {
		secondary := axisValues(model, AxisSecondary)
		if len(secondary) > 0 {
			lo, hi := floats.Min(secondary), floats.Max(secondary)
			model.Axes.Y.Secondary.Min, model.Axes.Y.Secondary.Max = &lo, &hi
		}
	}
}

func axisValues(model *ChartModel, axis AxisID) []float64 {
	var values []float64
	for _, s := range model.Series {
		if s.YAxisID != axis {
			continue
		}
		for _, p := range s.Data {
			if f, ok := p.Scalar(); ok {
				values = append(values, f)
				continue
			}
			if m, ok := p.Composite(); ok {
				for _, f := range m {
					values = append(values, f)
				}
			}
		}
	}
	return values
}
