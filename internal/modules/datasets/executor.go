package datasets

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
)

// ErrInvalidQuery marks queries the executor refuses to run.
var ErrInvalidQuery = errors.New("invalid dataset query")

// Execute runs a query over rows in the internal vocabulary.
// Pipeline: filter → group/aggregate → sort → limit → project.
func Execute(q *dataset.Query, rows []dataset.Row, columns []dataset.Column) (*dataset.Table, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: nil query", ErrInvalidQuery)
	}

	filtered, err := applyFilters(rows, q.FilterConditions)
	if err != nil {
		return nil, err
	}

	out := filtered
	if len(q.GroupByConditions) > 0 || len(q.SelectAggregations) > 0 {
		out, err = groupAndAggregate(filtered, q.GroupByConditions, q.SelectAggregations)
		if err != nil {
			return nil, err
		}
	}

	sortRows(out, q.SortConditions)

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	names := outputFields(q)
	table := &dataset.Table{Rows: project(out, names)}
	for _, name := range names {
		table.Columns = append(table.Columns, columnFor(name, columns))
	}
	return table, nil
}

// ============================================================================
// FILTERS
// ============================================================================

func applyFilters(rows []dataset.Row, conds []dataset.FilterCondition) ([]dataset.Row, error) {
	for _, c := range conds {
		if err := checkFilter(c); err != nil {
			return nil, err
		}
	}

	out := make([]dataset.Row, 0, len(rows))
	for _, r := range rows {
		if matchesAll(r, conds) {
			out = append(out, r)
		}
	}
	return out, nil
}

func checkFilter(c dataset.FilterCondition) error {
	want := map[dataset.Operator]int{
		dataset.OpEq:      1,
		dataset.OpBetween: 2,
		dataset.OpGte:     1,
		dataset.OpLte:     1,
	}
	switch c.Operator {
	case dataset.OpIn:
		if len(c.Values) == 0 {
			return fmt.Errorf("%w: IN on %s without values", ErrInvalidQuery, c.Field)
		}
		return nil
	case dataset.OpEq, dataset.OpBetween, dataset.OpGte, dataset.OpLte:
		if len(c.Values) != want[c.Operator] {
			return fmt.Errorf("%w: %s on %s takes %d value(s), got %d",
				ErrInvalidQuery, c.Operator, c.Field, want[c.Operator], len(c.Values))
		}
		return nil
	}
	return fmt.Errorf("%w: unknown operator %q", ErrInvalidQuery, c.Operator)
}

func matchesAll(r dataset.Row, conds []dataset.FilterCondition) bool {
	for _, c := range conds {
		v, ok := r[c.Field]
		if !ok || v == nil {
			return false
		}
		if !matches(dataset.String(v), c) {
			return false
		}
	}
	return true
}

func matches(val string, c dataset.FilterCondition) bool {
	switch c.Operator {
	case dataset.OpEq:
		return strings.EqualFold(val, c.Values[0])
	case dataset.OpIn:
		for _, want := range c.Values {
			if strings.EqualFold(val, want) {
				return true
			}
		}
		return false
	case dataset.OpBetween:
		return compareValues(val, c.Values[0]) >= 0 && compareValues(val, c.Values[1]) <= 0
	case dataset.OpGte:
		return compareValues(val, c.Values[0]) >= 0
	case dataset.OpLte:
		return compareValues(val, c.Values[0]) <= 0
	}
	return false
}

// compareValues orders numerically when both sides are numbers and lexically
// otherwise. YYYYMMDD dates compare correctly either way.
func compareValues(a, b string) int {
	fa, okA := dataset.Float(a)
	fb, okB := dataset.Float(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// ============================================================================
// GROUPING & AGGREGATION
// ============================================================================

func groupAndAggregate(rows []dataset.Row, groupBy []dataset.GroupBy, aggs []dataset.Aggregation) ([]dataset.Row, error) {
	for _, a := range aggs {
		switch a.Function {
		case dataset.AggSum, dataset.AggAvg, dataset.AggMin, dataset.AggMax, dataset.AggLast:
		default:
			return nil, fmt.Errorf("%w: unknown aggregation %q", ErrInvalidQuery, a.Function)
		}
	}
	if len(rows) == 0 {
		return []dataset.Row{}, nil
	}

	grouped := make(map[string][]dataset.Row)
	order := make([]string, 0)
	for _, r := range rows {
		parts := make([]string, len(groupBy))
		for i, g := range groupBy {
			parts[i] = dataset.String(r[g.Field])
		}
		key := strings.Join(parts, "\x1f")
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], r)
	}

	out := make([]dataset.Row, 0, len(order))
	for _, key := range order {
		members := grouped[key]
		row := dataset.Row{}
		for _, g := range groupBy {
			row[g.Field] = members[0][g.Field]
		}
		for _, a := range aggs {
			if v, ok := aggregate(members, a); ok {
				row[a.OutputField()] = v
			} else {
				row[a.OutputField()] = nil
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func aggregate(rows []dataset.Row, a dataset.Aggregation) (any, bool) {
	if a.Function == dataset.AggLast {
		for i := len(rows) - 1; i >= 0; i-- {
			if v := rows[i][a.Field]; v != nil {
				return v, true
			}
		}
		return nil, false
	}

	var (
		sum   float64
		lo    float64
		hi    float64
		count int
	)
	for _, r := range rows {
		f, ok := dataset.Float(r[a.Field])
		if !ok {
			continue
		}
		if count == 0 || f < lo {
			lo = f
		}
		if count == 0 || f > hi {
			hi = f
		}
		sum += f
		count++
	}
	if count == 0 {
		return nil, false
	}

	switch a.Function {
	case dataset.AggSum:
		return sum, true
	case dataset.AggAvg:
		return sum / float64(count), true
	case dataset.AggMin:
		return lo, true
	case dataset.AggMax:
		return hi, true
	}
	return nil, false
}

// ============================================================================
// SORTING & PROJECTION
// ============================================================================

// sortRows is stable; missing values sort last regardless of direction.
func sortRows(rows []dataset.Row, sorts []dataset.Sort) {
	if len(sorts) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, s := range sorts {
			a, aok := rows[i][s.Field]
			b, bok := rows[j][s.Field]
			aMissing := !aok || a == nil
			bMissing := !bok || b == nil
			if aMissing || bMissing {
				if aMissing == bMissing {
					continue
				}
				return bMissing
			}
			c := compareValues(dataset.String(a), dataset.String(b))
			if c == 0 {
				continue
			}
			if s.Direction == dataset.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// outputFields lists the result columns: selected fields first, then aggregation
// outputs that are not already selected. Grouped queries drop selected fields
// that are neither grouped nor aggregated.
func outputFields(q *dataset.Query) []string {
	grouped := len(q.GroupByConditions) > 0 || len(q.SelectAggregations) > 0
	keep := map[string]bool{}
	for _, g := range q.GroupByConditions {
		keep[g.Field] = true
	}
	for _, a := range q.SelectAggregations {
		keep[a.OutputField()] = true
	}

	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, f := range q.SelectFields {
		if grouped && !keep[f] {
			continue
		}
		add(f)
	}
	for _, a := range q.SelectAggregations {
		add(a.OutputField())
	}
	return names
}

func project(rows []dataset.Row, names []string) []dataset.Row {
	out := make([]dataset.Row, len(rows))
	for i, r := range rows {
		p := make(dataset.Row, len(names))
		for _, name := range names {
			if v, ok := r[name]; ok {
				p[name] = v
			}
		}
		out[i] = p
	}
	return out
}

func columnFor(name string, columns []dataset.Column) dataset.Column {
	for _, c := range columns {
		if c.Field == name {
			return c
		}
	}
	return dataset.Column{Field: name}
}
