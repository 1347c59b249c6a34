package fields

import (
	"fmt"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
)

// QueryToWire returns a copy of q with every field reference in the wire vocabulary.
// Aggregation aliases are translated too since they name output columns.
func QueryToWire(q *dataset.Query) (*dataset.Query, error) {
	return rewriteQuery(q, ToWire)
}

// QueryToInternal is the inverse of QueryToWire. The reference dataset service uses
// it to read incoming wire queries.
func QueryToInternal(q *dataset.Query) (*dataset.Query, error) {
	return rewriteQuery(q, ToInternal)
}

func rewriteQuery(q *dataset.Query, mapName func(string) (string, error)) (*dataset.Query, error) {
	if q == nil {
		return nil, fmt.Errorf("nil query")
	}
	out := q.Clone()

	for i, f := range out.SelectFields {
		mapped, err := mapName(f)
		if err != nil {
			return nil, fmt.Errorf("select field: %w", err)
		}
		out.SelectFields[i] = mapped
	}
	for i, a := range out.SelectAggregations {
		mapped, err := mapName(a.Field)
		if err != nil {
			return nil, fmt.Errorf("aggregation field: %w", err)
		}
		out.SelectAggregations[i].Field = mapped
		if a.Alias != "" {
			alias, err := mapName(a.Alias)
			if err != nil {
				return nil, fmt.Errorf("aggregation alias: %w", err)
			}
			out.SelectAggregations[i].Alias = alias
		}
	}
	for i, f := range out.FilterConditions {
		mapped, err := mapName(f.Field)
		if err != nil {
			return nil, fmt.Errorf("filter field: %w", err)
		}
		out.FilterConditions[i].Field = mapped
	}
	for i, g := range out.GroupByConditions {
		mapped, err := mapName(g.Field)
		if err != nil {
			return nil, fmt.Errorf("group-by field: %w", err)
		}
		out.GroupByConditions[i].Field = mapped
	}
	for i, s := range out.SortConditions {
		mapped, err := mapName(s.Field)
		if err != nil {
			return nil, fmt.Errorf("sort field: %w", err)
		}
		out.SortConditions[i].Field = mapped
	}
	return out, nil
}

// TableToInternal returns a copy of t with every column and row key translated to
// the internal vocabulary. The input table is not modified.
func TableToInternal(t *dataset.Table) (*dataset.Table, error) {
	return rewriteTable(t, ToInternal)
}

// TableToWire is the inverse of TableToInternal.
func TableToWire(t *dataset.Table) (*dataset.Table, error) {
	return rewriteTable(t, ToWire)
}

func rewriteTable(t *dataset.Table, mapName func(string) (string, error)) (*dataset.Table, error) {
	if t == nil {
		return &dataset.Table{}, nil
	}
	out := &dataset.Table{
		Columns: make([]dataset.Column, len(t.Columns)),
		Rows:    make([]dataset.Row, len(t.Rows)),
	}
	for i, c := range t.Columns {
		mapped, err := mapName(c.Field)
		if err != nil {
			return nil, fmt.Errorf("column: %w", err)
		}
		c.Field = mapped
		out.Columns[i] = c
	}
	for i, r := range t.Rows {
		row := make(dataset.Row, len(r))
		for k, v := range r {
			mapped, err := mapName(k)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			row[mapped] = v
		}
		out.Rows[i] = row
	}
	return out, nil
}
