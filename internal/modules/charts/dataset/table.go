package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Column describes one result column. Unit and Scale are optional display hints
// (e.g. Unit "USD", Scale 1e6 for values reported in millions).
type Column struct {
	Field string  `json:"field" msgpack:"f"`
	Unit  string  `json:"unit,omitempty" msgpack:"u,omitempty"`
	Scale float64 `json:"scale,omitempty" msgpack:"s,omitempty"`
}

// Row is one result row keyed by field name.
type Row map[string]any

// Table is the dataset service's result. The pipeline treats it as input-only.
type Table struct {
	Columns []Column `json:"columns" msgpack:"c"`
	Rows    []Row    `json:"rows" msgpack:"r"`
}

// Column looks up a column descriptor by field.
func (t *Table) Column(field string) (Column, bool) {
	if t == nil {
		return Column{}, false
	}
	for _, c := range t.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// HasField reports whether field is declared as a column or present in any row.
func (t *Table) HasField(field string) bool {
	if _, ok := t.Column(field); ok {
		return true
	}
	if t == nil {
		return false
	}
	for _, r := range t.Rows {
		if _, ok := r[field]; ok {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// Float coerces a row value to a float. JSON numbers, Go numerics and numeric
// strings (thousands separators allowed) are accepted; nil, blanks, NaN and
// infinities are not.
func Float(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String renders a row value as text for labels and filters.
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case bool:
		return strconv.FormatBool(s)
	}
	if f, ok := Float(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
