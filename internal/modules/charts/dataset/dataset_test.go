package dataset

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat(t *testing.T) {
	testCases := []struct {
		name  string
		in    any
		want  float64
		valid bool
	}{
		{"float64", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"json number", json.Number("3.25"), 3.25, true},
		{"numeric string", " 1,234.5 ", 1234.5, true},
		{"blank string", "  ", 0, false},
		{"text", "n/a", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"nan string", "NaN", 0, false},
		{"inf string", "-Inf", 0, false},
		{"native nan", math.NaN(), 0, false},
		{"native inf", math.Inf(1), 0, false},
		{"float32 inf", float32(math.Inf(-1)), 0, false},
		{"json number inf", json.Number("1e400"), 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Float(tc.in)
			assert.Equal(t, tc.valid, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "AAPL", String("AAPL"))
	assert.Equal(t, "2024", String(float64(2024)))
	assert.Equal(t, "1.5", String(1.5))
	assert.Equal(t, "", String(nil))
}

func TestTable_HasField(t *testing.T) {
	table := &Table{
		Columns: []Column{{Field: "close", Unit: "USD"}},
		Rows:    []Row{{"close": 1.0, "dividend": 0.2}},
	}

	assert.True(t, table.HasField("close"))
	assert.True(t, table.HasField("dividend"), "row-only fields count")
	assert.False(t, table.HasField("volume"))

	col, ok := table.Column("close")
	require.True(t, ok)
	assert.Equal(t, "USD", col.Unit)

	var nilTable *Table
	assert.True(t, nilTable.IsEmpty())
	assert.False(t, nilTable.HasField("close"))
}

func TestQuery_CloneIsDeep(t *testing.T) {
	q := &Query{
		DatasetType:      TypeDailyPrice,
		SelectFields:     []string{"ticker", "date"},
		FilterConditions: []FilterCondition{{Field: "ticker", Operator: OpEq, Values: []string{"AAPL"}}},
		SortConditions:   []Sort{{Field: "date", Direction: Asc}},
	}

	c := q.Clone()
	c.SelectFields[0] = "x"
	c.FilterConditions[0].Values[0] = "MSFT"

	assert.Equal(t, "ticker", q.SelectFields[0])
	assert.Equal(t, "AAPL", q.FilterConditions[0].Values[0])
	assert.Equal(t, q.SortConditions, c.SortConditions)
}
