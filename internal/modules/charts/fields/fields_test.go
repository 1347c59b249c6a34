package fields

import (
	"testing"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_EveryMappedField(t *testing.T) {
	for _, internal := range All() {
		wire, err := ToWire(internal)
		require.NoError(t, err, internal)

		back, err := ToInternal(wire)
		require.NoError(t, err, wire)
		assert.Equal(t, internal, back)

		again, err := ToWire(back)
		require.NoError(t, err)
		assert.Equal(t, wire, again)
	}
}

func TestMapping_IsBijection(t *testing.T) {
	assert.Len(t, wireToInternal, len(internalToWire))

	seen := make(map[string]bool)
	for _, wire := range internalToWire {
		assert.False(t, seen[wire], "wire name %q used twice", wire)
		seen[wire] = true
	}
}

func TestInvert_RejectsCollision(t *testing.T) {
	_, err := invert(map[string]string{"close": "p_c", "adj_close": "p_c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"p_c"`)
}

func TestUnmappedField_IsConfigurationError(t *testing.T) {
	_, err := ToWire("not_a_field")
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))

	_, err = ToInternal("zz_unknown")
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestQueryToWire(t *testing.T) {
	q := &dataset.Query{
		DatasetType:        dataset.TypeETFComposition,
		SelectFields:       []string{Sector},
		SelectAggregations: []dataset.Aggregation{{Field: Weight, Function: dataset.AggSum, Alias: Weight}},
		FilterConditions:   []dataset.FilterCondition{{Field: Ticker, Operator: dataset.OpEq, Values: []string{"SPY"}}},
		GroupByConditions:  []dataset.GroupBy{{Field: Sector}},
		SortConditions:     []dataset.Sort{{Field: Weight, Direction: dataset.Desc}},
	}

	wire, err := QueryToWire(q)
	require.NoError(t, err)

	assert.Equal(t, []string{"w_sc"}, wire.SelectFields)
	assert.Equal(t, "w_wt", wire.SelectAggregations[0].Field)
	assert.Equal(t, "w_wt", wire.SelectAggregations[0].Alias)
	assert.Equal(t, "c_tk", wire.FilterConditions[0].Field)
	assert.Equal(t, []string{"SPY"}, wire.FilterConditions[0].Values, "values are not field names")
	assert.Equal(t, "w_sc", wire.GroupByConditions[0].Field)
	assert.Equal(t, "w_wt", wire.SortConditions[0].Field)

	assert.Equal(t, Sector, q.SelectFields[0], "input query must not be rewritten in place")

	back, err := QueryToInternal(wire)
	require.NoError(t, err)
	assert.Equal(t, q, back)
}

func TestQueryToWire_UnmappedFieldFails(t *testing.T) {
	_, err := QueryToWire(&dataset.Query{SelectFields: []string{Ticker, "mystery"}})
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestTableToInternal(t *testing.T) {
	wire := &dataset.Table{
		Columns: []dataset.Column{{Field: "t_dt"}, {Field: "p_c", Unit: "USD"}},
		Rows: []dataset.Row{
			{"t_dt": "20240102", "p_c": 185.6},
			{"t_dt": "20240103", "p_c": 184.2},
		},
	}

	internal, err := TableToInternal(wire)
	require.NoError(t, err)

	assert.Equal(t, Date, internal.Columns[0].Field)
	assert.Equal(t, "USD", internal.Columns[1].Unit)
	assert.Equal(t, 185.6, internal.Rows[0][Close])
	assert.Equal(t, "20240103", internal.Rows[1][Date])
	assert.Contains(t, wire.Rows[0], "p_c", "input table must stay in wire vocabulary")
}

func TestTableToInternal_UnmappedColumnFails(t *testing.T) {
	_, err := TableToInternal(&dataset.Table{Rows: []dataset.Row{{"t_dt": "20240102", "??": 1}}})
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}
