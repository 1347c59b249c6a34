package chartmodel

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceDividendTable() *dataset.Table {
	return &dataset.Table{
		Columns: []dataset.Column{
			{Field: "ticker"},
			{Field: "date"},
			{Field: "close", Unit: "USD"},
			{Field: "dividend", Unit: "USD", Scale: 1},
		},
		Rows: []dataset.Row{
			{"ticker": "AAPL", "date": "20240102", "close": 185.64, "dividend": 0.0},
			{"ticker": "AAPL", "date": "20240209", "close": 188.85, "dividend": 0.24},
			{"ticker": "AAPL", "date": "20240301", "close": 179.66, "dividend": nil},
		},
	}
}

func TestTransform_DualAxis(t *testing.T) {
	model := Transform(priceDividendTable(), DataOptions{
		Title: "AAPL price and dividend",
		X:     XField{Fields: []string{"date"}, Format: DateLabel},
		Y: []YField{
			{Fields: []string{"close"}, Name: "Close", Type: SeriesLine, Axis: AxisPrimary},
			{Fields: []string{"dividend"}, Name: "Dividend", Type: SeriesBar, Axis: AxisSecondary},
		},
	})

	require.Len(t, model.Series, 2)
	assert.Equal(t, "Close", model.Series[0].Name)
	assert.Equal(t, SeriesLine, model.Series[0].Type)
	assert.Equal(t, AxisPrimary, model.Series[0].YAxisID)
	assert.Equal(t, SeriesBar, model.Series[1].Type)
	assert.Equal(t, AxisSecondary, model.Series[1].YAxisID)

	for _, s := range model.Series {
		assert.Len(t, s.Data, 3)
	}
	assert.Equal(t, "2024-01-02", model.Series[0].Data[0].X)
	assert.Equal(t, 0.0, model.Series[1].Data[2].Y, "absent dividend falls back to 0 when close is present")

	require.NotNil(t, model.Axes.Y.Secondary)
	assert.Equal(t, "USD", model.Axes.Y.Primary.Unit)
	assert.Equal(t, "date", model.Axes.X.Field)
	require.NotNil(t, model.Axes.Y.Primary.Min)
	assert.Equal(t, 179.66, *model.Axes.Y.Primary.Min)
	assert.Equal(t, 188.85, *model.Axes.Y.Primary.Max)
	assert.Equal(t, 0.24, *model.Axes.Y.Secondary.Max)
}

func TestTransform_GroupByTicker(t *testing.T) {
	table := &dataset.Table{
		Rows: []dataset.Row{
			{"ticker": "B", "date": "20240101", "return_rate": 1.5},
			{"ticker": "A", "date": "20240101", "return_rate": 2.0},
			{"ticker": "B", "date": "20240102", "return_rate": 1.7},
			{"ticker": "A", "date": "20240102", "return_rate": "bad"},
			{"ticker": "A", "date": "20240103", "return_rate": 2.4},
		},
	}

	model := Transform(table, DataOptions{
		X:       XField{Fields: []string{"date"}},
		Y:       []YField{{Fields: []string{"return_rate"}, Name: "Return"}},
		GroupBy: "ticker",
	})

	require.Len(t, model.Series, 2)
	assert.Equal(t, "B", model.Series[0].Name, "groups keep first-seen order")
	assert.Equal(t, "A", model.Series[1].Name)
	assert.Len(t, model.Series[0].Data, 2)
	assert.Len(t, model.Series[1].Data, 3)
	assert.Equal(t, 0.0, model.Series[1].Data[1].Y, "grouped path keeps unusable values as 0")
}

func TestTransform_GroupByMultipleSpecs(t *testing.T) {
	table := &dataset.Table{
		Rows: []dataset.Row{
			{"ticker": "A", "date": "1", "close": 1.0, "volume": 10.0},
			{"ticker": "B", "date": "1", "close": 2.0, "volume": 20.0},
		},
	}

	model := Transform(table, DataOptions{
		X: XField{Fields: []string{"date"}},
		Y: []YField{
			{Fields: []string{"close"}, Name: "Close"},
			{Fields: []string{"volume"}, Name: "Volume", Axis: AxisSecondary, Type: SeriesBar},
		},
		GroupBy: "ticker",
	})

	require.Len(t, model.Series, 4)
	assert.Equal(t, []string{"A Close", "B Close", "A Volume", "B Volume"}, seriesNames(model))
	for _, s := range model.Series {
		assert.Len(t, s.Data, 1)
	}
}

func TestTransform_UngroupedDropsRowsWithEveryValueAbsent(t *testing.T) {
	table := &dataset.Table{
		Rows: []dataset.Row{
			{"date": "1", "close": 10.0, "volume": 100.0},
			{"date": "2", "close": nil, "volume": ""},
			{"date": "3", "close": 12.0},
		},
	}

	model := Transform(table, DataOptions{
		X: XField{Fields: []string{"date"}},
		Y: []YField{
			{Fields: []string{"close"}},
			{Fields: []string{"volume"}, Axis: AxisSecondary},
		},
	})

	require.Len(t, model.Series, 2)
	for _, s := range model.Series {
		require.Len(t, s.Data, 2, "row 2 has no usable values and is dropped")
		assert.Equal(t, "1", s.Data[0].X)
		assert.Equal(t, "3", s.Data[1].X)
	}
	assert.Equal(t, 0.0, model.Series[1].Data[1].Y)
}

func TestTransform_NonFiniteValuesFallBackToZero(t *testing.T) {
	table := &dataset.Table{
		Rows: []dataset.Row{
			{"date": "1", "close": 10.0, "volume": "NaN"},
			{"date": "2", "close": math.Inf(1), "volume": 200.0},
			{"date": "3", "close": "NaN", "volume": math.NaN()},
		},
	}

	model := Transform(table, DataOptions{
		X: XField{Fields: []string{"date"}},
		Y: []YField{
			{Fields: []string{"close"}},
			{Fields: []string{"volume"}, Axis: AxisSecondary},
		},
	})

	require.Len(t, model.Series, 2)
	require.Len(t, model.Series[0].Data, 2, "row 3 has only non-finite values and is dropped")
	assert.Equal(t, 0.0, model.Series[1].Data[0].Y)
	assert.Equal(t, 0.0, model.Series[0].Data[1].Y)

	_, err := json.Marshal(model)
	assert.NoError(t, err)
}

func TestTransform_CompositeCandlestick(t *testing.T) {
	table := &dataset.Table{
		Rows: []dataset.Row{
			{"date": "20240102", "open": 187.15, "high": 188.44, "low": 183.89, "close": 185.64},
			{"date": "20240103", "open": 184.22, "high": 185.88, "low": "", "close": 184.25},
		},
	}

	model := Transform(table, DataOptions{
		X: XField{Fields: []string{"date"}},
		Y: []YField{{Fields: []string{"open", "high", "low", "close"}, Type: SeriesCandlestick, Name: "OHLC"}},
	})

	require.Len(t, model.Series, 1)
	require.Len(t, model.Series[0].Data, 2)

	first, ok := model.Series[0].Data[0].Composite()
	require.True(t, ok)
	assert.Equal(t, map[string]float64{"open": 187.15, "high": 188.44, "low": 183.89, "close": 185.64}, first)

	second, ok := model.Series[0].Data[1].Composite()
	require.True(t, ok)
	assert.Equal(t, 0.0, second["low"])
	assert.Equal(t, 188.44, *model.Axes.Y.Primary.Max)
}

func TestTransform_CompositeXField(t *testing.T) {
	table := &dataset.Table{
		Rows: []dataset.Row{
			{"fiscal_year": float64(2023), "fiscal_period": "FY", "revenue": 383.3},
			{"fiscal_year": "2024", "fiscal_period": "1", "revenue": 119.6},
		},
	}

	model := Transform(table, DataOptions{
		X: XField{Fields: []string{"fiscal_year", "fiscal_period"}, Format: FiscalLabel},
		Y: []YField{{Fields: []string{"revenue"}, Type: SeriesBar}},
	})

	assert.Equal(t, "fiscal_year+fiscal_period", model.Axes.X.Field)
	require.Len(t, model.Series, 1)
	assert.Equal(t, "2023-FY", model.Series[0].Data[0].X)
	assert.Equal(t, "2024-Q1", model.Series[0].Data[1].X)
}

func TestTransform_AxisUnitFirstSpecWins(t *testing.T) {
	table := &dataset.Table{
		Columns: []dataset.Column{
			{Field: "revenue", Unit: "USD", Scale: 1e6},
			{Field: "net_income", Unit: "EUR", Scale: 1e3},
			{Field: "per"},
		},
		Rows: []dataset.Row{{"date": "1", "revenue": 1.0, "net_income": 2.0, "per": 30.0}},
	}

	model := Transform(table, DataOptions{
		X: XField{Fields: []string{"date"}},
		Y: []YField{
			{Fields: []string{"revenue"}},
			{Fields: []string{"net_income"}},
			{Fields: []string{"per"}, Axis: AxisSecondary, Unit: "x"},
		},
	})

	assert.Equal(t, "USD", model.Axes.Y.Primary.Unit)
	assert.Equal(t, 1e6, model.Axes.Y.Primary.Scale)
	assert.Equal(t, "EUR", model.Series[1].Unit, "series keep their own unit")
	require.NotNil(t, model.Axes.Y.Secondary)
	assert.Equal(t, "x", model.Axes.Y.Secondary.Unit)
}

func TestTransform_EmptyAndAbsentFields(t *testing.T) {
	opts := DataOptions{
		X: XField{Fields: []string{"date"}},
		Y: []YField{{Fields: []string{"revenue"}}},
	}

	empty := Transform(&dataset.Table{}, opts)
	assert.True(t, empty.IsEmpty())
	assert.NotNil(t, empty.Series)

	absent := Transform(&dataset.Table{Rows: []dataset.Row{{"date": "1", "net_income": 3.0}}}, opts)
	assert.True(t, absent.IsEmpty(), "a y field missing from every row yields no series")
	assert.Nil(t, absent.Axes.Y.Secondary)
}

func TestTransform_KeepRaw(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Row{{"holding_name": "Apple", "holding_ticker": "AAPL", "weight": 7.1}}}

	model := Transform(table, DataOptions{
		X:       XField{Fields: []string{"holding_name"}},
		Y:       []YField{{Fields: []string{"weight"}, Type: SeriesBar}},
		KeepRaw: true,
	})

	require.Len(t, model.Series[0].Data, 1)
	assert.Equal(t, "AAPL", model.Series[0].Data[0].Raw["holding_ticker"])
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "2024-03-15", DateLabel([]string{"20240315"}))
	assert.Equal(t, "2024-03", DateLabel([]string{"2024-03"}))
	assert.Equal(t, "2024", FiscalLabel([]string{"2024"}))
	assert.Equal(t, "2024-Q3", FiscalLabel([]string{"2024", "3"}))
	assert.Equal(t, "2024-H1", FiscalLabel([]string{"2024", "h1"}))
}

func seriesNames(m *ChartModel) []string {
	names := make([]string, len(m.Series))
	for i, s := range m.Series {
		names[i] = s.Name
	}
	return names
}
