package renderer

import (
	"math"
	"testing"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts/chartmodel"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(zerolog.New(nil).Level(zerolog.Disabled))
}

func sampleModel() *chartmodel.ChartModel {
	return &chartmodel.ChartModel{
		Metadata: chartmodel.Metadata{Title: "AAPL"},
		Axes:     chartmodel.Axes{X: chartmodel.Axis{Field: "date", Label: "Date"}},
		Series: []chartmodel.Series{
			{Name: "Close", Type: chartmodel.SeriesLine, YAxisID: chartmodel.AxisPrimary, Data: []chartmodel.Point{
				{X: "2024-01-02", Y: 185.64},
				{X: "2024-01-03", Y: 184.25},
			}},
			{Name: "Dividend", Type: chartmodel.SeriesBar, YAxisID: chartmodel.AxisSecondary, Data: []chartmodel.Point{
				{X: "2024-01-03", Y: 0.24},
			}},
		},
	}
}

func TestResolve(t *testing.T) {
	line := Resolve(domain.PresetPriceInformation, domain.VisualizationLine)
	assert.False(t, line.IsFallback())
	assert.Equal(t, LibraryCandlestick, line.Library)

	assert.Equal(t, FallbackTag, Resolve(domain.PresetPriceInformation, domain.VisualizationPie))
	assert.Equal(t, FallbackTag, Resolve("UNKNOWN", domain.VisualizationLine))
}

func TestResolve_TotalOverPresets(t *testing.T) {
	reg := newTestRegistry()
	for _, key := range domain.AllPresets() {
		kinds := SupportedKinds(key)
		require.NotEmpty(t, kinds, "preset %s has no renderer", key)
		for _, kind := range kinds {
			tag := Resolve(key, kind)
			_, ok := reg.strategies[tag.Library]
			assert.True(t, ok, "%s/%s resolves to unregistered library %s", key, kind, tag.Library)
		}
	}
}

func TestRender_Generic(t *testing.T) {
	out, err := newTestRegistry().Render(generic("composed"), Input{Model: sampleModel()})
	require.NoError(t, err)

	spec, ok := out.Spec.(GenericSpec)
	require.True(t, ok)
	require.Len(t, spec.Series, 2)
	assert.Equal(t, "secondary", spec.Series[1].YAxisID)
	require.Len(t, spec.Rows, 2, "rows are aligned on x")
	assert.Equal(t, 185.64, spec.Rows[0]["s0"])
	assert.NotContains(t, spec.Rows[0], "s1")
	assert.Equal(t, 0.24, spec.Rows[1]["s1"])
}

func TestRender_StackedBarSetsStack(t *testing.T) {
	out, err := newTestRegistry().Render(generic("stacked_bar"), Input{Model: sampleModel()})
	require.NoError(t, err)
	spec := out.Spec.(GenericSpec)
	assert.Equal(t, "primary", spec.Series[0].StackID)
}

func TestRender_Candlestick(t *testing.T) {
	model := &chartmodel.ChartModel{Series: []chartmodel.Series{
		{Name: "OHLC", Type: chartmodel.SeriesCandlestick, YAxisID: chartmodel.AxisPrimary, Data: []chartmodel.Point{
			{X: "2024-01-02", Y: map[string]float64{"open": 1, "high": 3, "low": 0.5, "close": 2}},
		}},
		{Name: "Volume", Type: chartmodel.SeriesBar, YAxisID: chartmodel.AxisSecondary, Data: []chartmodel.Point{
			{X: "2024-01-02", Y: 1000.0},
		}},
	}}

	out, err := newTestRegistry().Render(candlestick("candlestick"), Input{Model: model})
	require.NoError(t, err)
	spec := out.Spec.(CandlestickSpec)
	require.Len(t, spec.Series, 2)
	assert.Equal(t, []Candle{{Time: "2024-01-02", Open: 1, High: 3, Low: 0.5, Close: 2}}, spec.Series[0].Candles)
	assert.Equal(t, "left", spec.Series[1].PriceScale)
	assert.Equal(t, "bar", spec.Series[1].Type)
}

func TestRender_CandlestickAreaOverride(t *testing.T) {
	out, err := newTestRegistry().Render(candlestick("area"), Input{Model: sampleModel()})
	require.NoError(t, err)
	spec := out.Spec.(CandlestickSpec)
	assert.Equal(t, "area", spec.Series[0].Type)
	assert.Equal(t, "bar", spec.Series[1].Type)
}

func TestRender_Table(t *testing.T) {
	out, err := newTestRegistry().Render(tableTag, Input{Model: sampleModel()})
	require.NoError(t, err)
	spec := out.Spec.(TableSpec)
	assert.Equal(t, []string{"Date", "Close", "Dividend"}, spec.Columns)
	assert.Equal(t, [][]string{
		{"2024-01-02", "185.64", ""},
		{"2024-01-03", "184.25", "0.24"},
	}, spec.Rows)
}

func TestRender_ModelRequired(t *testing.T) {
	_, err := newTestRegistry().Render(generic("line"), Input{})
	assert.Error(t, err)
}

func TestRender_Image(t *testing.T) {
	reg := newTestRegistry()
	out, err := reg.Render(Resolve(domain.PresetInlineImage, domain.VisualizationImage), Input{ImageURL: "https://example.com/c.png"})
	require.NoError(t, err)
	assert.Equal(t, ImageSpec{URL: "https://example.com/c.png"}, out.Spec)

	_, err = reg.Render(Tag{Library: LibraryImage, Kind: "image"}, Input{})
	assert.Error(t, err)
}

func TestRender_MissingStrategyIsDefect(t *testing.T) {
	_, err := newTestRegistry().Render(Tag{Library: "nope"}, Input{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedRenderer)
}

func TestPlaceholders_AreDistinguishable(t *testing.T) {
	reg := newTestRegistry()
	unsupported := reg.Placeholder(FallbackTag, "").Spec.(PlaceholderSpec)
	noData := reg.Placeholder(NoDataTag, "").Spec.(PlaceholderSpec)
	failed := reg.Placeholder(ErrorTag, "").Spec.(PlaceholderSpec)

	assert.Equal(t, KindUnsupported, unsupported.Reason)
	assert.Equal(t, KindNoData, noData.Reason)
	assert.Equal(t, KindError, failed.Reason)
	assert.NotEqual(t, noData.Message, failed.Message)
	assert.NotEqual(t, unsupported.Message, noData.Message)
}

func TestPlaceholder_UnknownKindAndMessageOverride(t *testing.T) {
	reg := newTestRegistry()

	unknown := reg.Placeholder(Tag{Library: LibraryPlaceholder, Kind: "bogus"}, "").Spec.(PlaceholderSpec)
	assert.Equal(t, KindUnsupported, unknown.Reason)
	assert.NotEmpty(t, unknown.Message)

	custom := reg.Placeholder(ErrorTag, "dataset service unavailable").Spec.(PlaceholderSpec)
	assert.Equal(t, KindError, custom.Reason)
	assert.Equal(t, "dataset service unavailable", custom.Message)

	viaStrategy, err := reg.Render(NoDataTag, Input{})
	require.NoError(t, err)
	assert.Equal(t, reg.Placeholder(NoDataTag, ""), viaStrategy)
}

func TestSurface_Image(t *testing.T) {
	out, err := newTestRegistry().Render(generic("line"), Input{Model: sampleModel()})
	require.NoError(t, err)

	surface := &Surface{Output: out, Width: 120, Height: 60}
	img := surface.Image()
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.False(t, r == 0xffff && g == 0xffff && b == 0xffff, "first close point sits at the top-left corner")
}

func TestSurface_ImageSkipsNonFiniteValues(t *testing.T) {
	testCases := []struct {
		name string
		bad  float64
	}{
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			surface := &Surface{
				Output: Output{Tag: candlestick("line"), Spec: CandlestickSpec{
					Series: []CandlestickSeries{{
						Name: "Close",
						Points: []TimeValue{
							{Time: "1", Value: 1},
							{Time: "2", Value: tc.bad},
							{Time: "3", Value: 3},
						},
					}},
				}},
				Width:  40,
				Height: 20,
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				surface.Image()
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("Image did not return")
			}
		})
	}
}

func TestSurface_ImageExtremeRange(t *testing.T) {
	surface := &Surface{
		Output: Output{Tag: generic("line"), Spec: GenericSpec{
			Series: []GenericSeries{{DataKey: "v"}},
			Rows: []map[string]any{
				{"v": -math.MaxFloat64},
				{"v": math.MaxFloat64},
			},
		}},
		Width:  40,
		Height: 20,
	}

	img := surface.Image()
	assert.Equal(t, 40, img.Bounds().Dx())
}
