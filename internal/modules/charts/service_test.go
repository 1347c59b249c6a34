package charts

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/chartpresets/internal/database"
	"github.com/aristath/chartpresets/internal/modules/charts/chartmodel"
	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/instance"
	"github.com/aristath/chartpresets/internal/modules/charts/pipeline"
	"github.com/aristath/chartpresets/internal/modules/charts/query"
	"github.com/aristath/chartpresets/internal/modules/charts/renderer"
	testingpkg "github.com/aristath/chartpresets/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	table *dataset.Table
	calls int
}

func (f *stubFetcher) FetchQuery(context.Context, *dataset.Query, string) (*dataset.Table, error) {
	f.calls++
	return f.table, nil
}

var testReference = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, fetcher pipeline.Fetcher) *Service {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, database.NameCharts)
	t.Cleanup(cleanup)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	builder := query.NewBuilder(log)
	pipe := pipeline.New(builder, fetcher, renderer.NewRegistry(log), log)
	svc := NewService(
		builder,
		pipe,
		instance.NewManager(pipe, 10*time.Millisecond, log),
		NewSavedChartRepository(db.Conn()),
		NewRenderLogRepository(db.Conn()),
		log,
	)
	svc.now = func() time.Time { return testReference.Add(9 * time.Hour) }
	return svc
}

func wireCloseTable() *dataset.Table {
	return &dataset.Table{
		Columns: []dataset.Column{{Field: "c_tk"}, {Field: "t_dt"}, {Field: "p_c", Unit: "USD"}},
		Rows: []dataset.Row{
			{"c_tk": "AAPL", "t_dt": "20240313", "p_c": 171.13},
			{"c_tk": "AAPL", "t_dt": "20240314", "p_c": 173.0},
		},
	}
}

func TestService_Presets(t *testing.T) {
	svc := newTestService(t, &stubFetcher{})

	infos, err := svc.Presets()
	require.NoError(t, err)
	require.Len(t, infos, len(domain.AllPresets()))

	for _, info := range infos {
		assert.Contains(t, info.Visualizations, info.DefaultVisualization, info.Key)
		if info.Bypass {
			assert.Empty(t, info.DatasetType, info.Key)
			assert.Empty(t, info.SelectFields, info.Key)
		} else {
			assert.NotEmpty(t, info.DatasetType, info.Key)
			assert.NotEmpty(t, info.SelectFields, info.Key)
		}
	}

	info, err := svc.Preset("INCOME_STATEMENT")
	require.NoError(t, err)
	assert.Equal(t, dataset.TypeFinancials, info.DatasetType)
	assert.Contains(t, info.SelectFields, "revenue")

	_, err = svc.Preset("NOT_A_PRESET")
	assert.True(t, domain.IsConfigurationError(err))
}

func TestService_BuildQueryAnchorsReferenceTime(t *testing.T) {
	svc := newTestService(t, &stubFetcher{})

	built, err := svc.BuildQuery(domain.ChartConfig{
		PresetKey: domain.PresetPriceAndDividend,
		Target:    domain.Target{Ticker: "AAPL"},
	})
	require.NoError(t, err)
	assert.Equal(t, testReference, built.Config.ReferenceTime)
	assert.Equal(t, "10y", built.Config.OptionValue.Value(domain.OptionDateRange))

	require.Len(t, built.Wire.FilterConditions, 2)
	assert.Equal(t, "t_dt", built.Wire.FilterConditions[1].Field)
	assert.Equal(t, []string{"20140315", "20240315"}, built.Wire.FilterConditions[1].Values)
	assert.Equal(t, "date", built.Query.FilterConditions[1].Field)
}

func TestService_RenderRecordsOutcome(t *testing.T) {
	f := &stubFetcher{table: wireCloseTable()}
	svc := newTestService(t, f)

	out := svc.Render(context.Background(), RenderRequest{Config: domain.ChartConfig{
		PresetKey: domain.PresetPriceInformation,
		Target:    domain.Target{Ticker: "AAPL", Name: "Apple"},
	}})
	require.Equal(t, pipeline.StatusOK, out.Status, "%v", out.Err)
	assert.Equal(t, renderer.LibraryCandlestick, out.Tag.Library)
	assert.Equal(t, 1, f.calls)

	entries, err := svc.RecentRenders(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "PRICE_INFORMATION", entries[0].PresetKey)
	assert.Equal(t, "ok", entries[0].Status)
	assert.Equal(t, "candlestick/line", entries[0].Renderer)

	stats, err := svc.RenderStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["ok"])
}

func TestService_RenderInline(t *testing.T) {
	f := &stubFetcher{}
	svc := newTestService(t, f)

	model := &chartmodel.ChartModel{Series: []chartmodel.Series{{
		Name: "Inline", Type: chartmodel.SeriesLine, YAxisID: chartmodel.AxisPrimary,
		Data: []chartmodel.Point{{X: "a", Y: 1.0}, {X: "b", Y: 2.0}},
	}}}
	out := svc.Render(context.Background(), RenderRequest{
		Config: domain.ChartConfig{PresetKey: domain.PresetInlineChart},
		Inline: pipeline.Inline{Model: model},
	})
	assert.Equal(t, pipeline.StatusOK, out.Status)
	assert.Equal(t, 0, f.calls)

	out = svc.Render(context.Background(), RenderRequest{
		Config: domain.ChartConfig{PresetKey: domain.PresetInlineImage},
		Inline: pipeline.Inline{ImageURL: "https://example.com/chart.png"},
	})
	assert.Equal(t, pipeline.StatusOK, out.Status)
	assert.Equal(t, renderer.LibraryImage, out.Tag.Library)
}

func TestService_SavedCharts(t *testing.T) {
	f := &stubFetcher{table: wireCloseTable()}
	svc := newTestService(t, f)

	_, err := svc.SaveChart(SavedChart{
		Name:      "bad",
		PresetKey: domain.PresetPriceInformation,
		Options:   domain.OptionValue{domain.OptionDateRange: {Value: "42y"}},
	})
	assert.True(t, domain.IsConfigurationError(err))

	saved, err := svc.SaveChart(SavedChart{
		Name:      "Apple price",
		PresetKey: domain.PresetPriceInformation,
		Target:    domain.Target{Ticker: "AAPL", Name: "Apple"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1y", saved.Options.Value(domain.OptionDateRange), "defaults are resolved at save time")

	out, err := svc.RenderSaved(context.Background(), saved.ID, domain.VisualizationTable)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusOK, out.Status)
	assert.Equal(t, renderer.LibraryTable, out.Tag.Library)

	saved.Options = domain.OptionValue{domain.OptionDateRange: {Value: "5y"}}
	updated, err := svc.UpdateSavedChart(*saved)
	require.NoError(t, err)
	assert.Equal(t, "basic", updated.Options.Get(domain.OptionDateRange).Plan)

	list, err := svc.ListSavedCharts()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteSavedChart(saved.ID))
	_, err = svc.GetSavedChart(saved.ID)
	assert.ErrorIs(t, err, ErrSavedChartNotFound)
	_, err = svc.RenderSaved(context.Background(), saved.ID, "")
	assert.ErrorIs(t, err, ErrSavedChartNotFound)
}
