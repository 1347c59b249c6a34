package charts

import (
	"testing"
	"time"

	"github.com/aristath/chartpresets/internal/database"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	testingpkg "github.com/aristath/chartpresets/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSavedRepo(t *testing.T) *SavedChartRepository {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, database.NameCharts)
	t.Cleanup(cleanup)
	return NewSavedChartRepository(db.Conn())
}

func sampleSaved() SavedChart {
	cost := 2
	return SavedChart{
		Name:      "Apple dividends",
		PresetKey: domain.PresetPriceAndDividend,
		Target:    domain.Target{ID: "1", Name: "Apple", Ticker: "AAPL", Country: "US"},
		Options: domain.OptionValue{
			domain.OptionDateRange: {Value: "10y", Cost: &cost, Plan: "pro"},
		},
		Visualization: domain.VisualizationCombo,
	}
}

func TestSavedChartRepository_CRUD(t *testing.T) {
	repo := newSavedRepo(t)
	clock := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	created, err := repo.Create(sampleSaved())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, clock.Equal(created.CreatedAt))

	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.PresetKey, got.PresetKey)
	assert.Equal(t, created.Target, got.Target)
	assert.Equal(t, created.Visualization, got.Visualization)
	assert.Equal(t, created.Options, got.Options)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.Options.Get(domain.OptionDateRange).Cost)
	assert.Equal(t, 2, *got.Options.Get(domain.OptionDateRange).Cost)

	clock = clock.Add(time.Hour)
	got.Name = "Apple 10y"
	updated, err := repo.Update(*got)
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, clock.Equal(updated.UpdatedAt))

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Apple 10y", list[0].Name)

	require.NoError(t, repo.Delete(created.ID))
	_, err = repo.Get(created.ID)
	assert.ErrorIs(t, err, ErrSavedChartNotFound)
	assert.ErrorIs(t, repo.Delete(created.ID), ErrSavedChartNotFound)
}

func TestSavedChartRepository_Validation(t *testing.T) {
	repo := newSavedRepo(t)

	bad := sampleSaved()
	bad.PresetKey = "NOPE"
	_, err := repo.Create(bad)
	assert.True(t, domain.IsConfigurationError(err))

	unnamed := sampleSaved()
	unnamed.Name = ""
	_, err = repo.Create(unnamed)
	assert.ErrorIs(t, err, ErrInvalidSavedChart)

	missing := sampleSaved()
	missing.ID = "does-not-exist"
	_, err = repo.Update(missing)
	assert.ErrorIs(t, err, ErrSavedChartNotFound)
}

func TestSavedChart_ConfigCopiesOptions(t *testing.T) {
	c := sampleSaved()
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cfg := c.Config(ref)
	cfg.OptionValue[domain.OptionDateRange] = domain.OptionChoice{Value: "1y"}

	assert.Equal(t, "10y", c.Options.Value(domain.OptionDateRange))
	assert.Equal(t, ref, cfg.ReferenceTime)
	assert.Equal(t, "AAPL", cfg.Target.Ticker)
}
