package charts

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/chartpresets/internal/clients/datasetapi"
	"github.com/aristath/chartpresets/internal/database"
	"github.com/aristath/chartpresets/internal/modules/charts/chartmodel"
	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/pipeline"
	"github.com/aristath/chartpresets/internal/modules/datasets"
	datasethandlers "github.com/aristath/chartpresets/internal/modules/datasets/handlers"
	testingpkg "github.com/aristath/chartpresets/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serviceKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	otherKeyHex   = "1f1e1d1c1b1a191817161514131211100f0e0d0c0b0a09080706050403020100"
)

// startDatasetService runs the reference dataset service over HTTP.
func startDatasetService(t *testing.T) *httptest.Server {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, database.NameDatasets)
	t.Cleanup(cleanup)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	codec, err := datasetapi.NewCodecFromHex(serviceKeyHex)
	require.NoError(t, err)

	repo := datasets.NewRepository(db.Conn(), log)
	require.NoError(t, repo.Upsert(dataset.TypePriceDividend, testingpkg.PriceDividendRows()))
	require.NoError(t, repo.SetColumns(dataset.TypePriceDividend, []dataset.Column{{Field: "close", Unit: "USD"}}))

	router := chi.NewRouter()
	router.Route("/api", datasethandlers.NewHandler(datasets.NewService(repo, codec, log), log).RegisterRoutes)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL, keyHex string) *datasetapi.Client {
	t.Helper()
	codec, err := datasetapi.NewCodecFromHex(keyHex)
	require.NoError(t, err)
	return datasetapi.NewClient(baseURL, codec, 5*time.Second, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestEndToEnd_PriceAndDividend(t *testing.T) {
	srv := startDatasetService(t)
	svc := newTestService(t, newClient(t, srv.URL, serviceKeyHex))

	out := svc.Render(context.Background(), RenderRequest{Config: domain.ChartConfig{
		PresetKey:     domain.PresetPriceAndDividend,
		Target:        domain.Target{Ticker: "AAPL", Name: "Apple"},
		OptionValue:   domain.OptionValue{domain.OptionDateRange: {Value: "10y"}},
		ReferenceTime: testReference,
	}})
	require.Equal(t, pipeline.StatusOK, out.Status, "%v", out.Err)

	model := out.Model
	require.NotNil(t, model)
	assert.Equal(t, "Apple Price & Dividends", model.Metadata.Title)
	assert.Equal(t, string(dataset.TypePriceDividend), model.Metadata.DataType)
	require.Len(t, model.Series, 2)

	closeSeries, dividend := model.Series[0], model.Series[1]
	assert.Equal(t, chartmodel.AxisPrimary, closeSeries.YAxisID)
	assert.Equal(t, chartmodel.AxisSecondary, dividend.YAxisID)
	assert.Equal(t, "USD", closeSeries.Unit)

	// the MSFT row is filtered out by the dataset service
	require.Len(t, closeSeries.Data, 3)
	assert.Equal(t, "2015-01-05", closeSeries.Data[0].X)
	assert.Equal(t, 106.25, closeSeries.Data[0].Y)

	// days without a dividend field fall back to zero
	require.Len(t, dividend.Data, 3)
	assert.Equal(t, 0.0, dividend.Data[0].Y)
	assert.Equal(t, 0.47, dividend.Data[1].Y)

	require.NotNil(t, out.Query)
	assert.Equal(t, []string{"20140315", "20240315"}, out.Query.FilterConditions[1].Values)
}

func TestEndToEnd_UndecryptablePayload(t *testing.T) {
	srv := startDatasetService(t)
	client := newClient(t, srv.URL, otherKeyHex)

	wire := &dataset.Query{DatasetType: dataset.TypePriceDividend, SelectFields: []string{"c_tk"}}
	codec, err := datasetapi.NewCodecFromHex(otherKeyHex)
	require.NoError(t, err)
	payload, err := codec.EncodeQuery(wire)
	require.NoError(t, err)

	res := client.Fetch(context.Background(), payload, "")
	assert.True(t, res.Error)
	assert.Nil(t, res.Data)

	svc := newTestService(t, client)
	out := svc.Render(context.Background(), RenderRequest{Config: domain.ChartConfig{
		PresetKey:     domain.PresetPriceAndDividend,
		Target:        domain.Target{Ticker: "AAPL"},
		ReferenceTime: testReference,
	}})
	assert.Equal(t, pipeline.StatusError, out.Status)
	assert.Nil(t, out.Model)

	var fetchErr *domain.DatasetFetchError
	assert.True(t, errors.As(out.Err, &fetchErr))

	entries, err := svc.RecentRenders(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0].Status)
	assert.NotEmpty(t, entries[0].Error)
}
