package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionValue_MergeDoesNotMutateInputs(t *testing.T) {
	base := OptionValue{
		OptionDateRange:       {Value: "1y"},
		OptionFinancialMetric: {Value: "revenue"},
	}
	partial := OptionValue{OptionDateRange: {Value: "3y"}}

	merged := base.Merge(partial)

	assert.Equal(t, "3y", merged.Value(OptionDateRange))
	assert.Equal(t, "revenue", merged.Value(OptionFinancialMetric))
	assert.Equal(t, "1y", base.Value(OptionDateRange), "base must stay untouched")
	assert.Len(t, partial, 1)
}

func TestOptionValue_GetOnNilMap(t *testing.T) {
	var opts OptionValue
	assert.True(t, opts.Get(OptionDateRange).IsZero())
	assert.Equal(t, "", opts.Value(OptionPeers))
}

func TestChartConfig_WithOptions(t *testing.T) {
	cfg := ChartConfig{
		PresetKey:     PresetPriceInformation,
		OptionValue:   OptionValue{OptionDateRange: {Value: "1y"}},
		ReferenceTime: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	next := cfg.WithOptions(OptionValue{OptionDateRange: {Value: "5y"}})

	assert.Equal(t, "5y", next.OptionValue.Value(OptionDateRange))
	assert.Equal(t, "1y", cfg.OptionValue.Value(OptionDateRange))
	assert.Equal(t, cfg.ReferenceTime, next.ReferenceTime)
}

func TestParsePresetKey(t *testing.T) {
	key, err := ParsePresetKey("PRICE_AND_DIVIDEND")
	require.NoError(t, err)
	assert.Equal(t, PresetPriceAndDividend, key)

	_, err = ParsePresetKey("NOT_A_PRESET")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestAllPresets_ReturnsCopy(t *testing.T) {
	keys := AllPresets()
	require.Len(t, keys, 12)
	keys[0] = "MUTATED"
	assert.Equal(t, PresetPriceInformation, AllPresets()[0])
}

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("build query: %w", NewUnmappedFieldError("foo", "wire"))
	assert.True(t, IsConfigurationError(wrapped))
	assert.Contains(t, wrapped.Error(), `unmapped_field "foo"`)

	fetchErr := fmt.Errorf("pipeline: %w", &DatasetFetchError{Cause: fmt.Errorf("timeout")})
	assert.False(t, IsConfigurationError(fetchErr))
	assert.Contains(t, fetchErr.Error(), "dataset fetch failed: timeout")
}
