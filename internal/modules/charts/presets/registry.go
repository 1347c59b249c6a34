// Package presets holds the per-preset lookup tables that drive query construction
// and chart-model transformation.
//
// Every table is keyed by domain.PresetKey and covers every declared preset,
// bypass presets included. All lookups are pure: identical inputs always produce
// identical outputs, and unknown keys fail with a domain.ConfigurationError.
package presets

import (
	"fmt"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
)

func lookup[T any](table map[domain.PresetKey]T, key domain.PresetKey) (T, error) {
	v, ok := table[key]
	if !ok {
		var zero T
		return zero, domain.NewUnknownPresetError(key)
	}
	return v, nil
}

var bypass = map[domain.PresetKey]bool{
	domain.PresetInlineChart: true,
	domain.PresetInlineImage: true,
}

// IsBypass reports whether a preset renders pre-supplied content and must not be
// sent to the dataset service. Callers check this before building a query.
func IsBypass(key domain.PresetKey) bool {
	return bypass[key]
}

var datasetTypes = map[domain.PresetKey]dataset.Type{
	domain.PresetPriceInformation:   dataset.TypeDailyPrice,
	domain.PresetPriceAndDividend:   dataset.TypePriceDividend,
	domain.PresetIncomeStatement:    dataset.TypeFinancials,
	domain.PresetBalanceSheet:       dataset.TypeFinancials,
	domain.PresetCashFlow:           dataset.TypeFinancials,
	domain.PresetValuationMultiples: dataset.TypeValuation,
	domain.PresetPeerComparison:     dataset.TypeDailyPrice,
	domain.PresetEarningsSurprise:   dataset.TypeEarnings,
	domain.PresetETFSectorWeights:   dataset.TypeETFComposition,
	domain.PresetETFTopHoldings:     dataset.TypeETFHoldings,
	domain.PresetInlineChart:        "",
	domain.PresetInlineImage:        "",
}

// DatasetType returns the dataset a preset queries. Bypass presets return "".
func DatasetType(key domain.PresetKey) (dataset.Type, error) {
	return lookup(datasetTypes, key)
}

var titles = map[domain.PresetKey]string{
	domain.PresetPriceInformation:   "%s Price",
	domain.PresetPriceAndDividend:   "%s Price & Dividends",
	domain.PresetIncomeStatement:    "%s Income Statement",
	domain.PresetBalanceSheet:       "%s Balance Sheet",
	domain.PresetCashFlow:           "%s Cash Flow",
	domain.PresetValuationMultiples: "%s Valuation Multiples",
	domain.PresetPeerComparison:     "%s vs Peers",
	domain.PresetEarningsSurprise:   "%s Earnings Surprise",
	domain.PresetETFSectorWeights:   "%s Sector Weights",
	domain.PresetETFTopHoldings:     "%s Top Holdings",
	domain.PresetInlineChart:        "%s",
	domain.PresetInlineImage:        "%s",
}

// Title returns the human-readable chart title for a target.
func Title(key domain.PresetKey, target domain.Target) (string, error) {
	format, err := lookup(titles, key)
	if err != nil {
		return "", err
	}
	subject := target.Name
	if subject == "" {
		subject = target.Ticker
	}
	return fmt.Sprintf(format, subject), nil
}

var limits = map[domain.PresetKey]int{
	domain.PresetETFTopHoldings: 10,
}

// Limit returns the row limit for a preset, 0 meaning unlimited.
func Limit(key domain.PresetKey) (int, error) {
	if _, err := lookup(datasetTypes, key); err != nil {
		return 0, err
	}
	return limits[key], nil
}

var defaultKinds = map[domain.PresetKey]domain.VisualizationKind{
	domain.PresetPriceInformation:   domain.VisualizationLine,
	domain.PresetPriceAndDividend:   domain.VisualizationCombo,
	domain.PresetIncomeStatement:    domain.VisualizationBar,
	domain.PresetBalanceSheet:       domain.VisualizationStackedBar,
	domain.PresetCashFlow:           domain.VisualizationBar,
	domain.PresetValuationMultiples: domain.VisualizationLine,
	domain.PresetPeerComparison:     domain.VisualizationLine,
	domain.PresetEarningsSurprise:   domain.VisualizationCombo,
	domain.PresetETFSectorWeights:   domain.VisualizationPie,
	domain.PresetETFTopHoldings:     domain.VisualizationBar,
	domain.PresetInlineChart:        domain.VisualizationLine,
	domain.PresetInlineImage:        domain.VisualizationImage,
}

// DefaultVisualization returns the visualization used when the caller asks for none.
func DefaultVisualization(key domain.PresetKey) (domain.VisualizationKind, error) {
	return lookup(defaultKinds, key)
}
