// Package domain holds the chart pipeline's shared vocabulary: preset keys,
// targets, option values, chart configs and the error taxonomy.
//
// This package is pure (no infrastructure dependencies).
package domain

import "time"

// PresetKey identifies a chart kind. Every other table in the pipeline is keyed by it.
type PresetKey string

const (
	PresetPriceInformation   PresetKey = "PRICE_INFORMATION"
	PresetPriceAndDividend   PresetKey = "PRICE_AND_DIVIDEND"
	PresetIncomeStatement    PresetKey = "INCOME_STATEMENT"
	PresetBalanceSheet       PresetKey = "BALANCE_SHEET"
	PresetCashFlow           PresetKey = "CASH_FLOW"
	PresetValuationMultiples PresetKey = "VALUATION_MULTIPLES"
	PresetPeerComparison     PresetKey = "PEER_COMPARISON"
	PresetEarningsSurprise   PresetKey = "EARNINGS_SURPRISE"
	PresetETFSectorWeights   PresetKey = "ETF_SECTOR_WEIGHTS"
	PresetETFTopHoldings     PresetKey = "ETF_TOP_HOLDINGS"

	// Bypass presets carry pre-supplied content and never query the dataset service.
	PresetInlineChart PresetKey = "INLINE_CHART"
	PresetInlineImage PresetKey = "INLINE_IMAGE"
)

var allPresets = []PresetKey{
	PresetPriceInformation,
	PresetPriceAndDividend,
	PresetIncomeStatement,
	PresetBalanceSheet,
	PresetCashFlow,
	PresetValuationMultiples,
	PresetPeerComparison,
	PresetEarningsSurprise,
	PresetETFSectorWeights,
	PresetETFTopHoldings,
	PresetInlineChart,
	PresetInlineImage,
}

// AllPresets returns every declared preset in declaration order.
func AllPresets() []PresetKey {
	out := make([]PresetKey, len(allPresets))
	copy(out, allPresets)
	return out
}

// ParsePresetKey validates a raw preset identifier.
func ParsePresetKey(raw string) (PresetKey, error) {
	for _, k := range allPresets {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", NewUnknownPresetError(PresetKey(raw))
}

// VisualizationKind is the visual form a caller asks for.
type VisualizationKind string

const (
	VisualizationLine        VisualizationKind = "LINE"
	VisualizationArea        VisualizationKind = "AREA"
	VisualizationBar         VisualizationKind = "BAR"
	VisualizationStackedBar  VisualizationKind = "STACKED_BAR"
	VisualizationCandlestick VisualizationKind = "CANDLESTICK"
	VisualizationCombo       VisualizationKind = "COMBO"
	VisualizationPie         VisualizationKind = "PIE"
	VisualizationTable       VisualizationKind = "TABLE"
	VisualizationImage       VisualizationKind = "IMAGE"
)

// Target is the financial instrument being charted. Read-only to the pipeline.
type Target struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Ticker  string `json:"ticker"`
	Country string `json:"country"`
}

// ChartConfig is the single input contract of the query builder and the transformer.
// ReferenceTime anchors every relative date range so that identical configs always
// produce identical queries.
type ChartConfig struct {
	PresetKey     PresetKey   `json:"presetKey"`
	Target        Target      `json:"target"`
	OptionValue   OptionValue `json:"optionValue"`
	ReferenceTime time.Time   `json:"referenceTime"`
	SessionToken  string      `json:"-"`
}

// WithOptions returns a copy of the config whose options are merged with partial.
func (c ChartConfig) WithOptions(partial OptionValue) ChartConfig {
	c.OptionValue = c.OptionValue.Merge(partial)
	return c
}
