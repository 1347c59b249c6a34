// Package renderer maps (preset, visualization kind) to a rendering strategy and
// turns a ChartModel into the strategy's renderer-specific spec.
package renderer

import (
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
)

// Library names a family of rendering strategies.
type Library string

const (
	LibraryCandlestick Library = "candlestick"
	LibraryGeneric     Library = "generic"
	LibraryTable       Library = "table"
	LibraryImage       Library = "image"
	LibraryPlaceholder Library = "placeholder"
)

// Tag selects a strategy and its sub-kind.
type Tag struct {
	Library Library `json:"library"`
	Kind    string  `json:"kind"`
}

// IsFallback reports whether the tag is the "unsupported chart" placeholder.
func (t Tag) IsFallback() bool {
	return t == FallbackTag
}

// Placeholder kinds.
const (
	KindUnsupported = "unsupported"
	KindNoData      = "no_data"
	KindError       = "error"
)

var (
	// FallbackTag renders the "unsupported chart" placeholder.
	FallbackTag = Tag{Library: LibraryPlaceholder, Kind: KindUnsupported}
	NoDataTag   = Tag{Library: LibraryPlaceholder, Kind: KindNoData}
	ErrorTag    = Tag{Library: LibraryPlaceholder, Kind: KindError}
)

func generic(kind string) Tag { return Tag{Library: LibraryGeneric, Kind: kind} }

func candlestick(kind string) Tag { return Tag{Library: LibraryCandlestick, Kind: kind} }

var tableTag = Tag{Library: LibraryTable, Kind: "table"}

type kindTable map[domain.VisualizationKind]Tag

var dispatch = map[domain.PresetKey]kindTable{
	domain.PresetPriceInformation: {
		domain.VisualizationLine:        candlestick("line"),
		domain.VisualizationArea:        candlestick("area"),
		domain.VisualizationCandlestick: candlestick("candlestick"),
		domain.VisualizationTable:       tableTag,
	},
	domain.PresetPriceAndDividend: {
		domain.VisualizationCombo: generic("composed"),
		domain.VisualizationLine:  generic("line"),
		domain.VisualizationTable: tableTag,
	},
	domain.PresetIncomeStatement: {
		domain.VisualizationBar:   generic("bar"),
		domain.VisualizationLine:  generic("line"),
		domain.VisualizationTable: tableTag,
	},
	domain.PresetBalanceSheet: {
		domain.VisualizationStackedBar: generic("stacked_bar"),
		domain.VisualizationBar:        generic("bar"),
		domain.VisualizationTable:      tableTag,
	},
	domain.PresetCashFlow: {
		domain.VisualizationBar:   generic("bar"),
		domain.VisualizationTable: tableTag,
	},
	domain.PresetValuationMultiples: {
		domain.VisualizationLine:  generic("line"),
		domain.VisualizationTable: tableTag,
	},
	domain.PresetPeerComparison: {
		domain.VisualizationLine:  candlestick("line"),
		domain.VisualizationTable: tableTag,
	},
	domain.PresetEarningsSurprise: {
		domain.VisualizationCombo: generic("composed"),
		domain.VisualizationBar:   generic("bar"),
		domain.VisualizationTable: tableTag,
	},
	domain.PresetETFSectorWeights: {
		domain.VisualizationPie:   generic("pie"),
		domain.VisualizationBar:   generic("bar"),
		domain.VisualizationTable: tableTag,
	},
	domain.PresetETFTopHoldings: {
		domain.VisualizationBar:   generic("bar"),
		domain.VisualizationTable: tableTag,
	},
	domain.PresetInlineChart: {
		domain.VisualizationLine:       generic("line"),
		domain.VisualizationArea:       generic("area"),
		domain.VisualizationBar:        generic("bar"),
		domain.VisualizationStackedBar: generic("stacked_bar"),
		domain.VisualizationCombo:      generic("composed"),
		domain.VisualizationPie:        generic("pie"),
	},
	domain.PresetInlineImage: {
		domain.VisualizationImage: {Library: LibraryImage, Kind: "image"},
	},
}

// Resolve returns the renderer tag for a preset and visualization kind. Unmatched
// combinations, unknown presets included, resolve to FallbackTag.
func Resolve(key domain.PresetKey, kind domain.VisualizationKind) Tag {
	kinds, ok := dispatch[key]
	if !ok {
		return FallbackTag
	}
	tag, ok := kinds[kind]
	if !ok {
		return FallbackTag
	}
	return tag
}

// SupportedKinds lists the visualization kinds a preset renders without falling back.
func SupportedKinds(key domain.PresetKey) []domain.VisualizationKind {
	kinds := dispatch[key]
	out := make([]domain.VisualizationKind, 0, len(kinds))
	for _, k := range allKinds {
		if _, ok := kinds[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

var allKinds = []domain.VisualizationKind{
	domain.VisualizationLine,
	domain.VisualizationArea,
	domain.VisualizationBar,
	domain.VisualizationStackedBar,
	domain.VisualizationCandlestick,
	domain.VisualizationCombo,
	domain.VisualizationPie,
	domain.VisualizationTable,
	domain.VisualizationImage,
}
