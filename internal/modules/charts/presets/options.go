package presets

import (
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
)

// Choice is one selectable value of an option group.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Cost  int    `json:"cost,omitempty"`
	Plan  string `json:"plan,omitempty"`
}

// OptionSpec describes an option tab a preset exposes.
type OptionSpec struct {
	Group   domain.OptionGroup `json:"group"`
	Label   string             `json:"label"`
	Choices []Choice           `json:"choices,omitempty"`
	Default string             `json:"default,omitempty"`
	// FreeForm groups accept any value (PEERS takes a ticker list).
	FreeForm bool `json:"freeForm,omitempty"`
	// AllowRange groups accept an explicit from/to range instead of a tag.
	AllowRange bool `json:"allowRange,omitempty"`
}

func (s OptionSpec) choice(value string) (Choice, bool) {
	for _, c := range s.Choices {
		if c.Value == value {
			return c, true
		}
	}
	return Choice{}, false
}

var priceRanges = []Choice{
	{Value: "1M", Label: "1 month"},
	{Value: "3M", Label: "3 months"},
	{Value: "6M", Label: "6 months"},
	{Value: "YTD", Label: "Year to date"},
	{Value: "1y", Label: "1 year"},
	{Value: "3y", Label: "3 years"},
	{Value: "5y", Label: "5 years", Cost: 1, Plan: "basic"},
	{Value: "10y", Label: "10 years", Cost: 2, Plan: "pro"},
	{Value: "ALL", Label: "All", Cost: 3, Plan: "pro"},
}

var yearRanges = []Choice{
	{Value: "3y", Label: "3 years"},
	{Value: "5y", Label: "5 years", Cost: 1, Plan: "basic"},
	{Value: "10y", Label: "10 years", Cost: 2, Plan: "pro"},
}

var periodTypes = []Choice{
	{Value: "ANNUAL", Label: "Annual"},
	{Value: "QUARTERLY", Label: "Quarterly", Cost: 1, Plan: "basic"},
}

func visualizations(kinds ...domain.VisualizationKind) OptionSpec {
	choices := make([]Choice, len(kinds))
	for i, k := range kinds {
		choices[i] = Choice{Value: string(k), Label: string(k)}
	}
	return OptionSpec{Group: domain.OptionVisualization, Label: "Chart", Choices: choices, Default: string(kinds[0])}
}

func dateRange(def string, choices []Choice, allowRange bool) OptionSpec {
	return OptionSpec{Group: domain.OptionDateRange, Label: "Period", Choices: choices, Default: def, AllowRange: allowRange}
}

func periodType() OptionSpec {
	return OptionSpec{Group: domain.OptionPeriodType, Label: "Period type", Choices: periodTypes, Default: "ANNUAL"}
}

var optionGroups = map[domain.PresetKey][]OptionSpec{
	domain.PresetPriceInformation: {
		dateRange("1y", priceRanges, true),
		visualizations(domain.VisualizationLine, domain.VisualizationArea, domain.VisualizationCandlestick),
	},
	domain.PresetPriceAndDividend: {
		dateRange("10y", priceRanges, true),
	},
	domain.PresetIncomeStatement: {
		periodType(),
		{Group: domain.OptionFinancialMetric, Label: "Metric", Default: "revenue", Choices: []Choice{
			{Value: "revenue", Label: "Revenue"},
			{Value: "operating_income", Label: "Operating Income"},
			{Value: "net_income", Label: "Net Income"},
		}},
	},
	domain.PresetBalanceSheet: {periodType()},
	domain.PresetCashFlow:     {periodType()},
	domain.PresetValuationMultiples: {
		dateRange("3y", priceRanges, true),
		{Group: domain.OptionValuationMetric, Label: "Multiple", Default: "per", Choices: []Choice{
			{Value: "per", Label: "P/E"},
			{Value: "pbr", Label: "P/B"},
			{Value: "psr", Label: "P/S"},
			{Value: "ev_ebitda", Label: "EV/EBITDA", Cost: 1, Plan: "basic"},
		}},
	},
	domain.PresetPeerComparison: {
		dateRange("1y", priceRanges, true),
		{Group: domain.OptionPeers, Label: "Peers", FreeForm: true},
	},
	domain.PresetEarningsSurprise: {
		dateRange("3y", yearRanges, false),
	},
	domain.PresetETFSectorWeights: {
		visualizations(domain.VisualizationPie, domain.VisualizationBar, domain.VisualizationTable),
	},
	domain.PresetETFTopHoldings: {
		visualizations(domain.VisualizationBar, domain.VisualizationTable),
	},
	domain.PresetInlineChart: {},
	domain.PresetInlineImage: {},
}

// OptionGroups returns the option tabs a preset exposes. The returned slice is a copy.
func OptionGroups(key domain.PresetKey) ([]OptionSpec, error) {
	specs, err := lookup(optionGroups, key)
	if err != nil {
		return nil, err
	}
	return append([]OptionSpec{}, specs...), nil
}

// ResolveOptions fills defaults for unset groups, validates chosen values and
// attaches cost and plan metadata. Groups the preset does not expose are dropped.
// The input is never modified.
func ResolveOptions(key domain.PresetKey, opts domain.OptionValue) (domain.OptionValue, error) {
	specs, err := lookup(optionGroups, key)
	if err != nil {
		return nil, err
	}

	out := make(domain.OptionValue, len(specs))
	for _, spec := range specs {
		chosen := opts.Get(spec.Group)

		if chosen.Range != nil {
			if !spec.AllowRange {
				return nil, domain.NewUnresolvableOptionError(spec.Group, "explicit range")
			}
			r := *chosen.Range
			out[spec.Group] = domain.OptionChoice{Range: &r}
			continue
		}

		value := chosen.Value
		if value == "" {
			value = spec.Default
		}
		if spec.FreeForm {
			if value != "" {
				out[spec.Group] = domain.OptionChoice{Value: value}
			}
			continue
		}

		c, ok := spec.choice(value)
		if !ok {
			return nil, domain.NewUnresolvableOptionError(spec.Group, value)
		}
		resolved := domain.OptionChoice{Value: c.Value, Plan: c.Plan}
		if c.Cost > 0 {
			cost := c.Cost
			resolved.Cost = &cost
		}
		out[spec.Group] = resolved
	}
	return out, nil
}
