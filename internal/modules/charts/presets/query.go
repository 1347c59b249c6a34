package presets

import (
	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/fields"
	"github.com/aristath/chartpresets/internal/modules/charts/timerange"
	"github.com/aristath/chartpresets/internal/utils"
)

// EmptyRangePolicy decides what happens when a preset's time option resolves to
// an empty range.
type EmptyRangePolicy int

const (
	// SkipFilter omits the date filter and queries the whole history.
	SkipFilter EmptyRangePolicy = iota
	// RejectOption fails the build with an UnresolvableOption error.
	RejectOption
)

// TimeRangeSpec tells the query builder which option drives the date filter and
// how to format it. A zero Group means the preset has no date filter.
type TimeRangeSpec struct {
	Group       domain.OptionGroup
	Field       string
	Format      timerange.Format
	EmptyPolicy EmptyRangePolicy
}

var financialMetrics = map[string]string{
	"revenue":          fields.Revenue,
	"operating_income": fields.OperatingIncome,
	"net_income":       fields.NetIncome,
}

var valuationMetrics = map[string]string{
	"per":       fields.PER,
	"pbr":       fields.PBR,
	"psr":       fields.PSR,
	"ev_ebitda": fields.EVEBITDA,
}

func optionField(opts domain.OptionValue, group domain.OptionGroup, table map[string]string) (string, error) {
	v := opts.Value(group)
	f, ok := table[v]
	if !ok {
		return "", domain.NewUnresolvableOptionError(group, v)
	}
	return f, nil
}

func constFields(names ...string) func(domain.OptionValue) ([]string, error) {
	return func(domain.OptionValue) ([]string, error) {
		return append([]string{}, names...), nil
	}
}

var statementKeys = []string{fields.Ticker, fields.FiscalYear, fields.FiscalPeriod}

var selectFieldBuilders = map[domain.PresetKey]func(domain.OptionValue) ([]string, error){
	domain.PresetPriceInformation: constFields(fields.Ticker, fields.Date, fields.Open, fields.High, fields.Low, fields.Close, fields.Volume),
	domain.PresetPriceAndDividend: constFields(fields.Ticker, fields.Date, fields.Close, fields.Dividend),
	domain.PresetIncomeStatement: func(opts domain.OptionValue) ([]string, error) {
		metric, err := optionField(opts, domain.OptionFinancialMetric, financialMetrics)
		if err != nil {
			return nil, err
		}
		return append(append([]string{}, statementKeys...), metric), nil
	},
	domain.PresetBalanceSheet: constFields(append(append([]string{}, statementKeys...), fields.TotalAssets, fields.TotalLiabilities, fields.TotalEquity)...),
	domain.PresetCashFlow:     constFields(append(append([]string{}, statementKeys...), fields.OperatingCashFlow, fields.InvestingCashFlow, fields.FinancingCashFlow)...),
	domain.PresetValuationMultiples: func(opts domain.OptionValue) ([]string, error) {
		metric, err := optionField(opts, domain.OptionValuationMetric, valuationMetrics)
		if err != nil {
			return nil, err
		}
		return []string{fields.Ticker, fields.Date, metric, fields.Close}, nil
	},
	domain.PresetPeerComparison:   constFields(fields.Ticker, fields.Date, fields.ReturnRate),
	domain.PresetEarningsSurprise: constFields(fields.Ticker, fields.FiscalYear, fields.FiscalPeriod, fields.EPSActual, fields.EPSEstimate),
	domain.PresetETFSectorWeights: constFields(fields.Sector),
	domain.PresetETFTopHoldings:   constFields(fields.HoldingName, fields.HoldingTicker, fields.Weight),
	domain.PresetInlineChart:      constFields(),
	domain.PresetInlineImage:      constFields(),
}

// SelectFields returns the internal field names a preset selects.
func SelectFields(key domain.PresetKey, opts domain.OptionValue) ([]string, error) {
	build, err := lookup(selectFieldBuilders, key)
	if err != nil {
		return nil, err
	}
	return build(opts)
}

var aggregationSpecs = map[domain.PresetKey][]dataset.Aggregation{
	domain.PresetETFSectorWeights: {{Field: fields.Weight, Function: dataset.AggSum, Alias: fields.Weight}},
}

// Aggregations returns a copy of the preset's aggregations.
func Aggregations(key domain.PresetKey) ([]dataset.Aggregation, error) {
	if _, err := lookup(datasetTypes, key); err != nil {
		return nil, err
	}
	return append([]dataset.Aggregation{}, aggregationSpecs[key]...), nil
}

var groupBySpecs = map[domain.PresetKey][]dataset.GroupBy{
	domain.PresetETFSectorWeights: {{Field: fields.Sector}},
}

// GroupBy returns a copy of the preset's group-by conditions.
func GroupBy(key domain.PresetKey) ([]dataset.GroupBy, error) {
	if _, err := lookup(datasetTypes, key); err != nil {
		return nil, err
	}
	return append([]dataset.GroupBy{}, groupBySpecs[key]...), nil
}

func dailyRange(policy EmptyRangePolicy) TimeRangeSpec {
	return TimeRangeSpec{Group: domain.OptionDateRange, Field: fields.Date, Format: timerange.FormatCompact, EmptyPolicy: policy}
}

// fiscalRange resolves the PERIOD_TYPE tag itself ("ANNUAL" is ten years,
// "QUARTERLY" three) into a fiscal-year range.
var fiscalRange = TimeRangeSpec{Group: domain.OptionPeriodType, Field: fields.FiscalYear, Format: timerange.FormatYear, EmptyPolicy: RejectOption}

var timeRangeSpecs = map[domain.PresetKey]TimeRangeSpec{
	domain.PresetPriceInformation:   dailyRange(SkipFilter),
	domain.PresetPriceAndDividend:   dailyRange(SkipFilter),
	domain.PresetIncomeStatement:    fiscalRange,
	domain.PresetBalanceSheet:       fiscalRange,
	domain.PresetCashFlow:           fiscalRange,
	domain.PresetValuationMultiples: dailyRange(SkipFilter),
	domain.PresetPeerComparison:     dailyRange(RejectOption),
	domain.PresetEarningsSurprise: {
		Group: domain.OptionDateRange, Field: fields.FiscalYear, Format: timerange.FormatYear, EmptyPolicy: RejectOption,
	},
	domain.PresetETFSectorWeights: {},
	domain.PresetETFTopHoldings:   {},
	domain.PresetInlineChart:      {},
	domain.PresetInlineImage:      {},
}

// TimeRange returns which option drives a preset's date filter.
func TimeRange(key domain.PresetKey) (TimeRangeSpec, error) {
	return lookup(timeRangeSpecs, key)
}

func tickerEq(cfg domain.ChartConfig) (dataset.FilterCondition, error) {
	if cfg.Target.Ticker == "" {
		return dataset.FilterCondition{}, domain.NewMissingTargetError(cfg.PresetKey)
	}
	return dataset.FilterCondition{Field: fields.Ticker, Operator: dataset.OpEq, Values: []string{cfg.Target.Ticker}}, nil
}

func between(field string, rng timerange.Range) []dataset.FilterCondition {
	if rng.IsZero() {
		return nil
	}
	return []dataset.FilterCondition{{Field: field, Operator: dataset.OpBetween, Values: []string{rng.From, rng.To}}}
}

func tickerAndRange(field string) func(domain.ChartConfig, timerange.Range) ([]dataset.FilterCondition, error) {
	return func(cfg domain.ChartConfig, rng timerange.Range) ([]dataset.FilterCondition, error) {
		eq, err := tickerEq(cfg)
		if err != nil {
			return nil, err
		}
		return append([]dataset.FilterCondition{eq}, between(field, rng)...), nil
	}
}

func statementFilters(cfg domain.ChartConfig, rng timerange.Range) ([]dataset.FilterCondition, error) {
	eq, err := tickerEq(cfg)
	if err != nil {
		return nil, err
	}
	period := dataset.FilterCondition{Field: fields.FiscalPeriod, Operator: dataset.OpEq, Values: []string{"FY"}}
	if cfg.OptionValue.Value(domain.OptionPeriodType) == "QUARTERLY" {
		period = dataset.FilterCondition{Field: fields.FiscalPeriod, Operator: dataset.OpIn, Values: []string{"Q1", "Q2", "Q3", "Q4"}}
	}
	return append([]dataset.FilterCondition{eq, period}, between(fields.FiscalYear, rng)...), nil
}

func peerFilters(cfg domain.ChartConfig, rng timerange.Range) ([]dataset.FilterCondition, error) {
	if cfg.Target.Ticker == "" {
		return nil, domain.NewMissingTargetError(cfg.PresetKey)
	}
	tickers := utils.ParseTickers(cfg.Target.Ticker + "," + cfg.OptionValue.Value(domain.OptionPeers))
	in := dataset.FilterCondition{Field: fields.Ticker, Operator: dataset.OpIn, Values: tickers}
	return append([]dataset.FilterCondition{in}, between(fields.Date, rng)...), nil
}

func tickerOnly(cfg domain.ChartConfig, _ timerange.Range) ([]dataset.FilterCondition, error) {
	eq, err := tickerEq(cfg)
	if err != nil {
		return nil, err
	}
	return []dataset.FilterCondition{eq}, nil
}

func noFilters(domain.ChartConfig, timerange.Range) ([]dataset.FilterCondition, error) {
	return []dataset.FilterCondition{}, nil
}

var filterBuilders = map[domain.PresetKey]func(domain.ChartConfig, timerange.Range) ([]dataset.FilterCondition, error){
	domain.PresetPriceInformation:   tickerAndRange(fields.Date),
	domain.PresetPriceAndDividend:   tickerAndRange(fields.Date),
	domain.PresetIncomeStatement:    statementFilters,
	domain.PresetBalanceSheet:       statementFilters,
	domain.PresetCashFlow:           statementFilters,
	domain.PresetValuationMultiples: tickerAndRange(fields.Date),
	domain.PresetPeerComparison:     peerFilters,
	domain.PresetEarningsSurprise:   tickerAndRange(fields.FiscalYear),
	domain.PresetETFSectorWeights:   tickerOnly,
	domain.PresetETFTopHoldings:     tickerOnly,
	domain.PresetInlineChart:        noFilters,
	domain.PresetInlineImage:        noFilters,
}

// Filters returns the filter conditions of a preset for a resolved date range.
// The config's options must already be resolved.
func Filters(cfg domain.ChartConfig, rng timerange.Range) ([]dataset.FilterCondition, error) {
	build, err := lookup(filterBuilders, cfg.PresetKey)
	if err != nil {
		return nil, err
	}
	return build(cfg, rng)
}

var (
	byDate   = []dataset.Sort{{Field: fields.Date, Direction: dataset.Asc}}
	byFiscal = []dataset.Sort{
		{Field: fields.FiscalYear, Direction: dataset.Asc},
		{Field: fields.FiscalPeriod, Direction: dataset.Asc},
	}
	byWeight = []dataset.Sort{{Field: fields.Weight, Direction: dataset.Desc}}
)

var sortSpecs = map[domain.PresetKey][]dataset.Sort{
	domain.PresetPriceInformation:   byDate,
	domain.PresetPriceAndDividend:   byDate,
	domain.PresetIncomeStatement:    byFiscal,
	domain.PresetBalanceSheet:       byFiscal,
	domain.PresetCashFlow:           byFiscal,
	domain.PresetValuationMultiples: byDate,
	domain.PresetPeerComparison:     {{Field: fields.Ticker, Direction: dataset.Asc}, {Field: fields.Date, Direction: dataset.Asc}},
	domain.PresetEarningsSurprise:   byFiscal,
	domain.PresetETFSectorWeights:   byWeight,
	domain.PresetETFTopHoldings:     byWeight,
	domain.PresetInlineChart:        nil,
	domain.PresetInlineImage:        nil,
}

// Sorts returns a copy of the preset's sort conditions.
func Sorts(key domain.PresetKey) ([]dataset.Sort, error) {
	sorts, err := lookup(sortSpecs, key)
	if err != nil {
		return nil, err
	}
	return append([]dataset.Sort{}, sorts...), nil
}
