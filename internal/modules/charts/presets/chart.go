package presets

import (
	"github.com/aristath/chartpresets/internal/modules/charts/chartmodel"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/fields"
)

type chartOptionBuilder func(cfg domain.ChartConfig, kind domain.VisualizationKind) (chartmodel.DataOptions, error)

func yField(field string, typ chartmodel.SeriesType, axis chartmodel.AxisID) chartmodel.YField {
	return chartmodel.YField{Fields: []string{field}, Name: mustLabel(field), Type: typ, Axis: axis}
}

func dateX() chartmodel.XField {
	return chartmodel.XField{Fields: []string{fields.Date}, Label: mustLabel(fields.Date), Format: chartmodel.DateLabel}
}

func fiscalX() chartmodel.XField {
	return chartmodel.XField{
		Fields: []string{fields.FiscalYear, fields.FiscalPeriod},
		Label:  mustLabel(fields.FiscalYear),
		Format: chartmodel.FiscalLabel,
	}
}

func priceOptions(cfg domain.ChartConfig, kind domain.VisualizationKind) (chartmodel.DataOptions, error) {
	opts := chartmodel.DataOptions{X: dateX()}
	switch kind {
	case domain.VisualizationCandlestick:
		opts.Y = []chartmodel.YField{{
			Fields: []string{fields.Open, fields.High, fields.Low, fields.Close},
			Name:   cfg.Target.Ticker,
			Type:   chartmodel.SeriesCandlestick,
		}}
	case domain.VisualizationArea:
		opts.Y = []chartmodel.YField{yField(fields.Close, chartmodel.SeriesArea, chartmodel.AxisPrimary)}
	default:
		opts.Y = []chartmodel.YField{yField(fields.Close, chartmodel.SeriesLine, chartmodel.AxisPrimary)}
	}
	opts.Y = append(opts.Y, yField(fields.Volume, chartmodel.SeriesBar, chartmodel.AxisSecondary))
	return opts, nil
}

func priceDividendOptions(domain.ChartConfig, domain.VisualizationKind) (chartmodel.DataOptions, error) {
	return chartmodel.DataOptions{
		X: dateX(),
		Y: []chartmodel.YField{
			yField(fields.Close, chartmodel.SeriesLine, chartmodel.AxisPrimary),
			yField(fields.Dividend, chartmodel.SeriesBar, chartmodel.AxisSecondary),
		},
	}, nil
}

// statementOptions charts every selected metric column as bars over fiscal periods.
func statementOptions(cfg domain.ChartConfig, _ domain.VisualizationKind) (chartmodel.DataOptions, error) {
	selected, err := SelectFields(cfg.PresetKey, cfg.OptionValue)
	if err != nil {
		return chartmodel.DataOptions{}, err
	}
	opts := chartmodel.DataOptions{X: fiscalX()}
	for _, f := range selected[len(statementKeys):] {
		opts.Y = append(opts.Y, yField(f, chartmodel.SeriesBar, chartmodel.AxisPrimary))
	}
	return opts, nil
}

func valuationOptions(cfg domain.ChartConfig, _ domain.VisualizationKind) (chartmodel.DataOptions, error) {
	metric, err := optionField(cfg.OptionValue, domain.OptionValuationMetric, valuationMetrics)
	if err != nil {
		return chartmodel.DataOptions{}, err
	}
	y := yField(metric, chartmodel.SeriesLine, chartmodel.AxisPrimary)
	y.Unit = "x"
	return chartmodel.DataOptions{
		X: dateX(),
		Y: []chartmodel.YField{y, yField(fields.Close, chartmodel.SeriesLine, chartmodel.AxisSecondary)},
	}, nil
}

func peerOptions(domain.ChartConfig, domain.VisualizationKind) (chartmodel.DataOptions, error) {
	y := yField(fields.ReturnRate, chartmodel.SeriesLine, chartmodel.AxisPrimary)
	y.Unit = "%"
	return chartmodel.DataOptions{X: dateX(), Y: []chartmodel.YField{y}, GroupBy: fields.Ticker}, nil
}

func earningsOptions(domain.ChartConfig, domain.VisualizationKind) (chartmodel.DataOptions, error) {
	return chartmodel.DataOptions{
		X: fiscalX(),
		Y: []chartmodel.YField{
			yField(fields.EPSActual, chartmodel.SeriesBar, chartmodel.AxisPrimary),
			yField(fields.EPSEstimate, chartmodel.SeriesLine, chartmodel.AxisPrimary),
		},
	}, nil
}

func sectorOptions(_ domain.ChartConfig, kind domain.VisualizationKind) (chartmodel.DataOptions, error) {
	typ := chartmodel.SeriesPie
	if kind == domain.VisualizationBar {
		typ = chartmodel.SeriesBar
	}
	y := yField(fields.Weight, typ, chartmodel.AxisPrimary)
	y.Unit = "%"
	return chartmodel.DataOptions{
		X: chartmodel.XField{Fields: []string{fields.Sector}, Label: mustLabel(fields.Sector)},
		Y: []chartmodel.YField{y},
	}, nil
}

func holdingsOptions(domain.ChartConfig, domain.VisualizationKind) (chartmodel.DataOptions, error) {
	y := yField(fields.Weight, chartmodel.SeriesBar, chartmodel.AxisPrimary)
	y.Unit = "%"
	return chartmodel.DataOptions{
		X:       chartmodel.XField{Fields: []string{fields.HoldingName}, Label: mustLabel(fields.HoldingName)},
		Y:       []chartmodel.YField{y},
		KeepRaw: true,
	}, nil
}

func bypassOptions(cfg domain.ChartConfig, _ domain.VisualizationKind) (chartmodel.DataOptions, error) {
	return chartmodel.DataOptions{}, &domain.ConfigurationError{
		Kind:    domain.BypassPreset,
		Subject: string(cfg.PresetKey),
		Detail:  "pre-supplied content has no transformer descriptor",
	}
}

var chartOptionBuilders = map[domain.PresetKey]chartOptionBuilder{
	domain.PresetPriceInformation:   priceOptions,
	domain.PresetPriceAndDividend:   priceDividendOptions,
	domain.PresetIncomeStatement:    statementOptions,
	domain.PresetBalanceSheet:       statementOptions,
	domain.PresetCashFlow:           statementOptions,
	domain.PresetValuationMultiples: valuationOptions,
	domain.PresetPeerComparison:     peerOptions,
	domain.PresetEarningsSurprise:   earningsOptions,
	domain.PresetETFSectorWeights:   sectorOptions,
	domain.PresetETFTopHoldings:     holdingsOptions,
	domain.PresetInlineChart:        bypassOptions,
	domain.PresetInlineImage:        bypassOptions,
}

// ChartDataOptions returns the transformer descriptor for a preset. The config's
// options must already be resolved; kind selects between alternative layouts of
// the same data (candlestick vs close line, pie vs bar).
func ChartDataOptions(cfg domain.ChartConfig, kind domain.VisualizationKind) (chartmodel.DataOptions, error) {
	build, err := lookup(chartOptionBuilders, cfg.PresetKey)
	if err != nil {
		return chartmodel.DataOptions{}, err
	}
	opts, err := build(cfg, kind)
	if err != nil {
		return chartmodel.DataOptions{}, err
	}

	title, err := Title(cfg.PresetKey, cfg.Target)
	if err != nil {
		return chartmodel.DataOptions{}, err
	}
	dt, err := DatasetType(cfg.PresetKey)
	if err != nil {
		return chartmodel.DataOptions{}, err
	}
	opts.Title = title
	opts.DataType = string(dt)
	return opts, nil
}

// DefaultOptions returns the resolved default option value of a preset.
func DefaultOptions(key domain.PresetKey) (domain.OptionValue, error) {
	return ResolveOptions(key, nil)
}
