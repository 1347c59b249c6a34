package presets

import (
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/fields"
)

// legendLabels has an entry for every internal field name.
var legendLabels = map[string]string{
	fields.Ticker:            "Ticker",
	fields.Name:              "Name",
	fields.Country:           "Country",
	fields.Date:              "Date",
	fields.Open:              "Open",
	fields.High:              "High",
	fields.Low:               "Low",
	fields.Close:             "Close",
	fields.Volume:            "Volume",
	fields.Dividend:          "Dividend per Share",
	fields.FiscalYear:        "Fiscal Year",
	fields.FiscalPeriod:      "Fiscal Period",
	fields.Revenue:           "Revenue",
	fields.OperatingIncome:   "Operating Income",
	fields.NetIncome:         "Net Income",
	fields.TotalAssets:       "Total Assets",
	fields.TotalLiabilities:  "Total Liabilities",
	fields.TotalEquity:       "Total Equity",
	fields.OperatingCashFlow: "Operating Cash Flow",
	fields.InvestingCashFlow: "Investing Cash Flow",
	fields.FinancingCashFlow: "Financing Cash Flow",
	fields.PER:               "P/E",
	fields.PBR:               "P/B",
	fields.PSR:               "P/S",
	fields.EVEBITDA:          "EV/EBITDA",
	fields.ReturnRate:        "Return",
	fields.EPSActual:         "EPS (Actual)",
	fields.EPSEstimate:       "EPS (Estimate)",
	fields.Sector:            "Sector",
	fields.Weight:            "Weight",
	fields.HoldingName:       "Holding",
	fields.HoldingTicker:     "Holding Ticker",
}

// LegendLabel returns the legend label of an internal field.
func LegendLabel(field string) (string, error) {
	label, ok := legendLabels[field]
	if !ok {
		return "", domain.NewUnmappedFieldError(field, "legend")
	}
	return label, nil
}

func mustLabel(field string) string {
	label, err := LegendLabel(field)
	if err != nil {
		return field
	}
	return label
}
