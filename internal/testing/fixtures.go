package testing

import (
	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/fields"
)

// PriceDividendRows returns a small internal-vocabulary PRICE_DIVIDEND dataset:
// three AAPL days, one of which pays a dividend, plus one MSFT day.
func PriceDividendRows() []dataset.Row {
	return []dataset.Row{
		{fields.Ticker: "AAPL", fields.Date: "20150105", fields.Close: 106.25},
		{fields.Ticker: "AAPL", fields.Date: "20150106", fields.Close: 106.26, fields.Dividend: 0.47},
		{fields.Ticker: "AAPL", fields.Date: "20240102", fields.Close: 185.64},
		{fields.Ticker: "MSFT", fields.Date: "20240102", fields.Close: 370.87},
	}
}

// SectorCompositionRows returns ETF composition rows with two holdings in one sector.
func SectorCompositionRows() []dataset.Row {
	return []dataset.Row{
		{fields.Ticker: "SPY", fields.Sector: "Technology", fields.HoldingTicker: "AAPL", fields.Weight: 7.0},
		{fields.Ticker: "SPY", fields.Sector: "Technology", fields.HoldingTicker: "MSFT", fields.Weight: 6.5},
		{fields.Ticker: "SPY", fields.Sector: "Energy", fields.HoldingTicker: "XOM", fields.Weight: 1.0},
		{fields.Ticker: "QQQ", fields.Sector: "Technology", fields.HoldingTicker: "NVDA", fields.Weight: 9.0},
	}
}
