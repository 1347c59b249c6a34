package datasets

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/fields"
)

// DemoInstrument is an instrument the demo seeder generates data for.
type DemoInstrument struct {
	Ticker string
	Name   string
	Base   float64 // starting price
}

// DemoInstruments are the equities seeded for local development.
var DemoInstruments = []DemoInstrument{
	{Ticker: "AAPL", Name: "Apple", Base: 40},
	{Ticker: "MSFT", Name: "Microsoft", Base: 55},
	{Ticker: "GOOG", Name: "Alphabet", Base: 30},
}

// DemoETF is the ETF seeded for the composition and holdings datasets.
const DemoETF = "SPY"

var demoHoldings = []struct {
	name, ticker, sector string
	weight               float64
}{
	{"Apple", "AAPL", "Technology", 7.1},
	{"Microsoft", "MSFT", "Technology", 6.8},
	{"Nvidia", "NVDA", "Technology", 6.1},
	{"Amazon", "AMZN", "Consumer Discretionary", 3.6},
	{"Alphabet", "GOOG", "Communication Services", 3.9},
	{"Meta", "META", "Communication Services", 2.4},
	{"Berkshire Hathaway", "BRK.B", "Financials", 1.7},
	{"JPMorgan Chase", "JPM", "Financials", 1.3},
	{"Eli Lilly", "LLY", "Health Care", 1.4},
	{"UnitedHealth", "UNH", "Health Care", 1.1},
	{"Exxon Mobil", "XOM", "Energy", 1.0},
	{"Procter & Gamble", "PG", "Consumer Staples", 0.9},
}

var demoColumns = map[dataset.Type][]dataset.Column{
	dataset.TypeDailyPrice: {
		{Field: fields.Close, Unit: "USD"},
		{Field: fields.Volume, Unit: "shares"},
		{Field: fields.ReturnRate, Unit: "%"},
	},
	dataset.TypePriceDividend: {
		{Field: fields.Close, Unit: "USD"},
		{Field: fields.Dividend, Unit: "USD"},
	},
	dataset.TypeFinancials: {
		{Field: fields.Revenue, Unit: "USD", Scale: 1e6},
		{Field: fields.OperatingIncome, Unit: "USD", Scale: 1e6},
		{Field: fields.NetIncome, Unit: "USD", Scale: 1e6},
		{Field: fields.TotalAssets, Unit: "USD", Scale: 1e6},
		{Field: fields.TotalLiabilities, Unit: "USD", Scale: 1e6},
		{Field: fields.TotalEquity, Unit: "USD", Scale: 1e6},
		{Field: fields.OperatingCashFlow, Unit: "USD", Scale: 1e6},
		{Field: fields.InvestingCashFlow, Unit: "USD", Scale: 1e6},
		{Field: fields.FinancingCashFlow, Unit: "USD", Scale: 1e6},
	},
	dataset.TypeValuation: {
		{Field: fields.Close, Unit: "USD"},
	},
	dataset.TypeEarnings: {
		{Field: fields.EPSActual, Unit: "USD"},
		{Field: fields.EPSEstimate, Unit: "USD"},
	},
	dataset.TypeETFComposition: {
		{Field: fields.Weight, Unit: "%"},
	},
	dataset.TypeETFHoldings: {
		{Field: fields.Weight, Unit: "%"},
	},
}

// SeedDemo fills the store with deterministic demo data covering every dataset
// type for the years before now.
func SeedDemo(repo *Repository, now time.Time, years int) error {
	if years <= 0 {
		years = 10
	}
	start := now.AddDate(-years, 0, 0)

	for dt, cols := range demoColumns {
		if err := repo.SetColumns(dt, cols); err != nil {
			return err
		}
	}

	for i, inst := range DemoInstruments {
		prices := demoPrices(inst, i, start, now)
		batches := map[dataset.Type][]dataset.Row{
			dataset.TypeDailyPrice:    prices,
			dataset.TypePriceDividend: demoDividends(prices),
			dataset.TypeValuation:     demoValuation(prices, i),
			dataset.TypeFinancials:    demoStatements(inst, i, start.Year(), now.Year()-1),
			dataset.TypeEarnings:      demoEarnings(inst, i, start.Year(), now.Year()-1),
		}
		for dt, rows := range batches {
			if err := repo.Upsert(dt, rows); err != nil {
				return fmt.Errorf("failed to seed %s for %s: %w", dt, inst.Ticker, err)
			}
		}
	}

	composition := make([]dataset.Row, 0, len(demoHoldings))
	holdings := make([]dataset.Row, 0, len(demoHoldings))
	for _, h := range demoHoldings {
		composition = append(composition, dataset.Row{
			fields.Ticker:        DemoETF,
			fields.Sector:        h.sector,
			fields.HoldingTicker: h.ticker,
			fields.Weight:        h.weight,
		})
		holdings = append(holdings, dataset.Row{
			fields.Ticker:        DemoETF,
			fields.HoldingName:   h.name,
			fields.HoldingTicker: h.ticker,
			fields.Weight:        h.weight,
		})
	}
	if err := repo.Upsert(dataset.TypeETFComposition, composition); err != nil {
		return fmt.Errorf("failed to seed ETF composition: %w", err)
	}
	if err := repo.Upsert(dataset.TypeETFHoldings, holdings); err != nil {
		return fmt.Errorf("failed to seed ETF holdings: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// demoPrices walks business days with a smooth trend plus two seasonal waves.
func demoPrices(inst DemoInstrument, seed int, start, end time.Time) []dataset.Row {
	var rows []dataset.Row
	first := 0.0
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		t := float64(n)
		phase := float64(seed)
		px := inst.Base * (1 + t/900) * (1 + 0.08*math.Sin(t/37+phase) + 0.03*math.Sin(t/7+2*phase))
		if first == 0 {
			first = px
		}
		spread := px * 0.012
		rows = append(rows, dataset.Row{
			fields.Ticker:     inst.Ticker,
			fields.Name:       inst.Name,
			fields.Country:    "US",
			fields.Date:       d.Format("20060102"),
			fields.Open:       round2(px - spread*math.Sin(t)),
			fields.High:       round2(px + spread),
			fields.Low:        round2(px - spread),
			fields.Close:      round2(px),
			fields.Volume:     float64(1_000_000 + (n*7919+seed*104729)%4_000_000),
			fields.ReturnRate: round2((px/first - 1) * 100),
		})
		n++
	}
	return rows
}

// demoDividends pays on the first trading day of each quarter. Other days carry
// no dividend field at all.
func demoDividends(prices []dataset.Row) []dataset.Row {
	out := make([]dataset.Row, 0, len(prices))
	lastQuarter := ""
	for _, p := range prices {
		date := p[fields.Date].(string)
		row := dataset.Row{
			fields.Ticker: p[fields.Ticker],
			fields.Date:   date,
			fields.Close:  p[fields.Close],
		}
		month := (int(date[4]-'0')*10 + int(date[5]-'0') - 1) / 3
		quarter := date[:4] + string(rune('1'+month))
		if quarter != lastQuarter {
			lastQuarter = quarter
			px, _ := dataset.Float(p[fields.Close])
			row[fields.Dividend] = round2(px * 0.004)
		}
		out = append(out, row)
	}
	return out
}

func demoValuation(prices []dataset.Row, seed int) []dataset.Row {
	out := make([]dataset.Row, 0, len(prices))
	for i, p := range prices {
		px, _ := dataset.Float(p[fields.Close])
		wave := math.Sin(float64(i)/60 + float64(seed))
		out = append(out, dataset.Row{
			fields.Ticker:   p[fields.Ticker],
			fields.Date:     p[fields.Date],
			fields.Close:    px,
			fields.PER:      round2(22 + 6*wave),
			fields.PBR:      round2(8 + 2*wave),
			fields.PSR:      round2(5 + 1.5*wave),
			fields.EVEBITDA: round2(16 + 4*wave),
		})
	}
	return out
}

func demoStatements(inst DemoInstrument, seed, fromYear, toYear int) []dataset.Row {
	var out []dataset.Row
	for y := fromYear; y <= toYear; y++ {
		growth := math.Pow(1.08, float64(y-fromYear))
		annual := inst.Base * 5000 * growth * (1 + 0.05*float64(seed))
		for _, period := range []string{"Q1", "Q2", "Q3", "Q4", "FY"} {
			revenue := annual / 4
			if period == "FY" {
				revenue = annual
			}
			out = append(out, dataset.Row{
				fields.Ticker:            inst.Ticker,
				fields.FiscalYear:        float64(y),
				fields.FiscalPeriod:      period,
				fields.Revenue:           round2(revenue),
				fields.OperatingIncome:   round2(revenue * 0.3),
				fields.NetIncome:         round2(revenue * 0.22),
				fields.TotalAssets:       round2(revenue * 3.1),
				fields.TotalLiabilities:  round2(revenue * 1.9),
				fields.TotalEquity:       round2(revenue * 1.2),
				fields.OperatingCashFlow: round2(revenue * 0.28),
				fields.InvestingCashFlow: round2(-revenue * 0.08),
				fields.FinancingCashFlow: round2(-revenue * 0.15),
			})
		}
	}
	return out
}

func demoEarnings(inst DemoInstrument, seed, fromYear, toYear int) []dataset.Row {
	var out []dataset.Row
	for y := fromYear; y <= toYear; y++ {
		for q := 1; q <= 4; q++ {
			estimate := inst.Base / 40 * math.Pow(1.07, float64(y-fromYear)) * (1 + 0.1*float64(q))
			surprise := 0.06 * math.Sin(float64(y*4+q+seed))
			out = append(out, dataset.Row{
				fields.Ticker:       inst.Ticker,
				fields.FiscalYear:   float64(y),
				fields.FiscalPeriod: fmt.Sprintf("Q%d", q),
				fields.EPSEstimate:  round2(estimate),
				fields.EPSActual:    round2(estimate * (1 + surprise)),
			})
		}
	}
	return out
}
