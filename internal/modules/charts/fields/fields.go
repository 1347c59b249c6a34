// Package fields bridges the wire field vocabulary used by the dataset service and
// the internal vocabulary used everywhere else in the chart pipeline.
//
// The mapping is static and must stay a bijection: a name that is not in the table
// is a configuration error, never a silent pass-through.
package fields

import (
	"fmt"
	"sort"

	"github.com/aristath/chartpresets/internal/modules/charts/domain"
)

// Internal field names.
const (
	Ticker            = "ticker"
	Name              = "name"
	Country           = "country"
	Date              = "date"
	Open              = "open"
	High              = "high"
	Low               = "low"
	Close             = "close"
	Volume            = "volume"
	Dividend          = "dividend"
	FiscalYear        = "fiscal_year"
	FiscalPeriod      = "fiscal_period"
	Revenue           = "revenue"
	OperatingIncome   = "operating_income"
	NetIncome         = "net_income"
	TotalAssets       = "total_assets"
	TotalLiabilities  = "total_liabilities"
	TotalEquity       = "total_equity"
	OperatingCashFlow = "operating_cash_flow"
	InvestingCashFlow = "investing_cash_flow"
	FinancingCashFlow = "financing_cash_flow"
	PER               = "per"
	PBR               = "pbr"
	PSR               = "psr"
	EVEBITDA          = "ev_ebitda"
	ReturnRate        = "return_rate"
	EPSActual         = "eps_actual"
	EPSEstimate       = "eps_estimate"
	Sector            = "sector"
	Weight            = "weight"
	HoldingName       = "holding_name"
	HoldingTicker     = "holding_ticker"
)

// internalToWire is the single source of truth. Wire names are deliberately opaque.
var internalToWire = map[string]string{
	Ticker:            "c_tk",
	Name:              "c_nm",
	Country:           "c_cn",
	Date:              "t_dt",
	Open:              "p_o",
	High:              "p_h",
	Low:               "p_l",
	Close:             "p_c",
	Volume:            "p_v",
	Dividend:          "d_ps",
	FiscalYear:        "f_yr",
	FiscalPeriod:      "f_pd",
	Revenue:           "is_rv",
	OperatingIncome:   "is_oi",
	NetIncome:         "is_ni",
	TotalAssets:       "bs_ta",
	TotalLiabilities:  "bs_tl",
	TotalEquity:       "bs_te",
	OperatingCashFlow: "cf_o",
	InvestingCashFlow: "cf_i",
	FinancingCashFlow: "cf_f",
	PER:               "v_pe",
	PBR:               "v_pb",
	PSR:               "v_ps",
	EVEBITDA:          "v_ee",
	ReturnRate:        "r_cum",
	EPSActual:         "e_act",
	EPSEstimate:       "e_est",
	Sector:            "w_sc",
	Weight:            "w_wt",
	HoldingName:       "h_nm",
	HoldingTicker:     "h_tk",
}

var wireToInternal = mustInvert(internalToWire)

func mustInvert(m map[string]string) map[string]string {
	inv, err := invert(m)
	if err != nil {
		panic(err)
	}
	return inv
}

func invert(m map[string]string) (map[string]string, error) {
	inv := make(map[string]string, len(m))
	for internal, wire := range m {
		if wire == "" || internal == "" {
			return nil, fmt.Errorf("field mapping has an empty name (%q -> %q)", internal, wire)
		}
		if prev, dup := inv[wire]; dup {
			return nil, fmt.Errorf("wire field %q maps to both %q and %q", wire, prev, internal)
		}
		inv[wire] = internal
	}
	return inv, nil
}

// ToInternal translates a wire field name.
func ToInternal(wire string) (string, error) {
	internal, ok := wireToInternal[wire]
	if !ok {
		return "", domain.NewUnmappedFieldError(wire, "wire")
	}
	return internal, nil
}

// ToWire translates an internal field name.
func ToWire(internal string) (string, error) {
	wire, ok := internalToWire[internal]
	if !ok {
		return "", domain.NewUnmappedFieldError(internal, "internal")
	}
	return wire, nil
}

// All returns every internal field name, sorted.
func All() []string {
	out := make([]string, 0, len(internalToWire))
	for k := range internalToWire {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsKnown reports whether an internal field name is mapped.
func IsKnown(internal string) bool {
	_, ok := internalToWire[internal]
	return ok
}
