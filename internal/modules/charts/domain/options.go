package domain

// OptionGroup names a user-selectable option tab.
type OptionGroup string

const (
	OptionDateRange       OptionGroup = "DATE_RANGE"
	OptionFinancialMetric OptionGroup = "FINANCIAL_METRIC"
	OptionPeriodType      OptionGroup = "PERIOD_TYPE"
	OptionValuationMetric OptionGroup = "VALUATION_METRIC"
	OptionPeers           OptionGroup = "PEERS"
	OptionVisualization   OptionGroup = "VISUALIZATION"
)

// DateRange is an explicit from/to range in YYYY-MM-DD form.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// OptionChoice is the chosen value of one option group plus optional plan metadata.
type OptionChoice struct {
	Value string     `json:"value"`
	Range *DateRange `json:"range,omitempty"`
	Cost  *int       `json:"cost,omitempty"`
	Plan  string     `json:"plan,omitempty"`
}

// IsZero reports whether nothing was chosen.
func (c OptionChoice) IsZero() bool {
	return c.Value == "" && c.Range == nil
}

// OptionValue maps option groups to their chosen value.
type OptionValue map[OptionGroup]OptionChoice

// Get returns the choice for a group, zero when unset.
func (o OptionValue) Get(group OptionGroup) OptionChoice {
	if o == nil {
		return OptionChoice{}
	}
	return o[group]
}

// Value returns the plain string value for a group.
func (o OptionValue) Value(group OptionGroup) string {
	return o.Get(group).Value
}

// Merge returns a new OptionValue with partial layered over o. Neither input is modified.
func (o OptionValue) Merge(partial OptionValue) OptionValue {
	out := make(OptionValue, len(o)+len(partial))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}
