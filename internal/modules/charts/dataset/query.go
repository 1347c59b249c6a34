// Package dataset describes the tabular dataset service's query and result shapes.
package dataset

// Type names a dataset on the dataset service.
type Type string

const (
	TypeDailyPrice     Type = "DAILY_PRICE"
	TypePriceDividend  Type = "PRICE_DIVIDEND"
	TypeFinancials     Type = "FINANCIAL_STATEMENT"
	TypeValuation      Type = "VALUATION"
	TypeEarnings       Type = "EARNINGS"
	TypeETFComposition Type = "ETF_COMPOSITION"
	TypeETFHoldings    Type = "ETF_HOLDINGS"
)

// Operator is a filter comparison.
type Operator string

const (
	OpEq      Operator = "EQ"
	OpIn      Operator = "IN"
	OpBetween Operator = "BETWEEN"
	OpGte     Operator = "GTE"
	OpLte     Operator = "LTE"
)

// AggregateFunc is an aggregation applied per group.
type AggregateFunc string

const (
	AggSum  AggregateFunc = "SUM"
	AggAvg  AggregateFunc = "AVG"
	AggMin  AggregateFunc = "MIN"
	AggMax  AggregateFunc = "MAX"
	AggLast AggregateFunc = "LAST"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// FilterCondition restricts rows by a field.
type FilterCondition struct {
	Field    string   `json:"field" msgpack:"f"`
	Operator Operator `json:"operator" msgpack:"o"`
	Values   []string `json:"values" msgpack:"v"`
}

// Aggregation selects an aggregated value, exposed under Alias (Field when empty).
type Aggregation struct {
	Field    string        `json:"field" msgpack:"f"`
	Function AggregateFunc `json:"function" msgpack:"fn"`
	Alias    string        `json:"alias,omitempty" msgpack:"a,omitempty"`
}

// OutputField is the column name the aggregation produces.
func (a Aggregation) OutputField() string {
	if a.Alias != "" {
		return a.Alias
	}
	return a.Field
}

// GroupBy groups rows by a field.
type GroupBy struct {
	Field string `json:"field" msgpack:"f"`
}

// Sort orders rows by a field.
type Sort struct {
	Field     string    `json:"field" msgpack:"f"`
	Direction Direction `json:"direction" msgpack:"d"`
}

// Query is a fully specified dataset request. It is immutable once built; the
// serialized form is used as a cache key by the dataset service.
type Query struct {
	DatasetType        Type              `json:"datasetType" msgpack:"t"`
	SelectFields       []string          `json:"selectFields" msgpack:"s"`
	SelectAggregations []Aggregation     `json:"selectAggregations" msgpack:"a"`
	FilterConditions   []FilterCondition `json:"filterConditions" msgpack:"w"`
	GroupByConditions  []GroupBy         `json:"groupByConditions" msgpack:"g"`
	SortConditions     []Sort            `json:"sortConditions" msgpack:"o"`
	Limit              int               `json:"limit,omitempty" msgpack:"l,omitempty"`
}

// Clone returns a deep copy.
func (q *Query) Clone() *Query {
	if q == nil {
		return nil
	}
	out := &Query{
		DatasetType:        q.DatasetType,
		SelectFields:       append([]string{}, q.SelectFields...),
		SelectAggregations: append([]Aggregation{}, q.SelectAggregations...),
		GroupByConditions:  append([]GroupBy{}, q.GroupByConditions...),
		SortConditions:     append([]Sort{}, q.SortConditions...),
		Limit:              q.Limit,
	}
	out.FilterConditions = make([]FilterCondition, len(q.FilterConditions))
	for i, f := range q.FilterConditions {
		f.Values = append([]string{}, f.Values...)
		out.FilterConditions[i] = f
	}
	return out
}
