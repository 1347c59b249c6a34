// Package query assembles dataset queries from chart configs.
package query

import (
	"fmt"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/fields"
	"github.com/aristath/chartpresets/internal/modules/charts/presets"
	"github.com/aristath/chartpresets/internal/modules/charts/timerange"
	"github.com/rs/zerolog"
)

// Builder turns a ChartConfig into a DatasetQuery. Identical configs, reference
// time included, always produce identical queries.
type Builder struct {
	now func() time.Time
	log zerolog.Logger
}

// NewBuilder creates a query builder.
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{
		now: time.Now,
		log: log.With().Str("component", "query_builder").Logger(),
	}
}

// Resolve returns cfg with its options resolved against the preset (defaults
// filled, values validated) and a reference time set. Callers that need the
// resolved options for the transformer use this before Build.
func (b *Builder) Resolve(cfg domain.ChartConfig) (domain.ChartConfig, error) {
	if _, err := presets.DatasetType(cfg.PresetKey); err != nil {
		return cfg, err
	}
	resolved, err := presets.ResolveOptions(cfg.PresetKey, cfg.OptionValue)
	if err != nil {
		return cfg, err
	}
	cfg.OptionValue = resolved
	if cfg.ReferenceTime.IsZero() {
		cfg.ReferenceTime = b.now().UTC()
		b.log.Debug().Str("preset", string(cfg.PresetKey)).Msg("No reference time, anchoring at now")
	}
	return cfg, nil
}

// Build assembles the query in the internal field vocabulary. Bypass presets
// must be short-circuited by the caller and fail here.
func (b *Builder) Build(cfg domain.ChartConfig) (*dataset.Query, error) {
	if presets.IsBypass(cfg.PresetKey) {
		return nil, &domain.ConfigurationError{Kind: domain.BypassPreset, Subject: string(cfg.PresetKey), Detail: "no dataset query"}
	}

	cfg, err := b.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	key := cfg.PresetKey

	dt, err := presets.DatasetType(key)
	if err != nil {
		return nil, err
	}
	selected, err := presets.SelectFields(key, cfg.OptionValue)
	if err != nil {
		return nil, err
	}
	aggs, err := presets.Aggregations(key)
	if err != nil {
		return nil, err
	}
	groups, err := presets.GroupBy(key)
	if err != nil {
		return nil, err
	}
	sorts, err := presets.Sorts(key)
	if err != nil {
		return nil, err
	}
	limit, err := presets.Limit(key)
	if err != nil {
		return nil, err
	}
	rng, err := dateRange(cfg)
	if err != nil {
		return nil, err
	}
	filters, err := presets.Filters(cfg, rng)
	if err != nil {
		return nil, err
	}

	q := &dataset.Query{
		DatasetType:        dt,
		SelectFields:       selected,
		SelectAggregations: aggs,
		FilterConditions:   filters,
		GroupByConditions:  groups,
		SortConditions:     sorts,
		Limit:              limit,
	}

	b.log.Debug().
		Str("preset", string(key)).
		Str("dataset", string(dt)).
		Int("fields", len(selected)).
		Int("filters", len(filters)).
		Msg("Built dataset query")

	return q, nil
}

// BuildWire builds the query and rewrites it into the wire vocabulary.
func (b *Builder) BuildWire(cfg domain.ChartConfig) (*dataset.Query, error) {
	q, err := b.Build(cfg)
	if err != nil {
		return nil, err
	}
	wire, err := fields.QueryToWire(q)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize query for %s: %w", cfg.PresetKey, err)
	}
	return wire, nil
}

func dateRange(cfg domain.ChartConfig) (timerange.Range, error) {
	spec, err := presets.TimeRange(cfg.PresetKey)
	if err != nil {
		return timerange.Range{}, err
	}
	if spec.Group == "" {
		return timerange.Range{}, nil
	}

	choice := cfg.OptionValue.Get(spec.Group)
	rng := timerange.ResolveRange(choice, cfg.ReferenceTime, spec.Format)
	if rng.IsZero() && spec.EmptyPolicy == presets.RejectOption {
		value := choice.Value
		if choice.Range != nil {
			value = choice.Range.From + ".." + choice.Range.To
		}
		return timerange.Range{}, domain.NewUnresolvableOptionError(spec.Group, value)
	}
	return rng, nil
}
